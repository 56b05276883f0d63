// Package dataset persists and loads the normalized dataset files: a JSON
// array per record kind, mirrored across two roots, plus a per-dataset
// revision counter that only moves when content actually changed.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Revision is the content of revision.json.
type Revision struct {
	Revision int `json:"revision"`
}

// Writer serializes record collections under Root and mirrors every write
// under Mirror. The per-dataset directory under each root must already
// exist; its absence is a configuration error, not a recoverable one.
type Writer struct {
	Root   string
	Mirror string
	log    zerolog.Logger
}

// NewWriter builds a Writer over the two output roots.
func NewWriter(root, mirror string, log zerolog.Logger) *Writer {
	return &Writer{Root: root, Mirror: mirror, log: log}
}

// FolderPath returns the primary directory for a dataset folder. The
// directory must already exist.
func (w *Writer) FolderPath(folder string) (string, error) {
	dir := filepath.Join(w.Root, folder)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("path must exist: %s", dir)
	}
	return dir, nil
}

// Write serializes records to <Root>/<folder>/<name>.json when the content
// differs from what is already on disk, mirroring the file under Mirror.
// It reports whether anything was written.
func (w *Writer) Write(folder, name string, records any) (bool, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return false, fmt.Errorf("marshal %s/%s: %w", folder, name, err)
	}

	dir, err := w.FolderPath(folder)
	if err != nil {
		return false, err
	}
	path := filepath.Join(dir, name+".json")

	if !contentChanged(path, data) {
		w.log.Info().Str("folder", folder).Str("name", name).Msg("no changes")
		return false, nil
	}
	if err := w.save(path, folder, data); err != nil {
		return false, err
	}
	return true, nil
}

// BumpRevision increments the revision counter for folder and writes it to
// both roots. A missing or corrupt revision file counts as revision 0.
func (w *Writer) BumpRevision(folder string) (int, error) {
	dir, err := w.FolderPath(folder)
	if err != nil {
		return 0, err
	}
	path := filepath.Join(dir, "revision.json")

	next := ReadRevision(path) + 1
	data, err := json.MarshalIndent(Revision{Revision: next}, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := w.save(path, folder, data); err != nil {
		return 0, err
	}
	return next, nil
}

// ReadRevision reads the revision counter at path, treating a missing or
// corrupt file as revision 0.
func ReadRevision(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var r Revision
	if err := json.Unmarshal(data, &r); err != nil {
		return 0
	}
	return r.Revision
}

func (w *Writer) save(path, folder string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.log.Info().Str("path", path).Msg("wrote file")

	mirrorDir := filepath.Join(w.Mirror, folder)
	if _, err := os.Stat(mirrorDir); err != nil {
		return fmt.Errorf("path must exist: %s", mirrorDir)
	}
	mirrorPath := filepath.Join(mirrorDir, filepath.Base(path))
	if err := os.WriteFile(mirrorPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", mirrorPath, err)
	}
	w.log.Info().Str("path", mirrorPath).Msg("wrote file")
	return nil
}

func contentChanged(path string, data []byte) bool {
	prev, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	return !bytes.Equal(prev, data)
}
