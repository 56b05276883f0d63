package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/dtarnawsky/dust/internal/model"
)

// Loader supplies the three collections to the query engine. The engine never
// cares whether they come from bundled files or the network.
type Loader interface {
	Events(ctx context.Context) ([]model.Event, error)
	Camps(ctx context.Context) ([]model.Camp, error)
	Arts(ctx context.Context) ([]model.Art, error)
}

// FileLoader reads events.json, camps.json and art.json from a dataset
// directory on disk.
type FileLoader struct {
	Dir string
}

func (l *FileLoader) Events(_ context.Context) ([]model.Event, error) {
	var events []model.Event
	return events, l.read("events", &events)
}

func (l *FileLoader) Camps(_ context.Context) ([]model.Camp, error) {
	var camps []model.Camp
	return camps, l.read("camps", &camps)
}

func (l *FileLoader) Arts(_ context.Context) ([]model.Art, error) {
	var arts []model.Art
	return arts, l.read("art", &arts)
}

func (l *FileLoader) read(name string, v any) error {
	path := filepath.Join(l.Dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// LiveLoader fetches the published dataset from the live host, falling back
// to a local loader when the fetch fails (offline clients keep working on the
// bundled copy).
type LiveLoader struct {
	http     *resty.Client
	dataset  string
	fallback Loader
	log      zerolog.Logger
}

// NewLiveLoader builds a LiveLoader for one dataset folder (e.g. "ttitd-2023").
func NewLiveLoader(baseURL, dataset string, fallback Loader, log zerolog.Logger) *LiveLoader {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	return &LiveLoader{http: c, dataset: dataset, fallback: fallback, log: log}
}

func (l *LiveLoader) Events(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := l.get(ctx, "events", &events); err != nil {
		return l.fallback.Events(ctx)
	}
	return events, nil
}

func (l *LiveLoader) Camps(ctx context.Context) ([]model.Camp, error) {
	var camps []model.Camp
	if err := l.get(ctx, "camps", &camps); err != nil {
		return l.fallback.Camps(ctx)
	}
	return camps, nil
}

func (l *LiveLoader) Arts(ctx context.Context) ([]model.Art, error) {
	var arts []model.Art
	if err := l.get(ctx, "art", &arts); err != nil {
		return l.fallback.Arts(ctx)
	}
	return arts, nil
}

func (l *LiveLoader) get(ctx context.Context, name string, v any) error {
	path := fmt.Sprintf("/%s/%s.json", l.dataset, name)
	l.log.Debug().Str("path", path).Msg("fetching live dataset")
	resp, err := l.http.R().SetContext(ctx).Get(path)
	if err != nil {
		l.log.Warn().Err(err).Str("path", path).Msg("live fetch failed, using local copy")
		return err
	}
	if resp.StatusCode() != 200 {
		err := fmt.Errorf("live fetch %s: status %d", path, resp.StatusCode())
		l.log.Warn().Err(err).Msg("live fetch failed, using local copy")
		return err
	}
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		l.log.Warn().Err(err).Str("path", path).Msg("live payload invalid, using local copy")
		return err
	}
	return nil
}
