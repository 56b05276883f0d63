package normalize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dtarnawsky/dust/internal/dataset"
	"github.com/dtarnawsky/dust/internal/images"
	"github.com/dtarnawsky/dust/internal/model"
)

// Fetcher supplies raw records for one dataset kind and year.
type Fetcher interface {
	FetchRecords(ctx context.Context, kind, year string) ([]model.RawRecord, error)
}

// Normalizer runs the full ETL pass: fetch, repair, sort, filter, diff,
// write, bump revision. Kinds and years are processed strictly one at a time.
type Normalizer struct {
	fetch        Fetcher
	writer       *dataset.Writer
	images       *images.Cache
	datasetName  string
	convertYears map[string]bool
	log          zerolog.Logger
}

// New builds a Normalizer. convertYears lists the years whose art images are
// downloaded and converted.
func New(fetch Fetcher, writer *dataset.Writer, cache *images.Cache, datasetName string, convertYears []string, log zerolog.Logger) *Normalizer {
	cy := make(map[string]bool, len(convertYears))
	for _, y := range convertYears {
		cy[y] = true
	}
	return &Normalizer{
		fetch:        fetch,
		writer:       writer,
		images:       cache,
		datasetName:  datasetName,
		convertYears: cy,
		log:          log,
	}
}

// Run processes every year in order. The per-year revision counter is bumped
// exactly once when at least one of the three kinds changed on disk.
func (n *Normalizer) Run(ctx context.Context, years []string) error {
	for _, year := range years {
		n.log.Info().Str("year", year).Msg("processing year")
		folder := fmt.Sprintf("%s-%s", n.datasetName, year)

		campsChanged, err := n.normalizeCamps(ctx, year, folder)
		if err != nil {
			return err
		}
		eventsChanged, err := n.normalizeEvents(ctx, year, folder)
		if err != nil {
			return err
		}
		artChanged, err := n.normalizeArt(ctx, year, folder)
		if err != nil {
			return err
		}

		if campsChanged || eventsChanged || artChanged {
			rev, err := n.writer.BumpRevision(folder)
			if err != nil {
				return err
			}
			n.log.Info().Str("folder", folder).Int("revision", rev).Msg("revision bumped")
		}
	}
	return nil
}

func (n *Normalizer) normalizeCamps(ctx context.Context, year, folder string) (bool, error) {
	raws, err := n.fetch.FetchRecords(ctx, "camp", year)
	if err != nil {
		return false, err
	}
	rn := NewRecordNormalizer(Rules{FixName: true, FixLocation: true}, n.log)
	camps := make([]model.Camp, 0, len(raws))
	for i := range raws {
		if camp, ok := rn.Camp(&raws[i]); ok {
			camps = append(camps, camp)
		}
	}
	sort.SliceStable(camps, func(i, j int) bool { return uidLess(camps[i].UID, camps[j].UID) })
	return n.writer.Write(folder, "camps", camps)
}

func (n *Normalizer) normalizeEvents(ctx context.Context, year, folder string) (bool, error) {
	raws, err := n.fetch.FetchRecords(ctx, "event", year)
	if err != nil {
		return false, err
	}
	rn := NewRecordNormalizer(Rules{FixOccurrence: true, FixTitle: true, FixUID: true}, n.log)
	events := make([]model.Event, 0, len(raws))
	for i := range raws {
		if ev, ok := rn.Event(&raws[i]); ok {
			events = append(events, ev)
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return uidLess(events[i].UID, events[j].UID) })
	return n.writer.Write(folder, "events", events)
}

func (n *Normalizer) normalizeArt(ctx context.Context, year, folder string) (bool, error) {
	raws, err := n.fetch.FetchRecords(ctx, "art", year)
	if err != nil {
		return false, err
	}
	convert := n.convertYears[year]
	rn := NewRecordNormalizer(Rules{FixName: true, ConvertImage: convert}, n.log)

	var imageDir string
	if convert {
		dir, err := n.writer.FolderPath(folder)
		if err != nil {
			return false, err
		}
		imageDir = filepath.Join(dir, "images")
		if err := os.MkdirAll(imageDir, 0o755); err != nil {
			return false, err
		}
	}

	arts := make([]model.Art, 0, len(raws))
	for i := range raws {
		art, ok := rn.Art(&raws[i])
		if !ok {
			continue
		}
		if convert {
			n.convertImages(ctx, &art, folder, imageDir)
		}
		arts = append(arts, art)
	}
	sort.SliceStable(arts, func(i, j int) bool { return uidLess(arts[i].UID, arts[j].UID) })
	return n.writer.Write(folder, "art", arts)
}

// convertImages caches each thumbnail locally, one at a time. A failed fetch
// or conversion leaves the remote URL in place and never aborts the batch.
func (n *Normalizer) convertImages(ctx context.Context, art *model.Art, folder, imageDir string) {
	for i := range art.Images {
		url := art.Images[i].ThumbnailURL
		if url == "" {
			continue
		}
		dest := filepath.Join(imageDir, art.UID+".jpg")
		if err := n.images.Ensure(ctx, url, dest); err != nil {
			n.log.Warn().Err(err).Str("uid", art.UID).Msg("image conversion failed, keeping remote url")
			continue
		}
		art.Images[i].ThumbnailURL = fmt.Sprintf("./assets/%s/images/%s.jpg", folder, art.UID)
	}
}

// uidLess orders uids numerically when both sides parse as integers, falling
// back to a plain string compare for non-numeric ids.
func uidLess(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
