package dataset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtarnawsky/dust/internal/model"
)

func writeFixture(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644))
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "events", []model.Event{{UID: "1", Title: "Local Event"}})
	writeFixture(t, dir, "camps", []model.Camp{{UID: "2", Name: "Local Camp"}})
	writeFixture(t, dir, "art", []model.Art{{UID: "3", Name: "Local Art"}})
	return dir
}

func TestFileLoaderReadsCollections(t *testing.T) {
	l := &FileLoader{Dir: fixtureDir(t)}
	ctx := context.Background()

	events, err := l.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Local Event", events[0].Title)

	camps, err := l.Camps(ctx)
	require.NoError(t, err)
	require.Len(t, camps, 1)

	arts, err := l.Arts(ctx)
	require.NoError(t, err)
	require.Len(t, arts, 1)
}

func TestFileLoaderMissingFile(t *testing.T) {
	l := &FileLoader{Dir: t.TempDir()}
	_, err := l.Events(context.Background())
	require.Error(t, err)
}

func TestLiveLoaderFetchesRemote(t *testing.T) {
	l := NewLiveLoader("https://dust.events/assets/data-v2", "ttitd-2023", &FileLoader{Dir: t.TempDir()}, zerolog.Nop())
	httpmock.ActivateNonDefault(l.http.GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://dust.events/assets/data-v2/ttitd-2023/events.json",
		httpmock.NewStringResponder(200, `[{"uid":"10","title":"Live Event","occurrence_set":[]}]`))

	events, err := l.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Live Event", events[0].Title)
}

func TestLiveLoaderFallsBackWhenOffline(t *testing.T) {
	l := NewLiveLoader("https://dust.events/assets/data-v2", "ttitd-2023", &FileLoader{Dir: fixtureDir(t)}, zerolog.Nop())
	httpmock.ActivateNonDefault(l.http.GetClient())
	defer httpmock.DeactivateAndReset()
	// No responders registered: every request errors like a dead network.

	events, err := l.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Local Event", events[0].Title)
}

func TestLiveLoaderFallsBackOnBadStatus(t *testing.T) {
	l := NewLiveLoader("https://dust.events/assets/data-v2", "ttitd-2023", &FileLoader{Dir: fixtureDir(t)}, zerolog.Nop())
	httpmock.ActivateNonDefault(l.http.GetClient())
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "https://dust.events/assets/data-v2/ttitd-2023/camps.json",
		httpmock.NewStringResponder(404, "not found"))

	camps, err := l.Camps(context.Background())
	require.NoError(t, err)
	require.Len(t, camps, 1)
	assert.Equal(t, "Local Camp", camps[0].Name)
}

func TestDatasetFilename(t *testing.T) {
	d := model.Dataset{Name: "TTITD", Year: "2023"}
	assert.Equal(t, "ttitd-2023", d.Filename())
}
