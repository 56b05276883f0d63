package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtarnawsky/dust/internal/model"
)

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d := NewDispatcher(New(testLoader(), zerolog.Nop()), zerolog.Nop())
	t.Cleanup(d.Stop)

	res, err := d.Do(context.Background(), Command{Op: OpPopulate})
	require.NoError(t, err)
	require.Equal(t, 5, res.Count)
	return d
}

func TestDispatcherServesQueries(t *testing.T) {
	d := testDispatcher(t)
	ctx := context.Background()

	res, err := d.Do(ctx, Command{Op: OpGetDays})
	require.NoError(t, err)
	assert.Len(t, res.Days, 3)

	res, err = d.Do(ctx, Command{Op: OpGetEvents, Offset: 0, Count: 2})
	require.NoError(t, err)
	assert.Len(t, res.Events, 2)

	res, err = d.Do(ctx, Command{Op: OpFindCamp, UID: "c1"})
	require.NoError(t, err)
	require.NotNil(t, res.Camp)
	assert.Equal(t, "Zen Dome", res.Camp.Name)
}

func TestDispatcherSerializesConcurrentCommands(t *testing.T) {
	d := testDispatcher(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := d.Do(context.Background(), Command{Op: OpGetEvents, Count: 10})
			assert.NoError(t, err)
			assert.Len(t, res.Events, 3)
		}()
	}
	wg.Wait()
}

func TestDispatcherUnknownOp(t *testing.T) {
	d := testDispatcher(t)

	res, err := d.Do(context.Background(), Command{Op: Op("selfDestruct")})
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

// blockingLoader parks the worker inside populate until released.
type blockingLoader struct {
	started chan struct{}
	release chan struct{}
}

func (l *blockingLoader) Events(context.Context) ([]model.Event, error) {
	close(l.started)
	<-l.release
	return nil, nil
}
func (l *blockingLoader) Camps(context.Context) ([]model.Camp, error) { return nil, nil }
func (l *blockingLoader) Arts(context.Context) ([]model.Art, error)   { return nil, nil }

func TestStopRepliesToQueuedRequests(t *testing.T) {
	loader := &blockingLoader{started: make(chan struct{}), release: make(chan struct{})}
	d := NewDispatcher(New(loader, zerolog.Nop()), zerolog.Nop())

	popDone := make(chan error, 1)
	go func() {
		_, err := d.Do(context.Background(), Command{Op: OpPopulate})
		popDone <- err
	}()
	<-loader.started

	// Queue a command behind the stuck populate.
	queued := make(chan error, 1)
	go func() {
		_, err := d.Do(context.Background(), Command{Op: OpGetDays})
		queued <- err
	}()
	require.Eventually(t, func() bool { return len(d.reqs) == 1 }, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()
	close(loader.release)

	// The queued caller must get a reply either way: executed before the
	// worker noticed the shutdown, or answered with ErrDispatcherClosed.
	select {
	case err := <-queued:
		if err != nil {
			assert.ErrorIs(t, err, ErrDispatcherClosed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("queued request never received a reply")
	}
	require.NoError(t, <-popDone)
	<-stopped
}

func TestDispatcherStop(t *testing.T) {
	d := NewDispatcher(New(testLoader(), zerolog.Nop()), zerolog.Nop())
	d.Stop()
	d.Stop() // idempotent

	_, err := d.Do(context.Background(), Command{Op: OpGetDays})
	assert.ErrorIs(t, err, ErrDispatcherClosed)
}

func TestDispatcherContextCancelled(t *testing.T) {
	d := testDispatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := d.Do(ctx, Command{Op: OpGetDays})
	if err != nil {
		// Submission may still win the race with an already-cancelled context;
		// when it loses, the error must be the context's.
		assert.ErrorIs(t, err, context.Canceled)
	} else {
		assert.Len(t, res.Days, 3)
	}
}

func TestDispatchWireMethods(t *testing.T) {
	d := testDispatcher(t)
	ctx := context.Background()

	// Numeric arguments arrive as float64 after JSON decoding.
	res, err := d.Dispatch(ctx, "getEvents", []any{float64(0), float64(2)})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Events, 2)

	res, err = d.Dispatch(ctx, "findCamps", []any{"zen"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Camps, 1)

	res, err = d.Dispatch(ctx, "findEvents", []any{"", "2023-08-29"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Events, 2)

	res, err = d.Dispatch(ctx, "findArt", []any{"a2"})
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotNil(t, res.Art)
	assert.Equal(t, "Dust Mirror", res.Art.Name)
}

func TestDispatchUnknownMethodIsHarmless(t *testing.T) {
	d := testDispatcher(t)

	res, err := d.Dispatch(context.Background(), "systemReport", nil)
	assert.NoError(t, err)
	assert.Nil(t, res)

	// The worker is still alive.
	got, err := d.Dispatch(context.Background(), "getDays", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Days, 3)
}

func TestDispatchNotFoundYieldsNoResult(t *testing.T) {
	d := testDispatcher(t)

	res, err := d.Dispatch(context.Background(), "findEvent", []any{"missing"})
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestDispatchToleratesMissingAndMistypedArgs(t *testing.T) {
	d := testDispatcher(t)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, "getEvents", nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Events) // count defaults to zero

	res, err = d.Dispatch(ctx, "findEvents", []any{42, nil})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Events, 3) // bad query arg reads as empty, nil day matches all
}

func TestDayArgLayouts(t *testing.T) {
	day := dayArg([]any{"2023-08-29T00:00:00-07:00"}, 0)
	require.NotNil(t, day)
	assert.Equal(t, 29, day.Day())

	day = dayArg([]any{"2023-08-29"}, 0)
	require.NotNil(t, day)
	assert.Equal(t, time.August, day.Month())

	assert.Nil(t, dayArg([]any{"not a date"}, 0))
	assert.Nil(t, dayArg([]any{""}, 0))
	assert.Nil(t, dayArg(nil, 0))
}
