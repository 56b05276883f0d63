package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dtarnawsky/dust/internal/model"
)

// Op names one operation the dispatcher can execute. The set is closed; the
// string values are the wire protocol method names.
type Op string

const (
	OpPopulate   Op = "populate"
	OpGetDays    Op = "getDays"
	OpGetEvents  Op = "getEvents"
	OpFindArts   Op = "findArts"
	OpFindArt    Op = "findArt"
	OpFindEvents Op = "findEvents"
	OpFindCamps  Op = "findCamps"
	OpFindEvent  Op = "findEvent"
	OpFindCamp   Op = "findCamp"
	OpGetCamps   Op = "getCamps"
)

// Command is one typed request for the engine. Only the fields relevant to
// Op are read.
type Command struct {
	Op     Op
	Offset int
	Count  int
	UID    string
	Query  string
	Day    *time.Time
}

// Result carries the response for a Command; exactly one group of fields is
// set depending on the operation. Everything in a Result is a copy, never a
// reference into the engine's live collections.
type Result struct {
	Count  int           `json:"count,omitempty"`
	Days   []model.Day   `json:"days,omitempty"`
	Events []model.Event `json:"events,omitempty"`
	Camps  []model.Camp  `json:"camps,omitempty"`
	Arts   []model.Art   `json:"arts,omitempty"`
	Event  *model.Event  `json:"event,omitempty"`
	Camp   *model.Camp   `json:"camp,omitempty"`
	Art    *model.Art    `json:"art,omitempty"`
}

type request struct {
	id    uuid.UUID
	cmd   Command
	reply chan reply
}

type reply struct {
	res Result
	err error
}

// ErrDispatcherClosed is returned for commands submitted after Stop.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Dispatcher owns an Engine on a single goroutine and executes commands
// strictly one at a time in submission order. Once a command is dequeued it
// runs to completion; cancellation only abandons waiting for the reply.
type Dispatcher struct {
	engine *Engine
	reqs   chan request
	done   chan struct{}

	// mu guards closed so no submission can slip past a concurrent Stop;
	// requests queued before Stop are answered during the shutdown drain.
	mu     sync.RWMutex
	closed bool

	wg  sync.WaitGroup
	log zerolog.Logger
}

// NewDispatcher wraps engine and starts its worker goroutine.
func NewDispatcher(engine *Engine, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		engine: engine,
		reqs:   make(chan request, 16),
		done:   make(chan struct{}),
		log:    log,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Do submits a typed command and waits for its result. Every submitted
// request is guaranteed a reply: executed normally, or answered with
// ErrDispatcherClosed during shutdown.
func (d *Dispatcher) Do(ctx context.Context, cmd Command) (Result, error) {
	req := request{id: uuid.New(), cmd: cmd, reply: make(chan reply, 1)}
	if err := d.submit(ctx, req); err != nil {
		return Result{}, err
	}

	select {
	case rep := <-req.reply:
		return rep.res, rep.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (d *Dispatcher) submit(ctx context.Context, req request) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.reqs <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop terminates the worker and waits for it to exit. Requests still queued
// are answered with ErrDispatcherClosed, never abandoned. Idempotent.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case req := <-d.reqs:
			res, err := d.execute(req)
			req.reply <- reply{res: res, err: err}
		case <-d.done:
			d.drain()
			return
		}
	}
}

// drain answers everything still queued at shutdown. Submissions cannot race
// past this: Stop flips closed under the write lock before closing done.
func (d *Dispatcher) drain() {
	for {
		select {
		case req := <-d.reqs:
			req.reply <- reply{err: ErrDispatcherClosed}
		default:
			return
		}
	}
}

func (d *Dispatcher) execute(req request) (Result, error) {
	log := d.log.With().Str("request_id", req.id.String()).Str("method", string(req.cmd.Op)).Logger()
	cmd := req.cmd
	switch cmd.Op {
	case OpPopulate:
		count, err := d.engine.Populate(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("populate failed")
			return Result{}, err
		}
		return Result{Count: count}, nil
	case OpGetDays:
		return Result{Days: d.engine.Days()}, nil
	case OpGetEvents:
		return Result{Events: d.engine.Events(cmd.Offset, cmd.Count)}, nil
	case OpGetCamps:
		return Result{Camps: d.engine.Camps(cmd.Offset, cmd.Count)}, nil
	case OpFindEvents:
		return Result{Events: d.engine.FindEvents(cmd.Query, cmd.Day)}, nil
	case OpFindCamps:
		return Result{Camps: d.engine.FindCamps(cmd.Query)}, nil
	case OpFindArts:
		return Result{Arts: d.engine.FindArts(cmd.Query)}, nil
	case OpFindEvent:
		ev, err := d.engine.FindEvent(cmd.UID)
		if err != nil {
			return Result{}, err
		}
		return Result{Event: &ev}, nil
	case OpFindCamp:
		camp, err := d.engine.FindCamp(cmd.UID)
		if err != nil {
			return Result{}, err
		}
		return Result{Camp: &camp}, nil
	case OpFindArt:
		art, err := d.engine.FindArt(cmd.UID)
		if err != nil {
			return Result{}, err
		}
		return Result{Art: &art}, nil
	default:
		log.Warn().Msg("unknown method")
		return Result{}, nil
	}
}
