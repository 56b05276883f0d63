// Package engine holds the in-memory query engine: it loads the normalized
// dataset, builds cross-entity indices, derives display strings and answers
// search, pagination and lookup queries. All engine state is owned by a
// single dispatcher goroutine; results crossing that boundary are copies.
package engine

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dtarnawsky/dust/internal/dataset"
	"github.com/dtarnawsky/dust/internal/model"
	"github.com/dtarnawsky/dust/internal/timefmt"
)

// Engine answers queries over one loaded dataset. It is not safe for
// concurrent use; the Dispatcher serializes access.
type Engine struct {
	loader dataset.Loader
	log    zerolog.Logger

	events []model.Event
	camps  []model.Camp
	arts   []model.Art
	days   []time.Time
}

// New builds an empty Engine over a loader. Queries before Populate operate
// on empty collections and return degenerate empty results, never errors.
func New(loader dataset.Loader, log zerolog.Logger) *Engine {
	return &Engine{loader: loader, log: log}
}

// Populate loads the three collections, rebuilds every index and derived
// field, and returns the combined event and camp count as a population
// signal. The previous in-memory set is discarded wholesale.
func (e *Engine) Populate(ctx context.Context) (int, error) {
	events, err := e.loader.Events(ctx)
	if err != nil {
		return 0, err
	}
	camps, err := e.loader.Camps(ctx)
	if err != nil {
		return 0, err
	}
	arts, err := e.loader.Arts(ctx)
	if err != nil {
		return 0, err
	}

	kept := camps[:0]
	for _, camp := range camps {
		if camp.Description != "" || camp.LocationString != "" {
			kept = append(kept, camp)
		}
	}
	camps = kept

	coll := collate.New(language.English)
	sort.SliceStable(camps, func(i, j int) bool {
		return coll.CompareString(camps[i].Name, camps[j].Name) < 0
	})
	sort.SliceStable(arts, func(i, j int) bool {
		return coll.CompareString(arts[i].Name, arts[j].Name) < 0
	})

	e.events = events
	e.camps = camps
	e.arts = arts
	e.resolve()

	return len(e.events) + len(e.camps), nil
}

// Days returns the distinct calendar days touched by any occurrence, sorted
// ascending. The Today flag is left false; marking the current day is the
// caller's concern.
func (e *Engine) Days() []model.Day {
	result := make([]model.Day, 0, len(e.days))
	for _, d := range e.days {
		result = append(result, model.Day{Name: d.Format("Mon"), Date: d})
	}
	return result
}

// Events returns up to count events starting at offset. An out-of-range
// offset yields fewer or zero items, never an error.
func (e *Engine) Events(offset, count int) []model.Event {
	result := []model.Event{}
	for i := offset; i < len(e.events) && len(result) < count; i++ {
		result = append(result, e.events[i].Clone())
	}
	return result
}

// Camps returns up to count camps starting at offset.
func (e *Engine) Camps(offset, count int) []model.Camp {
	result := []model.Camp{}
	for i := offset; i < len(e.camps) && len(result) < count; i++ {
		result = append(result, e.camps[i].Clone())
	}
	return result
}

// FindEvent scans for an event by uid. Absence is a normal outcome reported
// as model.ErrNotFound.
func (e *Engine) FindEvent(uid string) (model.Event, error) {
	for i := range e.events {
		if e.events[i].UID == uid {
			return e.events[i].Clone(), nil
		}
	}
	return model.Event{}, model.ErrNotFound
}

// FindCamp scans for a camp by uid.
func (e *Engine) FindCamp(uid string) (model.Camp, error) {
	for i := range e.camps {
		if e.camps[i].UID == uid {
			return e.camps[i].Clone(), nil
		}
	}
	return model.Camp{}, model.ErrNotFound
}

// FindArt scans for an art installation by uid. Every image in the returned
// copy has its Ready flag reset: the view treats images as unrendered until
// it signals otherwise.
func (e *Engine) FindArt(uid string) (model.Art, error) {
	for i := range e.arts {
		if e.arts[i].UID == uid {
			art := e.arts[i].Clone()
			for j := range art.Images {
				art.Images[j].Ready = false
			}
			return art, nil
		}
	}
	return model.Art{}, model.ErrNotFound
}

// FindEvents returns events whose name or description contains query
// (case-insensitive; empty matches all) and, when day is given, that have at
// least one occurrence starting or ending on that calendar day. Time strings
// on the returned copies are recomputed relative to day; engine state is
// never mutated by a query.
func (e *Engine) FindEvents(query string, day *time.Time) []model.Event {
	q := strings.ToLower(query)
	result := []model.Event{}
	for i := range e.events {
		ev := &e.events[i]
		if !eventContains(q, ev) || !onDay(day, ev) {
			continue
		}
		c := ev.Clone()
		c.TimeString = timefmt.Occurrence(c.OccurrenceSet, day, false)
		result = append(result, c)
	}
	return result
}

// FindCamps returns camps whose name contains query, case-insensitively.
func (e *Engine) FindCamps(query string) []model.Camp {
	q := strings.ToLower(query)
	result := []model.Camp{}
	for i := range e.camps {
		if strings.Contains(strings.ToLower(e.camps[i].Name), q) {
			result = append(result, e.camps[i].Clone())
		}
	}
	return result
}

// FindArts returns art whose name contains query; an empty query means all.
func (e *Engine) FindArts(query string) []model.Art {
	q := strings.ToLower(query)
	result := []model.Art{}
	for i := range e.arts {
		if q == "" || strings.Contains(strings.ToLower(e.arts[i].Name), q) {
			result = append(result, e.arts[i].Clone())
		}
	}
	return result
}

func eventContains(q string, ev *model.Event) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(ev.Name), q) ||
		strings.Contains(strings.ToLower(ev.Description), q)
}

// onDay reports whether any occurrence starts or ends on day. An occurrence
// spanning day without touching it does not match; that quirk is part of the
// established filter behavior.
func onDay(day *time.Time, ev *model.Event) bool {
	if day == nil {
		return true
	}
	for _, occ := range ev.OccurrenceSet {
		start, err := time.Parse(time.RFC3339, occ.StartTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, occ.EndTime)
		if err != nil {
			continue
		}
		if timefmt.SameDay(start, *day) || timefmt.SameDay(end, *day) {
			return true
		}
	}
	return false
}
