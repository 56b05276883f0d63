package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/dtarnawsky/dust/internal/model"
	"github.com/dtarnawsky/dust/internal/timefmt"
)

// index holds the uid lookup tables built from the camp and art collections.
type index struct {
	campName     map[string]string
	campLocation map[string]string
	artName      map[string]string
}

func buildIndex(camps []model.Camp, arts []model.Art) index {
	idx := index{
		campName:     make(map[string]string, len(camps)),
		campLocation: make(map[string]string, len(camps)),
		artName:      make(map[string]string, len(arts)),
	}
	for i := range camps {
		idx.campName[camps[i].UID] = camps[i].Name
		idx.campLocation[camps[i].UID] = camps[i].LocationString
	}
	for i := range arts {
		idx.artName[arts[i].UID] = arts[i].Name
	}
	return idx
}

// resolve walks every event once: display location by camp > other-location >
// art precedence, print_description punctuation re-check, precomputed time
// strings, and the derived day set from occurrence starts and ends.
func (e *Engine) resolve() {
	idx := buildIndex(e.camps, e.arts)
	days := map[string]time.Time{}

	for i := range e.events {
		ev := &e.events[i]
		switch {
		case ev.HostedByCamp != "":
			ev.Camp = idx.campName[ev.HostedByCamp]
			ev.Location = idx.campLocation[ev.HostedByCamp]
		case ev.OtherLocation != "":
			ev.Camp = ev.OtherLocation
		case ev.LocatedAtArt != "":
			ev.Camp = idx.artName[ev.LocatedAtArt]
		default:
			e.log.Warn().Str("uid", ev.UID).Str("title", ev.Title).Msg("event has no location")
		}

		if ev.PrintDescription != "" && !strings.HasSuffix(ev.PrintDescription, ".") {
			ev.PrintDescription += "."
		}

		ev.TimeString = timefmt.Occurrence(ev.OccurrenceSet, nil, false)
		ev.LongTimeString = timefmt.Occurrence(ev.OccurrenceSet, nil, true)

		for _, occ := range ev.OccurrenceSet {
			addDay(days, occ.StartTime)
			addDay(days, occ.EndTime)
		}
	}

	e.days = e.days[:0]
	for _, d := range days {
		e.days = append(e.days, d)
	}
	sort.Slice(e.days, func(i, j int) bool { return e.days[i].Before(e.days[j]) })
}

// addDay records the calendar date of an occurrence timestamp, truncated to
// midnight in the timestamp's own (event local) zone. Dates are keyed by
// their formatted form so identical days from separate parses dedupe.
func addDay(days map[string]time.Time, stamp string) {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return
	}
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	days[date.Format("2006-01-02")] = date
}
