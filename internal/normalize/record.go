// Package normalize repairs raw upstream records and writes the versioned
// dataset files. Each repair rule is independent and idempotent; running a
// record through the normalizer twice changes nothing.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/dtarnawsky/dust/internal/model"
)

// Rules is the set of repair switches for one record kind. Switches that do
// not apply to a kind are no-ops.
type Rules struct {
	FixName       bool
	FixUID        bool
	FixTitle      bool
	FixLocation   bool
	FixOccurrence bool
	ConvertImage  bool
}

// placeholderSuffix is the junk the upstream appends to addresses it could
// not fully resolve.
const placeholderSuffix = " None None"

// noLocation is the upstream sentinel for a camp with no placement at all.
const noLocation = "None & None"

// RecordNormalizer applies the repair rules to individual raw records.
type RecordNormalizer struct {
	rules Rules
	log   zerolog.Logger
}

// NewRecordNormalizer builds a normalizer for one record kind's rule set.
func NewRecordNormalizer(rules Rules, log zerolog.Logger) *RecordNormalizer {
	return &RecordNormalizer{rules: rules, log: log}
}

// Camp normalizes one raw camp record. ok is false when the record carries
// too little data to display and must be excluded from the dataset.
func (n *RecordNormalizer) Camp(raw *model.RawRecord) (model.Camp, bool) {
	camp := model.Camp{
		UID:      stringify(raw.UID),
		Name:     n.coerceName(raw.Name),
		Landmark: raw.Landmark,
		URL:      deref(raw.URL),
	}
	camp.Description = n.fixCopy(raw.Description, camp.Name)
	loc, ok := n.repairLocation(raw, camp.Name, &camp.Description)
	camp.LocationString = loc
	return camp, ok
}

// Event normalizes one raw event record. ok is false when the event has no
// occurrences and cannot be scheduled.
func (n *RecordNormalizer) Event(raw *model.RawRecord) (model.Event, bool) {
	ev := model.Event{
		UID:           stringify(raw.UID),
		Title:         raw.Title,
		Name:          stringify(raw.Name),
		HostedByCamp:  raw.HostedByCamp,
		LocatedAtArt:  deref(raw.LocatedAtArt),
		OtherLocation: deref(raw.OtherLocation),
		AllDay:        raw.AllDay,
		URL:           deref(raw.URL),
		OccurrenceSet: raw.OccurrenceSet,
	}
	if raw.CheckLocation != nil && *raw.CheckLocation != 0 {
		ev.CheckLocation = *raw.CheckLocation
	}
	if n.rules.FixUID {
		ev.UID = stringify(raw.EventID)
	}
	if n.rules.FixTitle && isAllUpper(ev.Title) {
		ev.Title = TitleCase(ev.Title)
	}
	if raw.EventType != nil {
		ev.EventType = &model.EventType{Label: raw.EventType.Label}
	}

	ev.Description = n.fixCopy(raw.Description, ev.Title)
	ev.PrintDescription = n.fixCopy(raw.PrintDescription, ev.Title)

	ok := true
	if n.rules.FixOccurrence && len(ev.OccurrenceSet) == 0 {
		n.log.Warn().Str("title", ev.Title).Msg("invalid occurrence_set, event removed")
		ev.OccurrenceSet = []model.Occurrence{}
		ok = false
	}
	return ev, ok
}

// Art normalizes one raw art record. Image conversion happens later in the
// batch loop; here only the gallery reference is dropped (by omission from
// the output type).
func (n *RecordNormalizer) Art(raw *model.RawRecord) (model.Art, bool) {
	art := model.Art{
		UID:          stringify(raw.UID),
		Name:         n.coerceName(raw.Name),
		Artist:       raw.Artist,
		ContactEmail: raw.ContactEmail,
		URL:          deref(raw.URL),
	}
	art.Description = n.fixCopy(raw.Description, art.Name)
	art.LocationString = deref(raw.LocationString)
	if raw.Location != nil {
		art.Location = &model.Location{
			String:       deref(raw.Location.String),
			Frontage:     raw.Location.Frontage,
			Intersection: raw.Location.Intersection,
			GPSLatitude:  raw.Location.GPSLatitude,
			GPSLongitude: raw.Location.GPSLongitude,
			Category:     raw.Location.Category,
		}
	}
	for _, img := range raw.Images {
		art.Images = append(art.Images, model.Image{ThumbnailURL: img.ThumbnailURL})
	}

	ok := true
	if n.rules.FixLocation {
		var loc string
		loc, ok = n.repairLocation(raw, art.Name, &art.Description)
		art.LocationString = loc
		if art.Location != nil {
			art.Location.String = strings.TrimSuffix(art.Location.String, placeholderSuffix)
		}
	}
	return art, ok
}

// coerceName applies the name repair: non-string values are stringified and
// all-uppercase names are converted to title case.
func (n *RecordNormalizer) coerceName(v any) string {
	name := stringify(v)
	if !n.rules.FixName {
		return name
	}
	if _, isString := v.(string); !isString && v != nil {
		n.log.Warn().Str("name", name).Msg("replaced invalid name")
	}
	if isAllUpper(name) {
		name = TitleCase(name)
	}
	return name
}

// fixCopy enforces the description punctuation rules: terminate with one of
// ". ! ?" and upper-case the leading character. Empty strings pass through.
func (n *RecordNormalizer) fixCopy(s, who string) string {
	if s == "" {
		return s
	}
	last, _ := utf8.DecodeLastRuneInString(s)
	if last != '.' && last != '!' && last != '?' {
		s += "."
		n.log.Warn().Str("record", who).Msg("added full stop to description")
	}
	first, size := utf8.DecodeRuneInString(s)
	if up := unicode.ToUpper(first); up != first {
		s = string(up) + s[size:]
		n.log.Warn().Str("record", who).Msg("capitalized description")
	}
	return s
}

// repairLocation strips the placeholder suffix from the flat location string
// and decides whether the record survives: a record with the no-location
// sentinel and no description has nothing to display and is excluded; one
// with a real location but no description gets a generic placeholder instead.
func (n *RecordNormalizer) repairLocation(raw *model.RawRecord, name string, description *string) (string, bool) {
	loc := deref(raw.LocationString)
	if strings.HasSuffix(loc, placeholderSuffix) {
		loc = strings.TrimSuffix(loc, placeholderSuffix)
		n.log.Warn().Str("record", name).Str("location", loc).Msg("fixed location")
	}
	if loc == noLocation {
		if *description == "" {
			n.log.Warn().Str("record", name).Msg("no description or location, record removed")
			return loc, false
		}
	} else if *description == "" {
		*description = "This theme camp has no description."
		n.log.Warn().Str("record", name).Msg("camp has no description")
	}
	return loc, true
}

var wordRe = regexp.MustCompile(`\w\S*`)

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest, matching the upstream repair for shouting names.
func TitleCase(s string) string {
	return wordRe.ReplaceAllStringFunc(s, func(w string) string {
		return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	})
}

func isAllUpper(s string) bool {
	return s != "" && s == strings.ToUpper(s) && s != strings.ToLower(s)
}

// stringify renders upstream identifier/name values that arrive as strings
// or JSON numbers.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
