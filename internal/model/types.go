package model

import (
	"strings"
	"time"
)

// Occurrence is one concrete start/end time of an event. Times are stored as
// RFC 3339 strings carrying the event-local UTC offset, exactly as persisted
// in the dataset files.
type Occurrence struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Image is one art thumbnail. ThumbnailURL is rewritten from the upstream URL
// to a local relative path once the image has been converted. Ready is
// transient display state and is never persisted.
type Image struct {
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Ready        bool   `json:"ready,omitempty"`
}

// EventType keeps only the human-readable label of the upstream event type.
type EventType struct {
	Label string `json:"label,omitempty"`
}

// Location is the nested placement structure kept for art records. Upstream
// routing fields (hour, minute, distance) are intentionally absent.
type Location struct {
	String       string  `json:"string,omitempty"`
	Frontage     string  `json:"frontage,omitempty"`
	Intersection string  `json:"intersection,omitempty"`
	GPSLatitude  float64 `json:"gps_latitude,omitempty"`
	GPSLongitude float64 `json:"gps_longitude,omitempty"`
	Category     string  `json:"category,omitempty"`
}

// Event is a normalized event record. Exactly one of HostedByCamp,
// OtherLocation and LocatedAtArt places the event; Camp, Location, TimeString
// and LongTimeString are derived in memory by the query engine and are empty
// in the persisted dataset.
type Event struct {
	UID              string       `json:"uid"`
	Title            string       `json:"title"`
	Name             string       `json:"name,omitempty"`
	Description      string       `json:"description,omitempty"`
	PrintDescription string       `json:"print_description,omitempty"`
	EventType        *EventType   `json:"event_type,omitempty"`
	HostedByCamp     string       `json:"hosted_by_camp,omitempty"`
	LocatedAtArt     string       `json:"located_at_art,omitempty"`
	OtherLocation    string       `json:"other_location,omitempty"`
	AllDay           *bool        `json:"all_day,omitempty"`
	CheckLocation    int          `json:"check_location,omitempty"`
	URL              string       `json:"url,omitempty"`
	OccurrenceSet    []Occurrence `json:"occurrence_set"`

	Camp           string `json:"camp,omitempty"`
	Location       string `json:"location,omitempty"`
	TimeString     string `json:"timeString,omitempty"`
	LongTimeString string `json:"longTimeString,omitempty"`
}

// Clone returns a deep copy safe to hand across the dispatch boundary.
func (e Event) Clone() Event {
	c := e
	if e.OccurrenceSet != nil {
		c.OccurrenceSet = make([]Occurrence, len(e.OccurrenceSet))
		copy(c.OccurrenceSet, e.OccurrenceSet)
	}
	if e.EventType != nil {
		et := *e.EventType
		c.EventType = &et
	}
	if e.AllDay != nil {
		ad := *e.AllDay
		c.AllDay = &ad
	}
	return c
}

// Camp is a normalized theme camp record. After normalization at least one of
// Description and LocationString is non-empty.
type Camp struct {
	UID            string `json:"uid"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	LocationString string `json:"location_string"`
	Landmark       string `json:"landmark,omitempty"`
	URL            string `json:"url,omitempty"`
}

// Clone returns a copy of the camp. Camps carry no reference fields but the
// method keeps the boundary contract uniform across record kinds.
func (c Camp) Clone() Camp { return c }

// Art is a normalized art installation record.
type Art struct {
	UID            string    `json:"uid"`
	Name           string    `json:"name"`
	Artist         string    `json:"artist,omitempty"`
	Description    string    `json:"description,omitempty"`
	ContactEmail   string    `json:"contact_email,omitempty"`
	URL            string    `json:"url,omitempty"`
	LocationString string    `json:"location_string,omitempty"`
	Location       *Location `json:"location,omitempty"`
	Images         []Image   `json:"images,omitempty"`
}

// Clone returns a deep copy safe to hand across the dispatch boundary.
func (a Art) Clone() Art {
	c := a
	if a.Images != nil {
		c.Images = make([]Image, len(a.Images))
		copy(c.Images, a.Images)
	}
	if a.Location != nil {
		loc := *a.Location
		c.Location = &loc
	}
	return c
}

// Day is one distinct calendar date on which at least one occurrence starts
// or ends. Name is the three-letter weekday. Today is display state owned by
// the caller, not derived by the engine.
type Day struct {
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
	Today bool      `json:"today"`
}

// Dataset identifies one (name, year) pair, e.g. ("TTITD", "2023").
type Dataset struct {
	Name string `json:"name"`
	Year string `json:"year"`
}

// Filename is the on-disk folder stem for the dataset, e.g. "ttitd-2023".
func (d Dataset) Filename() string {
	return strings.ToLower(d.Name + "-" + d.Year)
}
