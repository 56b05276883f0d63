package model

import "encoding/json"

// RawRecord mirrors one record as returned by the upstream API. Every field
// is optional: the feed is inconsistent enough that nothing can be assumed
// present or well-typed. Fields typed json.RawMessage are decoded so the
// upstream schema stays explicit, but they are never copied to a normalized
// record; dropping them is done by omission from the output types.
type RawRecord struct {
	UID              any           `json:"uid,omitempty"`
	EventID          any           `json:"event_id,omitempty"`
	Name             any           `json:"name,omitempty"`
	Title            string        `json:"title,omitempty"`
	Description      string        `json:"description,omitempty"`
	PrintDescription string        `json:"print_description,omitempty"`
	EventType        *RawEventType `json:"event_type,omitempty"`
	HostedByCamp     string        `json:"hosted_by_camp,omitempty"`
	LocatedAtArt     *string       `json:"located_at_art,omitempty"`
	OtherLocation    *string       `json:"other_location,omitempty"`
	AllDay           *bool         `json:"all_day,omitempty"`
	CheckLocation    *int          `json:"check_location,omitempty"`
	URL              *string       `json:"url,omitempty"`
	LocationString   *string       `json:"location_string,omitempty"`
	Location         *RawLocation  `json:"location,omitempty"`
	OccurrenceSet    []Occurrence  `json:"occurrence_set,omitempty"`
	Images           []RawImage    `json:"images,omitempty"`
	Artist           string        `json:"artist,omitempty"`
	Landmark         string        `json:"landmark,omitempty"`
	ContactEmail     string        `json:"contact_email,omitempty"`

	// Upstream-only baggage with no client-visible value.
	Program           json.RawMessage `json:"program,omitempty"`
	DonationLink      json.RawMessage `json:"donation_link,omitempty"`
	GuidedTours       json.RawMessage `json:"guided_tours,omitempty"`
	SelfGuidedTourMap json.RawMessage `json:"self_guided_tour_map,omitempty"`
	Slug              json.RawMessage `json:"slug,omitempty"`
	Year              json.RawMessage `json:"year,omitempty"`
}

// RawImage carries the remote thumbnail plus the gallery reference the
// normalizer drops.
type RawImage struct {
	ThumbnailURL string          `json:"thumbnail_url,omitempty"`
	GalleryRef   json.RawMessage `json:"gallery_ref,omitempty"`
}

// RawEventType keeps the label; id and abbr are pruned.
type RawEventType struct {
	Label string          `json:"label,omitempty"`
	ID    json.RawMessage `json:"id,omitempty"`
	Abbr  json.RawMessage `json:"abbr,omitempty"`
}

// RawLocation is the nested placement structure; hour, minute and distance
// are pruned from the normalized output.
type RawLocation struct {
	String       *string         `json:"string,omitempty"`
	Frontage     string          `json:"frontage,omitempty"`
	Intersection string          `json:"intersection,omitempty"`
	GPSLatitude  float64         `json:"gps_latitude,omitempty"`
	GPSLongitude float64         `json:"gps_longitude,omitempty"`
	Category     string          `json:"category,omitempty"`
	Hour         json.RawMessage `json:"hour,omitempty"`
	Minute       json.RawMessage `json:"minute,omitempty"`
	Distance     json.RawMessage `json:"distance,omitempty"`
}
