package normalize

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dtarnawsky/dust/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Camp Soft Landing", TitleCase("CAMP SOFT LANDING"))
	assert.Equal(t, "The Man", TitleCase("THE MAN"))
	assert.Equal(t, "Already Fine", TitleCase("Already Fine"))
}

func TestCampNameCoercion(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixName: true, FixLocation: true}, zerolog.Nop())

	camp, ok := rn.Camp(&model.RawRecord{
		UID:            "100",
		Name:           "SHOUTING CAMP",
		Description:    "A camp.",
		LocationString: strPtr("7:30 & E"),
	})
	assert.True(t, ok)
	assert.Equal(t, "Shouting Camp", camp.Name)

	// Numeric names are stringified.
	camp, ok = rn.Camp(&model.RawRecord{
		UID:            "101",
		Name:           float64(42),
		Description:    "A camp.",
		LocationString: strPtr("3:00 & B"),
	})
	assert.True(t, ok)
	assert.Equal(t, "42", camp.Name)
}

func TestCampNameCoercionIdempotent(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixName: true, FixLocation: true}, zerolog.Nop())
	raw := model.RawRecord{
		UID:            "100",
		Name:           "SHOUTING CAMP",
		Description:    "A camp.",
		LocationString: strPtr("7:30 & E"),
	}
	first, _ := rn.Camp(&raw)

	again := raw
	again.Name = first.Name
	second, _ := rn.Camp(&again)
	assert.Equal(t, first, second)
}

func TestCampDescriptionPunctuation(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixName: true, FixLocation: true}, zerolog.Nop())

	camp, _ := rn.Camp(&model.RawRecord{
		UID:            "1",
		Name:           "Tea House",
		Description:    "we serve tea",
		LocationString: strPtr("4:30 & C"),
	})
	assert.Equal(t, "We serve tea.", camp.Description)

	// Already-terminated descriptions are untouched.
	camp, _ = rn.Camp(&model.RawRecord{
		UID:            "2",
		Name:           "Tea House",
		Description:    "Best tea!",
		LocationString: strPtr("4:30 & C"),
	})
	assert.Equal(t, "Best tea!", camp.Description)
}

func TestCampLocationPlaceholderStripped(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixName: true, FixLocation: true}, zerolog.Nop())

	camp, ok := rn.Camp(&model.RawRecord{
		UID:            "1",
		Name:           "Lost Camp",
		Description:    "Found us.",
		LocationString: strPtr("8:00 & G None None"),
	})
	assert.True(t, ok)
	assert.Equal(t, "8:00 & G", camp.LocationString)
}

func TestCampWithoutLocationOrDescriptionIsInvalid(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixName: true, FixLocation: true}, zerolog.Nop())

	_, ok := rn.Camp(&model.RawRecord{
		UID:            "1",
		Name:           "Ghost Camp",
		LocationString: strPtr("None & None"),
	})
	assert.False(t, ok)

	// A missing description with a real location gets a placeholder instead.
	camp, ok := rn.Camp(&model.RawRecord{
		UID:            "2",
		Name:           "Quiet Camp",
		LocationString: strPtr("2:00 & A"),
	})
	assert.True(t, ok)
	assert.Equal(t, "This theme camp has no description.", camp.Description)

	// No-location sentinel plus a description survives.
	camp, ok = rn.Camp(&model.RawRecord{
		UID:            "3",
		Name:           "Wandering Camp",
		Description:    "We roam.",
		LocationString: strPtr("None & None"),
	})
	assert.True(t, ok)
	assert.Equal(t, "We roam.", camp.Description)
}

func TestEventUIDDerivation(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixOccurrence: true, FixTitle: true, FixUID: true}, zerolog.Nop())

	ev, ok := rn.Event(&model.RawRecord{
		UID:     "ignored",
		EventID: float64(12345),
		Title:   "Sunrise Yoga",
		OccurrenceSet: []model.Occurrence{
			{StartTime: "2023-08-29T07:00:00-07:00", EndTime: "2023-08-29T08:00:00-07:00"},
		},
	})
	assert.True(t, ok)
	assert.Equal(t, "12345", ev.UID)
}

func TestEventTitleCasing(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixOccurrence: true, FixTitle: true, FixUID: true}, zerolog.Nop())

	ev, _ := rn.Event(&model.RawRecord{
		EventID: float64(1),
		Title:   "LOUD PARTY",
		OccurrenceSet: []model.Occurrence{
			{StartTime: "2023-08-29T19:00:00-07:00", EndTime: "2023-08-29T21:00:00-07:00"},
		},
	})
	assert.Equal(t, "Loud Party", ev.Title)
}

func TestEventWithoutOccurrencesIsInvalid(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixOccurrence: true, FixTitle: true, FixUID: true}, zerolog.Nop())

	ev, ok := rn.Event(&model.RawRecord{
		EventID: float64(2),
		Title:   "Ghost Event",
	})
	assert.False(t, ok)
	assert.NotNil(t, ev.OccurrenceSet)
	assert.Empty(t, ev.OccurrenceSet)
}

func TestEventNullSentinelsCollapse(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixOccurrence: true, FixTitle: true, FixUID: true}, zerolog.Nop())

	ev, _ := rn.Event(&model.RawRecord{
		EventID:       float64(3),
		Title:         "Edge Case",
		OtherLocation: strPtr(""),
		CheckLocation: intPtr(0),
		URL:           nil,
		OccurrenceSet: []model.Occurrence{
			{StartTime: "2023-08-29T19:00:00-07:00", EndTime: "2023-08-29T21:00:00-07:00"},
		},
	})
	assert.Empty(t, ev.OtherLocation)
	assert.Zero(t, ev.CheckLocation)
	assert.Empty(t, ev.URL)
}

func TestEventPrintDescriptionRules(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixOccurrence: true, FixTitle: true, FixUID: true}, zerolog.Nop())

	ev, _ := rn.Event(&model.RawRecord{
		EventID:          float64(4),
		Title:            "Story Hour",
		Description:      "tales told nightly",
		PrintDescription: "tales",
		OccurrenceSet: []model.Occurrence{
			{StartTime: "2023-08-29T19:00:00-07:00", EndTime: "2023-08-29T21:00:00-07:00"},
		},
	})
	assert.Equal(t, "Tales told nightly.", ev.Description)
	assert.Equal(t, "Tales.", ev.PrintDescription)
}

func TestArtKeepsImagesWithoutGalleryRef(t *testing.T) {
	rn := NewRecordNormalizer(Rules{FixName: true}, zerolog.Nop())

	art, ok := rn.Art(&model.RawRecord{
		UID:         "900",
		Name:        "GLOWING THING",
		Description: "It glows.",
		Images: []model.RawImage{
			{ThumbnailURL: "https://example.org/thumb.png", GalleryRef: []byte(`"g1"`)},
		},
	})
	assert.True(t, ok)
	assert.Equal(t, "Glowing Thing", art.Name)
	assert.Len(t, art.Images, 1)
	assert.Equal(t, "https://example.org/thumb.png", art.Images[0].ThumbnailURL)
}
