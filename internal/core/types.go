// Package core defines the fundamental types for HiBuddy.
// A day's schedule is a flat list of timed slots; everything else in the
// system either produces, repairs, or reads this structure.
package core

import "time"

// -----------------------------------------------------------------------------
// CATEGORY - What kind of activity a slot is
// -----------------------------------------------------------------------------

// Category is the closed set of activity kinds a slot can carry.
// The generator's free-form tagging is unreliable, so every value entering
// the system goes through ParseCategory first.
type Category string

const (
	CategoryMorningBriefing Category = "MORNING_BRIEFING" // greeting, weather, today's plan
	CategoryMeal            Category = "MEAL"             // eating, no cooking involved
	CategoryCooking         Category = "COOKING"          // preparing food
	CategoryHealth          Category = "HEALTH"           // exercise, stretching, walks
	CategoryClothing        Category = "CLOTHING"         // getting dressed practice
	CategoryHobby           Category = "HOBBY"            // leisure, media, free time
	CategoryRoutine         Category = "ROUTINE"          // hygiene and daily prep
	CategoryGeneral         Category = "GENERAL"          // catch-all
	CategoryNightWrapup     Category = "NIGHT_WRAPUP"     // end-of-day wind down
)

// categoryAliases maps loose values the generator produces onto the closed set.
var categoryAliases = map[string]Category{
	"MORNING":          CategoryMorningBriefing,
	"MORNING_BRIEFING": CategoryMorningBriefing,
	"BRIEFING":         CategoryMorningBriefing,
	"MEAL":             CategoryMeal,
	"EAT":              CategoryMeal,
	"FOOD":             CategoryMeal,
	"COOK":             CategoryCooking,
	"COOKING":          CategoryCooking,
	"HEALTH":           CategoryHealth,
	"EXERCISE":         CategoryHealth,
	"WORKOUT":          CategoryHealth,
	"CLOTHING":         CategoryClothing,
	"CLOTHES":          CategoryClothing,
	"HOBBY":            CategoryHobby,
	"LEISURE":          CategoryHobby,
	"ROUTINE":          CategoryRoutine,
	"HYGIENE":          CategoryRoutine,
	"GENERAL":          CategoryGeneral,
	"NIGHT":            CategoryNightWrapup,
	"WRAPUP":           CategoryNightWrapup,
	"NIGHT_WRAPUP":     CategoryNightWrapup,
}

// ParseCategory coerces an arbitrary string to a known Category.
// Unknown or empty values become CategoryGeneral; it never fails.
func ParseCategory(s string) Category {
	if c, ok := categoryAliases[normalizeUpper(s)]; ok {
		return c
	}
	return CategoryGeneral
}

// IsFood reports whether the category involves food.
func (c Category) IsFood() bool {
	return c == CategoryMeal || c == CategoryCooking
}

// categoryLabels holds the Korean labels shown to the end user.
var categoryLabels = map[Category]string{
	CategoryMorningBriefing: "아침 준비",
	CategoryMeal:            "식사",
	CategoryCooking:         "요리",
	CategoryHealth:          "운동",
	CategoryClothing:        "옷 입기",
	CategoryHobby:           "여가",
	CategoryRoutine:         "준비/위생",
	CategoryGeneral:         "일정",
	CategoryNightWrapup:     "하루 마무리",
}

// Label returns the user-facing Korean label for the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[CategoryGeneral]
}

func normalizeUpper(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z':
			out = append(out, b-'a'+'A')
		case b == ' ' || b == '\t':
			// strip stray whitespace
		default:
			out = append(out, b)
		}
	}
	return string(out)
}

// -----------------------------------------------------------------------------
// SLOT - One activity at one time of day
// -----------------------------------------------------------------------------

// MenuCandidate is one food option attached to a meal or cooking slot.
type MenuCandidate struct {
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`       // local path or URL
	VideoURL   string `json:"video_url,omitempty"`   // empty until the coordinator picks one
	VideoQuery string `json:"video_query,omitempty"` // last search query, kept so the edit screen can re-run it
}

// HealthMode is an exercise variant the coordinator allows for a slot.
type HealthMode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Slot is a single timed activity in the day's schedule.
type Slot struct {
	ID          string   `json:"id"`
	Time        string   `json:"time"` // "HH:MM", 24h; malformed values read as 00:00
	Category    Category `json:"type"`
	Task        string   `json:"task"`
	GuideScript []string `json:"guide_script,omitempty"`

	// Food slots carry menu candidates
	Menus []MenuCandidate `json:"menus,omitempty"`

	// Non-food slots carry at most one guide video
	VideoURL string `json:"video_url,omitempty"`

	// Health slots carry the exercise variants the coordinator allowed
	HealthModes []HealthMode `json:"health_modes,omitempty"`
}

// StartTime returns the slot's parsed start time. Malformed times read
// as midnight, matching ParseTimeOfDay.
func (s *Slot) StartTime() TimeOfDay {
	return ParseTimeOfDay(s.Time)
}

// SlotStatus is derived from the current time and never persisted.
type SlotStatus string

const (
	StatusActive   SlotStatus = "active"
	StatusPast     SlotStatus = "past"
	StatusUpcoming SlotStatus = "upcoming"
)

// -----------------------------------------------------------------------------
// SCHEDULE DOCUMENT - The single persisted artifact
// -----------------------------------------------------------------------------

// ScheduleDocument is the whole day: one date, one slot list.
// There is exactly one current document; saving replaces it wholesale.
type ScheduleDocument struct {
	Date  string `json:"date"` // "2006-01-02"
	Slots []Slot `json:"schedule"`
}

// SlotByID returns a pointer into the document's slot list, or nil.
func (d *ScheduleDocument) SlotByID(id string) *Slot {
	for i := range d.Slots {
		if d.Slots[i].ID == id {
			return &d.Slots[i]
		}
	}
	return nil
}

// Today formats the current date the way documents store it.
func Today(loc *time.Location) string {
	return time.Now().In(loc).Format("2006-01-02")
}
