package types

import (
	"encoding/json"
	"time"
)

// Category classifies a dream entry.
type Category string

const (
	CategoryFear         Category = "fear"
	CategoryRelationship Category = "relationship"
	CategoryWork         Category = "work"
	CategoryFamily       Category = "family"
	CategoryPast         Category = "past"
	CategoryFuture       Category = "future"
	CategoryOther        Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFear,
	CategoryRelationship,
	CategoryWork,
	CategoryFamily,
	CategoryPast,
	CategoryFuture,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Dream represents a single journal entry. The analysis is produced once at
// creation time and never recomputed; the image URL is set at most once.
type Dream struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Analysis  string    `json:"analysis"`
	Category  Category  `json:"category"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDream is the input type for persisting a dream (without generated fields).
// A nil DreamDate means "use the server timestamp at full precision"; a
// non-nil value backdates the entry to that calendar day.
type NewDream struct {
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Analysis  string     `json:"analysis"`
	Category  Category   `json:"category"`
	DreamDate *time.Time `json:"dream_date,omitempty"`
}

// CreateDreamRequest is the API payload for recording a new dream.
type CreateDreamRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category,omitempty"`
	Language  string `json:"language,omitempty"`
	DreamDate string `json:"dream_date,omitempty"` // YYYY-MM-DD
}

// CreateDreamResponse carries the id assigned by the persistence gateway.
type CreateDreamResponse struct {
	ID string `json:"id"`
}

// GenerateImageResponse carries the stored illustration reference.
type GenerateImageResponse struct {
	ImageURL string `json:"image_url"`
}

// DreamListResponse wraps a list of dreams.
type DreamListResponse struct {
	Dreams []Dream `json:"dreams"`
}

// DayMarks aggregates the dreams recorded on a single calendar day.
type DayMarks struct {
	Count      int        `json:"count"`
	Categories []Category `json:"categories"`
}

// CalendarResponse maps YYYY-MM-DD dates to their day marks.
type CalendarResponse struct {
	Days map[string]DayMarks `json:"days"`
}

// JournalStats summarizes the held collection for the statistics view.
type JournalStats struct {
	Total       int              `json:"total"`
	ByCategory  map[Category]int `json:"by_category"`
	TopCategory Category         `json:"top_category,omitempty"`
	Illustrated int              `json:"illustrated"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Provider   string `json:"analysis_provider"`
	DreamCount int64  `json:"dream_count"`
}

// MarshalJSON ensures nil slices in DreamListResponse marshal as [] not null.
func (r DreamListResponse) MarshalJSON() ([]byte, error) {
	if r.Dreams == nil {
		r.Dreams = []Dream{}
	}
	type Alias DreamListResponse
	return json.Marshal(Alias(r))
}

// MarshalJSON ensures a nil day map marshals as {} not null.
func (r CalendarResponse) MarshalJSON() ([]byte, error) {
	if r.Days == nil {
		r.Days = map[string]DayMarks{}
	}
	type Alias CalendarResponse
	return json.Marshal(Alias(r))
}

// MarshalJSON ensures nil category counts marshal as {} not null.
func (s JournalStats) MarshalJSON() ([]byte, error) {
	if s.ByCategory == nil {
		s.ByCategory = map[Category]int{}
	}
	type Alias JournalStats
	return json.Marshal(Alias(s))
}
