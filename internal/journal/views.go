package journal

import (
	"strings"

	"github.com/moonlitlabs/oneiro/internal/types"
)

// dateLayout is the calendar-day key format.
const dateLayout = "2006-01-02"

// FilteredDreams returns the held collection narrowed by the active filters:
// exact category match first, then case-insensitive substring match against
// title or content. Order is preserved; the held collection is never mutated.
func (j *Journal) FilteredDreams() []types.Dream {
	j.mu.RLock()
	category := j.selectedCategory
	query := strings.ToLower(j.searchQuery)
	dreams := make([]types.Dream, len(j.dreams))
	copy(dreams, j.dreams)
	j.mu.RUnlock()

	filtered := dreams
	if category != "" {
		kept := filtered[:0:0]
		for _, d := range filtered {
			if d.Category == category {
				kept = append(kept, d)
			}
		}
		filtered = kept
	}

	if query != "" {
		kept := filtered[:0:0]
		for _, d := range filtered {
			if strings.Contains(strings.ToLower(d.Title), query) ||
				strings.Contains(strings.ToLower(d.Content), query) {
				kept = append(kept, d)
			}
		}
		filtered = kept
	}

	if filtered == nil {
		filtered = []types.Dream{}
	}
	return filtered
}

// CalendarMarks aggregates the held collection per calendar day (UTC):
// how many dreams were recorded and which categories they carry.
func (j *Journal) CalendarMarks() map[string]types.DayMarks {
	dreams := j.Dreams()

	marks := make(map[string]types.DayMarks)
	for _, d := range dreams {
		key := d.CreatedAt.UTC().Format(dateLayout)
		day := marks[key]
		day.Count++
		if !containsCategory(day.Categories, d.Category) {
			day.Categories = append(day.Categories, d.Category)
		}
		marks[key] = day
	}
	return marks
}

// DreamsOn returns the held dreams recorded on the given YYYY-MM-DD day,
// in collection order.
func (j *Journal) DreamsOn(date string) []types.Dream {
	dreams := j.Dreams()

	matched := []types.Dream{}
	for _, d := range dreams {
		if d.CreatedAt.UTC().Format(dateLayout) == date {
			matched = append(matched, d)
		}
	}
	return matched
}

// Stats summarizes the held collection for the statistics view. The top
// category is the one with the most dreams; ties resolve in category
// display order.
func (j *Journal) Stats() types.JournalStats {
	dreams := j.Dreams()

	stats := types.JournalStats{
		Total:      len(dreams),
		ByCategory: make(map[types.Category]int),
	}
	for _, d := range dreams {
		stats.ByCategory[d.Category]++
		if d.ImageURL != "" {
			stats.Illustrated++
		}
	}

	best := 0
	for _, c := range types.Categories {
		if n := stats.ByCategory[c]; n > best {
			best = n
			stats.TopCategory = c
		}
	}
	return stats
}

func containsCategory(list []types.Category, c types.Category) bool {
	for _, known := range list {
		if known == c {
			return true
		}
	}
	return false
}
