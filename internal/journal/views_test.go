package journal

import (
	"context"
	"testing"
	"time"

	"github.com/moonlitlabs/oneiro/internal/types"
)

func seedCollection(t *testing.T, j *Journal) map[string]string {
	t.Helper()
	ids := make(map[string]string)
	entries := []struct {
		key, title, content string
		category            types.Category
	}{
		{"falling", "Falling from a tower", "I fell and fell into the dark sea", types.CategoryFear},
		{"meeting", "Meeting an old friend", "We talked about the past for hours", types.CategoryPast},
		{"office", "Endless office", "Rows of desks in a grey OFFICE building", types.CategoryWork},
		{"deadline", "The deadline", "My manager kept moving the deadline", types.CategoryWork},
	}
	for _, e := range entries {
		ids[e.key] = seedDream(t, j, e.title, e.content, e.category)
	}
	if _, err := j.FetchDreams(context.Background(), testUser); err != nil {
		t.Fatal(err)
	}
	return ids
}

func titlesOf(dreams []types.Dream) []string {
	out := make([]string, len(dreams))
	for i, d := range dreams {
		out[i] = d.Title
	}
	return out
}

func TestFilteredDreams_NoFiltersReturnsAllInOrder(t *testing.T) {
	j := newTestJournal(nil, nil, nil)
	seedCollection(t, j)

	all := j.Dreams()
	filtered := j.FilteredDreams()
	if len(filtered) != len(all) {
		t.Fatalf("expected %d dreams, got %d", len(all), len(filtered))
	}
	for i := range all {
		if filtered[i].ID != all[i].ID {
			t.Fatalf("order not preserved at index %d", i)
		}
	}
}

func TestFilteredDreams_CategoryOnly(t *testing.T) {
	j := newTestJournal(nil, nil, nil)
	seedCollection(t, j)

	j.SetCategory(types.CategoryWork)
	filtered := j.FilteredDreams()
	if len(filtered) != 2 {
		t.Fatalf("expected 2 work dreams, got %d: %v", len(filtered), titlesOf(filtered))
	}
	for _, d := range filtered {
		if d.Category != types.CategoryWork {
			t.Errorf("unexpected category %q", d.Category)
		}
	}
}

func TestFilteredDreams_SearchOnly_CaseInsensitiveTitleOrContent(t *testing.T) {
	j := newTestJournal(nil, nil, nil)
	seedCollection(t, j)

	// Matches "office" in a title and in uppercase content.
	j.SetSearchQuery("oFFiCe")
	filtered := j.FilteredDreams()
	if len(filtered) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(filtered), titlesOf(filtered))
	}

	// Matches content only.
	j.SetSearchQuery("old friend")
	filtered = j.FilteredDreams()
	if len(filtered) != 1 || filtered[0].Title != "Meeting an old friend" {
		t.Errorf("expected content match, got %v", titlesOf(filtered))
	}
}

func TestFilteredDreams_CategoryAndSearchCompose(t *testing.T) {
	j := newTestJournal(nil, nil, nil)
	seedCollection(t, j)

	j.SetCategory(types.CategoryWork)
	j.SetSearchQuery("deadline")
	filtered := j.FilteredDreams()
	if len(filtered) != 1 || filtered[0].Title != "The deadline" {
		t.Errorf("expected only the deadline dream, got %v", titlesOf(filtered))
	}

	// Clearing one filter degrades to the other alone.
	j.SetSearchQuery("")
	if got := len(j.FilteredDreams()); got != 2 {
		t.Errorf("expected 2 work dreams after clearing search, got %d", got)
	}
	j.SetCategory("")
	if got := len(j.FilteredDreams()); got != 4 {
		t.Errorf("expected all dreams after clearing both, got %d", got)
	}
}

func TestFilteredDreams_NoMatchesReturnsEmptyNotNil(t *testing.T) {
	j := newTestJournal(nil, nil, nil)
	seedCollection(t, j)

	j.SetSearchQuery("no such phrase anywhere")
	filtered := j.FilteredDreams()
	if filtered == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(filtered) != 0 {
		t.Errorf("expected no matches, got %v", titlesOf(filtered))
	}
}

func TestFilteredDreams_DoesNotMutateHeldCollection(t *testing.T) {
	j := newTestJournal(nil, nil, nil)
	seedCollection(t, j)

	before := len(j.Dreams())
	j.SetCategory(types.CategoryFear)
	j.FilteredDreams()
	if len(j.Dreams()) != before {
		t.Error("filtering must not mutate the held collection")
	}
}

func TestCalendarMarks(t *testing.T) {
	j := newTestJournal(nil, nil, nil)
	ctx := context.Background()

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	otherDay := time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)

	add := func(title string, category types.Category, date time.Time) {
		t.Helper()
		_, err := j.AddDream(ctx, testUser, AddDreamInput{
			Title: title, Content: "c", Category: category, DreamDate: &date,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	add("one", types.CategoryFear, day)
	add("two", types.CategoryFear, day)
	add("three", types.CategoryWork, day)
	add("four", types.CategoryPast, otherDay)

	marks := j.CalendarMarks()
	if len(marks) != 2 {
		t.Fatalf("expected 2 marked days, got %d", len(marks))
	}

	first := marks["2024-05-10"]
	if first.Count != 3 {
		t.Errorf("expected 3 dreams on 2024-05-10, got %d", first.Count)
	}
	if len(first.Categories) != 2 {
		t.Errorf("expected 2 distinct categories, got %v", first.Categories)
	}

	second := marks["2024-05-11"]
	if second.Count != 1 {
		t.Errorf("expected 1 dream on 2024-05-11, got %d", second.Count)
	}
}

func TestDreamsOn(t *testing.T) {
	j := newTestJournal(nil, nil, nil)
	ctx := context.Background()

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	if _, err := j.AddDream(ctx, testUser, AddDreamInput{
		Title: "marked", Content: "c", DreamDate: &day,
	}); err != nil {
		t.Fatal(err)
	}
	seedDream(t, j, "today", "c", types.CategoryOther)

	matched := j.DreamsOn("2024-05-10")
	if len(matched) != 1 || matched[0].Title != "marked" {
		t.Errorf("expected only the backdated dream, got %v", titlesOf(matched))
	}

	if got := j.DreamsOn("1999-01-01"); len(got) != 0 {
		t.Errorf("expected no dreams, got %v", titlesOf(got))
	}
}

func TestStats(t *testing.T) {
	j := newTestJournal(nil, nil, &fakeIllustrator{imageURL: "data:image/png;base64,IMG"})
	ctx := context.Background()

	seedDream(t, j, "one", "c", types.CategoryWork)
	seedDream(t, j, "two", "c", types.CategoryWork)
	threeID := seedDream(t, j, "three", "c", types.CategoryFear)

	if err := j.GenerateDreamImage(ctx, testUser, threeID, "c"); err != nil {
		t.Fatal(err)
	}

	stats := j.Stats()
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.ByCategory[types.CategoryWork] != 2 {
		t.Errorf("expected 2 work dreams, got %d", stats.ByCategory[types.CategoryWork])
	}
	if stats.TopCategory != types.CategoryWork {
		t.Errorf("expected top category work, got %q", stats.TopCategory)
	}
	if stats.Illustrated != 1 {
		t.Errorf("expected 1 illustrated dream, got %d", stats.Illustrated)
	}
}

func TestStats_EmptyCollection(t *testing.T) {
	j := newTestJournal(nil, nil, nil)

	stats := j.Stats()
	if stats.Total != 0 {
		t.Errorf("expected total 0, got %d", stats.Total)
	}
	if stats.TopCategory != "" {
		t.Errorf("expected no top category, got %q", stats.TopCategory)
	}
}
