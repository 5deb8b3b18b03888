package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("expected %q to be valid", c)
		}
	}

	invalid := []Category{"", "nightmare", "FEAR", "Work"}
	for _, c := range invalid {
		if c.Valid() {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}

func TestDreamListResponse_MarshalNilSlice(t *testing.T) {
	data, err := json.Marshal(DreamListResponse{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"dreams":[]`) {
		t.Errorf("expected empty array, got %s", data)
	}
}

func TestCalendarResponse_MarshalNilMap(t *testing.T) {
	data, err := json.Marshal(CalendarResponse{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"days":{}`) {
		t.Errorf("expected empty object, got %s", data)
	}
}

func TestJournalStats_MarshalNilMap(t *testing.T) {
	data, err := json.Marshal(JournalStats{Total: 0})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"by_category":{}`) {
		t.Errorf("expected empty object, got %s", data)
	}
}
