package domain

import (
	"path/filepath"
	"reflect"
	"testing"
)

func sampleCatalog() CourseCatalog {
	max := 6
	return CourseCatalog{
		Courses: map[string]Course{
			"PHYS 234": {
				Name:          "PHYS 234",
				MidtermDate:   "2026-10-15",
				MidtermWeight: 40,
				TotalPages:    120,
				Topics: []Topic{
					{Name: "Quantum State Vectors", Chapters: []string{"1"}, Pages: 45},
					{Name: "Operators and Measurement", Chapters: []string{"2"}, Pages: 40},
				},
			},
			"HLTH 204": {
				Name:          "HLTH 204",
				MidtermDate:   "2026-10-22",
				MidtermWeight: 25,
				Topics:        []Topic{{Name: "Determinants of Health", Chapters: []string{"1"}, Pages: 30}},
			},
			"SYSD 300": {
				// No midterm date; present in the catalog but never scheduled.
				Name:   "SYSD 300",
				Topics: []Topic{{Name: "Stocks and Flows", Pages: 25}},
			},
		},
		Preferences: UserPreferences{
			MaxHoursPerDay:      &max,
			PreferredStudyTimes: []string{"morning", "afternoon"},
			RestDays:            []string{"Sunday"},
			StudyStyle:          StyleSpacedRepetition,
		},
	}
}

func TestEligibleCodes(t *testing.T) {
	catalog := sampleCatalog()
	got := catalog.EligibleCodes()
	want := []string{"HLTH 204", "PHYS 234"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EligibleCodes = %v, want %v", got, want)
	}
	if n := catalog.TotalEligibleTopics(); n != 3 {
		t.Fatalf("TotalEligibleTopics = %d, want 3", n)
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	catalog := sampleCatalog()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := catalog.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if !reflect.DeepEqual(catalog, loaded) {
		t.Fatalf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", catalog, loaded)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing cache")
	}
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay(" 2026-10-15 ")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if day.Format(DayLayout) != "2026-10-15" {
		t.Fatalf("got %s", day.Format(DayLayout))
	}
	if _, err := ParseDay("October 15, 2026"); err == nil {
		t.Fatalf("non-canonical date must fail")
	}
}

func TestRestDaySet(t *testing.T) {
	prefs := UserPreferences{RestDays: []string{" Sunday", "saturday ", ""}}
	set := prefs.RestDaySet()
	if !set["sunday"] || !set["saturday"] || len(set) != 2 {
		t.Fatalf("RestDaySet = %v", set)
	}
}

func TestHasMidterm(t *testing.T) {
	if (Course{MidtermDate: "  "}).HasMidterm() {
		t.Fatalf("blank date must not count as a midterm")
	}
	if !(Course{MidtermDate: "2026-10-15"}).HasMidterm() {
		t.Fatalf("dated course must be eligible")
	}
}
