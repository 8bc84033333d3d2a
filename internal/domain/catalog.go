// Package domain holds the catalog and schedule data model shared by
// ingestion, planning, validation, and export. Calendar dates travel as
// "YYYY-MM-DD" strings end to end so the catalog round-trips losslessly
// through its JSON form.
package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// ParseDay parses a "YYYY-MM-DD" calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

type Topic struct {
	Name     string   `json:"name"`
	Chapters []string `json:"chapters"`
	Pages    int      `json:"pages"`
}

type Course struct {
	Name string `json:"name"`
	// MidtermDate is "YYYY-MM-DD", or empty when no midterm is known. A
	// course without a midterm date is excluded from scheduling entirely.
	MidtermDate   string  `json:"midterm_date"`
	MidtermWeight int     `json:"midterm_weight"`
	Topics        []Topic `json:"topics"`
	TotalPages    int     `json:"total_pages"`
}

// HasMidterm reports whether the course is eligible for scheduling.
func (c Course) HasMidterm() bool {
	return strings.TrimSpace(c.MidtermDate) != ""
}

func (c Course) TopicNames() []string {
	out := make([]string, 0, len(c.Topics))
	for _, t := range c.Topics {
		out = append(out, t.Name)
	}
	return out
}

type StudyStyle string

const (
	StyleIntensive        StudyStyle = "intensive"
	StyleSpacedRepetition StudyStyle = "spaced_repetition"
	StyleBalanced         StudyStyle = "balanced"
)

type UserPreferences struct {
	// MaxHoursPerDay is nil when the user set no cap; the planner then
	// advises a soft 4-6h band instead of a hard per-day limit.
	MaxHoursPerDay      *int       `json:"max_hours_per_day"`
	PreferredStudyTimes []string   `json:"preferred_study_times"`
	RestDays            []string   `json:"rest_days"`
	StudyStyle          StudyStyle `json:"study_style"`
}

// RestDaySet returns the lowercased weekday names to skip.
func (p UserPreferences) RestDaySet() map[string]bool {
	out := make(map[string]bool, len(p.RestDays))
	for _, d := range p.RestDays {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out[d] = true
		}
	}
	return out
}

func DefaultPreferences() UserPreferences {
	return UserPreferences{
		PreferredStudyTimes: []string{"morning", "afternoon"},
		StudyStyle:          StyleSpacedRepetition,
	}
}

// CourseCatalog is the structured record of one run's courses and
// preferences, produced by ingestion and handed to the planner.
type CourseCatalog struct {
	Courses     map[string]Course `json:"courses"`
	Preferences UserPreferences   `json:"preferences"`
}

// EligibleCodes returns the codes of courses with a midterm date, sorted.
func (c CourseCatalog) EligibleCodes() []string {
	out := make([]string, 0, len(c.Courses))
	for code, course := range c.Courses {
		if course.HasMidterm() {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// TotalEligibleTopics counts topics across all eligible courses; the
// planner relaxes review requirements as this grows.
func (c CourseCatalog) TotalEligibleTopics() int {
	n := 0
	for _, course := range c.Courses {
		if course.HasMidterm() {
			n += len(course.Topics)
		}
	}
	return n
}

func (c CourseCatalog) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Save writes the catalog cache used as the inter-stage handoff.
func (c CourseCatalog) Save(path string) error {
	raw, err := c.MarshalIndent()
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write catalog cache: %w", err)
	}
	return nil
}

func LoadCatalog(path string) (CourseCatalog, error) {
	var out CourseCatalog
	raw, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read catalog cache: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode catalog cache: %w", err)
	}
	if out.Courses == nil {
		out.Courses = map[string]Course{}
	}
	return out, nil
}

