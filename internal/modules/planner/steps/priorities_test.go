package steps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/studyplanner-backend/internal/domain"
)

func TestDeterminePrioritiesParsesScores(t *testing.T) {
	catalog := twoCourseCatalog(time.Now())
	ai := &fakeOracle{
		jsonOut: []map[string]any{{
			"course_priorities": map[string]any{
				"PHYS 234": map[string]any{"priority_score": 8.5, "reasoning": "Exam in 14 days with 120 pages"},
				"HLTH 204": map[string]any{"priority_score": 6.0, "reasoning": "Exam in 21 days with 60 pages"},
			},
		}},
	}
	deps := testDeps(ai)

	table := DeterminePriorities(context.Background(), deps, catalog)
	if len(table) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(table))
	}
	if got := table["PHYS 234"].PriorityScore; got != 8.5 {
		t.Fatalf("PHYS 234 score = %v, want 8.5", got)
	}
	if got := table["HLTH 204"].Reasoning; got != "Exam in 21 days with 60 pages" {
		t.Fatalf("unexpected reasoning %q", got)
	}

	recs := deps.Runs.Records()
	if len(recs) != 1 || recs[0].Artifact != "priorities" || recs[0].Status != "succeeded" {
		t.Fatalf("unexpected run records %+v", recs)
	}
}

func TestDeterminePrioritiesDefaultsMissingCourse(t *testing.T) {
	catalog := twoCourseCatalog(time.Now())
	// HLTH 204 is absent from the response.
	ai := &fakeOracle{
		jsonOut: []map[string]any{{
			"course_priorities": map[string]any{
				"PHYS 234": map[string]any{"priority_score": 9.0, "reasoning": "Exam in 14 days"},
			},
		}},
	}
	deps := testDeps(ai)

	table := DeterminePriorities(context.Background(), deps, catalog)
	if got := table["HLTH 204"].PriorityScore; got != defaultPriorityScore {
		t.Fatalf("missing course score = %v, want default %v", got, defaultPriorityScore)
	}
	if got := table["HLTH 204"].Reasoning; got != defaultPriorityReasoning {
		t.Fatalf("missing course reasoning = %q", got)
	}
	if got := table["PHYS 234"].PriorityScore; got != 9.0 {
		t.Fatalf("present course score = %v, want 9.0", got)
	}

	recs := deps.Runs.Records()
	if len(recs) != 1 || recs[0].Status != "degraded" {
		t.Fatalf("expected degraded record, got %+v", recs)
	}
}

func TestDeterminePrioritiesOracleFailure(t *testing.T) {
	catalog := twoCourseCatalog(time.Now())
	ai := &fakeOracle{jsonErr: []error{errors.New("boom")}}
	deps := testDeps(ai)

	table := DeterminePriorities(context.Background(), deps, catalog)
	if len(table) != 2 {
		t.Fatalf("expected full default table, got %d entries", len(table))
	}
	for code, entry := range table {
		if entry.PriorityScore != defaultPriorityScore {
			t.Fatalf("%s score = %v, want default", code, entry.PriorityScore)
		}
	}
}

func TestParsePriorityTableClampsAndFilters(t *testing.T) {
	codes := []string{"PHYS 234"}
	obj := map[string]any{
		"course_priorities": map[string]any{
			"PHYS 234": map[string]any{"priority_score": 14.0, "reasoning": "way too high"},
			"FAKE 999": map[string]any{"priority_score": 5.0, "reasoning": "not in catalog"},
		},
	}
	table := parsePriorityTable(obj, codes)
	if len(table) != 1 {
		t.Fatalf("unknown codes must be dropped, got %d entries", len(table))
	}
	if got := table["PHYS 234"].PriorityScore; got != 10 {
		t.Fatalf("score not clamped: %v", got)
	}
}

func TestDeterminePrioritiesEmptyCatalog(t *testing.T) {
	ai := &fakeOracle{}
	deps := testDeps(ai)
	table := DeterminePriorities(context.Background(), deps, twoCourseCatalogWithoutDates())
	if len(table) != 0 {
		t.Fatalf("expected empty table, got %d entries", len(table))
	}
	if ai.jsonCall != 0 {
		t.Fatalf("oracle must not be called for an empty catalog")
	}
}

func twoCourseCatalogWithoutDates() domain.CourseCatalog {
	catalog := twoCourseCatalog(time.Now())
	for code, course := range catalog.Courses {
		course.MidtermDate = ""
		catalog.Courses[code] = course
	}
	return catalog
}
