package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/studyplanner-backend/internal/domain"
	"github.com/yungbote/studyplanner-backend/internal/modules/planner/steps"
)

func sampleSchedule() domain.Schedule {
	return domain.Schedule{
		// Out of order on purpose; the export must sort by date.
		{Date: "2026-10-06", Sessions: []domain.Session{
			{Course: "PHYS 234", Topic: "Operators and Measurement", Hours: 1, Type: domain.SessionReview1},
		}},
		{Date: "2026-10-05", Sessions: []domain.Session{
			{Course: "PHYS 234", Topic: "Quantum State Vectors", Hours: 2.5, Type: domain.SessionLearning},
			{Course: "HLTH 204", Topic: "Health Systems", Hours: 2, Type: domain.SessionLearning},
		}},
		{Date: "2026-10-14", Sessions: []domain.Session{
			{Course: "PHYS 234", Topic: "Quantum State Vectors", Hours: 1, Type: domain.SessionReview2},
		}},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.csv")
	warnings := []steps.Issue{
		{Severity: steps.SeverityWarning, Message: "Last study session for PHYS 234 is 5 days before exam"},
	}
	if err := WriteCSV(path, sampleSchedule(), warnings); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")

	if lines[0] != "# VALIDATION ISSUES:" {
		t.Fatalf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "# WARNING: Last study session") {
		t.Fatalf("warning line = %q", lines[1])
	}
	if lines[2] != "Date,Course,Topic,Hours,Type,Notes" {
		t.Fatalf("header = %q", lines[2])
	}
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), raw)
	}

	// Rows sorted by date, first data row first.
	if !strings.HasPrefix(lines[3], "2026-10-05,PHYS 234,Quantum State Vectors,2.5,learning,") {
		t.Fatalf("first row = %q", lines[3])
	}
	if !strings.Contains(lines[3], "Initial learning session") {
		t.Fatalf("missing learning note in %q", lines[3])
	}
	if !strings.Contains(lines[5], "First review (spaced repetition)") {
		t.Fatalf("missing review_1 note in %q", lines[5])
	}
	if !strings.HasPrefix(lines[6], "2026-10-14,") || !strings.Contains(lines[6], "Final review before exam") {
		t.Fatalf("last row = %q", lines[6])
	}
}

func TestWriteCSVKeepsResidualErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.csv")
	issues := []steps.Issue{
		{Severity: steps.SeverityWarning, Message: "Last study session for PHYS 234 is 5 days before exam"},
		{Severity: steps.SeverityError, Message: "Day 2026-10-05 has 9 hours (exceeds 8 hour maximum)", Date: "2026-10-05"},
	}
	if err := WriteCSV(path, sampleSchedule(), issues); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")

	// Errors come first in the header block, then warnings, each keeping
	// its severity tag.
	if lines[0] != "# VALIDATION ISSUES:" {
		t.Fatalf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "# ERROR: Day 2026-10-05 has 9 hours") {
		t.Fatalf("error line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "# WARNING: Last study session") {
		t.Fatalf("warning line = %q", lines[2])
	}
	if lines[3] != "Date,Course,Topic,Hours,Type,Notes" {
		t.Fatalf("header = %q", lines[3])
	}
}

func TestWriteCSVNoWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.csv")
	if err := WriteCSV(path, sampleSchedule(), nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.HasPrefix(string(raw), "Date,Course,Topic,Hours,Type,Notes") {
		t.Fatalf("clean export must start with the header, got %q", strings.SplitN(string(raw), "\n", 2)[0])
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.xlsx")
	warnings := []steps.Issue{
		{Severity: steps.SeverityWarning, Message: "something minor"},
	}
	if err := WriteXLSX(path, sampleSchedule(), warnings); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat xlsx: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("empty workbook written")
	}
}

func TestRowsOrderingAndHours(t *testing.T) {
	rows := Rows(sampleSchedule())
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "2026-10-05" || rows[3][0] != "2026-10-14" {
		t.Fatalf("rows not date-sorted: %v", rows)
	}
	if rows[0][3] != "2.5" || rows[1][3] != "2" {
		t.Fatalf("hours formatting: %v %v", rows[0][3], rows[1][3])
	}
}

func TestSummary(t *testing.T) {
	got := Summary(sampleSchedule(), nil)
	if got != "3 study days, 4 sessions, 6.5 total hours" {
		t.Fatalf("summary = %q", got)
	}
	withWarn := Summary(sampleSchedule(), []steps.Issue{{Severity: steps.SeverityWarning, Message: "x"}})
	if !strings.HasSuffix(withWarn, "(1 warnings)") {
		t.Fatalf("summary = %q", withWarn)
	}
	withErr := Summary(sampleSchedule(), []steps.Issue{
		{Severity: steps.SeverityError, Message: "x"},
		{Severity: steps.SeverityWarning, Message: "y"},
	})
	if !strings.HasSuffix(withErr, "(1 unresolved errors, 1 warnings)") {
		t.Fatalf("summary = %q", withErr)
	}
}
