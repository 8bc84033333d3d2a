// Package report renders a finished schedule to CSV and XLSX files.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yungbote/studyplanner-backend/internal/domain"
	"github.com/yungbote/studyplanner-backend/internal/modules/planner/steps"
)

var columns = []string{"Date", "Course", "Topic", "Hours", "Type", "Notes"}

// sessionNote maps the machine session type to the human-facing note column.
func sessionNote(t domain.SessionType) string {
	switch t {
	case domain.SessionLearning:
		return "Initial learning session"
	case domain.SessionReview1:
		return "First review (spaced repetition)"
	case domain.SessionReview2:
		return "Final review before exam"
	default:
		return ""
	}
}

func formatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Rows flattens the schedule into report rows, one per session, ordered by
// date and then by the order sessions appear within the day.
func Rows(schedule domain.Schedule) [][]string {
	var rows [][]string
	for _, day := range schedule.Sorted() {
		for _, s := range day.Sessions {
			rows = append(rows, []string{
				day.Date,
				s.Course,
				s.Topic,
				formatHours(s.Hours),
				string(s.Type),
				sessionNote(s.Type),
			})
		}
	}
	return rows
}

// orderIssues puts unresolved errors ahead of warnings so the header reads
// worst-first. Relative order within each severity is preserved.
func orderIssues(issues []steps.Issue) []steps.Issue {
	return append(steps.Errors(issues), steps.Warnings(issues)...)
}

// WriteCSV writes the schedule to path. Validation issues that survived the
// repair loop, errors and warnings alike, are preserved as comment lines
// above the header so a best-effort export still names its defects.
func WriteCSV(path string, schedule domain.Schedule, issues []steps.Issue) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create csv: %w", err)
	}
	defer f.Close()

	if len(issues) > 0 {
		if _, err := fmt.Fprintln(f, "# VALIDATION ISSUES:"); err != nil {
			return fmt.Errorf("report: write issues: %w", err)
		}
		for _, issue := range orderIssues(issues) {
			if _, err := fmt.Fprintf(f, "# %s\n", issue.String()); err != nil {
				return fmt.Errorf("report: write issues: %w", err)
			}
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, row := range Rows(schedule) {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("report: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("report: flush csv: %w", err)
	}
	return nil
}

const xlsxSheet = "Schedule"

// WriteXLSX writes the schedule as a single-sheet workbook. Residual issues,
// when present, go on a second sheet rather than inline comments.
func WriteXLSX(path string, schedule domain.Schedule, issues []steps.Issue) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("report: create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("report: drop default sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report: header style: %w", err)
	}
	for i, name := range columns {
		cell, cErr := excelize.CoordinatesToCellName(i+1, 1)
		if cErr != nil {
			return fmt.Errorf("report: header cell: %w", cErr)
		}
		if err := f.SetCellValue(xlsxSheet, cell, name); err != nil {
			return fmt.Errorf("report: header cell: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheet, cell, cell, header); err != nil {
			return fmt.Errorf("report: header style: %w", err)
		}
	}

	rowNum := 2
	for _, day := range schedule.Sorted() {
		for _, s := range day.Sessions {
			values := []interface{}{day.Date, s.Course, s.Topic, s.Hours, string(s.Type), sessionNote(s.Type)}
			for i, v := range values {
				cell, cErr := excelize.CoordinatesToCellName(i+1, rowNum)
				if cErr != nil {
					return fmt.Errorf("report: data cell: %w", cErr)
				}
				if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
					return fmt.Errorf("report: data cell: %w", err)
				}
			}
			rowNum++
		}
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 12); err != nil {
		return fmt.Errorf("report: column width: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "C", "C", 32); err != nil {
		return fmt.Errorf("report: column width: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "F", "F", 34); err != nil {
		return fmt.Errorf("report: column width: %w", err)
	}

	if len(issues) > 0 {
		if _, err := f.NewSheet("Issues"); err != nil {
			return fmt.Errorf("report: issues sheet: %w", err)
		}
		for i, issue := range orderIssues(issues) {
			cell, cErr := excelize.CoordinatesToCellName(1, i+1)
			if cErr != nil {
				return fmt.Errorf("report: issues cell: %w", cErr)
			}
			if err := f.SetCellValue("Issues", cell, issue.String()); err != nil {
				return fmt.Errorf("report: issues cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save xlsx: %w", err)
	}
	return nil
}

// Summary renders a short terminal-friendly digest of the run.
func Summary(schedule domain.Schedule, issues []steps.Issue) string {
	var b strings.Builder
	days := schedule.Sorted()
	fmt.Fprintf(&b, "%d study days, %d sessions, %s total hours", len(days), schedule.TotalSessions(), formatHours(schedule.TotalHours()))
	if errs := steps.Errors(issues); len(errs) > 0 {
		fmt.Fprintf(&b, " (%d unresolved errors, %d warnings)", len(errs), len(steps.Warnings(issues)))
	} else if warns := steps.Warnings(issues); len(warns) > 0 {
		fmt.Fprintf(&b, " (%d warnings)", len(warns))
	}
	return b.String()
}
