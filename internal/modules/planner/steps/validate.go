package steps

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/studyplanner-backend/internal/domain"
)

type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Issue is one classified validation finding with enough context (course,
// topic, date) for the repair prompt or a human to act on.
type Issue struct {
	Severity Severity
	Message  string
	Course   string
	Topic    string
	Date     string
}

// String renders the tagged form ("ERROR: ..." / "WARNING: ...") that the
// repair prompt and the report header both consume.
func (i Issue) String() string {
	return string(i.Severity) + ": " + i.Message
}

func IssueStrings(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.String())
	}
	return out
}

func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

func Warnings(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// ValidateSchedule runs all four rule families over the candidate. It is a
// pure function: same inputs, same issue list. All families are evaluated
// every time; nothing short-circuits.
func ValidateSchedule(catalog domain.CourseCatalog, schedule domain.Schedule, cfg Config) []Issue {
	var issues []Issue
	issues = append(issues, checkDailyHours(schedule, catalog.Preferences, cfg)...)
	issues = append(issues, checkTopicCoverage(schedule, catalog)...)
	issues = append(issues, checkStudyBeforeExam(schedule, catalog, cfg)...)
	issues = append(issues, checkSpacedRepetition(schedule, catalog, cfg)...)
	return issues
}

// checkDailyHours enforces the hard system-wide ceiling and the user's
// softer per-day preference.
func checkDailyHours(schedule domain.Schedule, prefs domain.UserPreferences, cfg Config) []Issue {
	var issues []Issue
	for _, day := range schedule.Sorted() {
		total := day.TotalHours()
		if total > cfg.HardDailyHourCap {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Day %s has %s hours (exceeds %g hour maximum)", day.Date, formatHours(total), cfg.HardDailyHourCap),
				Date:     day.Date,
			})
			continue
		}
		if prefs.MaxHoursPerDay != nil && total > float64(*prefs.MaxHoursPerDay) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Day %s has %s hours (exceeds user preference of %d hours)", day.Date, formatHours(total), *prefs.MaxHoursPerDay),
				Date:     day.Date,
			})
		}
	}
	return issues
}

// checkTopicCoverage requires one learning session per topic of every
// eligible course.
func checkTopicCoverage(schedule domain.Schedule, catalog domain.CourseCatalog) []Issue {
	scheduled := map[string]map[string]bool{}
	for _, day := range schedule {
		for _, s := range day.Sessions {
			if s.Type != domain.SessionLearning {
				continue
			}
			if scheduled[s.Course] == nil {
				scheduled[s.Course] = map[string]bool{}
			}
			scheduled[s.Course][s.Topic] = true
		}
	}

	var issues []Issue
	for _, code := range catalog.EligibleCodes() {
		course := catalog.Courses[code]
		var missing []string
		for _, t := range course.Topics {
			if !scheduled[code][t.Name] {
				missing = append(missing, t.Name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Course %s missing learning sessions for topics: %s", code, strings.Join(missing, ", ")),
				Course:   code,
			})
		}
	}
	return issues
}

// checkStudyBeforeExam flags sessions scheduled on/after the exam and
// schedules that finish too long before it.
func checkStudyBeforeExam(schedule domain.Schedule, catalog domain.CourseCatalog, cfg Config) []Issue {
	courseDates := map[string][]string{}
	for _, day := range schedule {
		for _, s := range day.Sessions {
			courseDates[s.Course] = append(courseDates[s.Course], day.Date)
		}
	}

	var issues []Issue
	for _, code := range catalog.EligibleCodes() {
		course := catalog.Courses[code]
		examDay, err := domain.ParseDay(course.MidtermDate)
		if err != nil {
			continue
		}

		dates := courseDates[code]
		if len(dates) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Course %s has no scheduled sessions", code),
				Course:   code,
			})
			continue
		}

		var offending []string
		var lastBefore time.Time
		for _, d := range dates {
			day, dErr := domain.ParseDay(d)
			if dErr != nil {
				offending = append(offending, d)
				continue
			}
			if !day.Before(examDay) {
				offending = append(offending, d)
				continue
			}
			if day.After(lastBefore) {
				lastBefore = day
			}
		}
		if len(offending) > 0 {
			offending = dedupeSorted(offending)
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Course %s has study sessions on/after exam date (%s): %s", code, course.MidtermDate, strings.Join(offending, ", ")),
				Course:   code,
			})
		}
		if !lastBefore.IsZero() {
			gap := int(examDay.Sub(lastBefore).Hours() / 24)
			if gap > cfg.LastSessionMaxGapDays {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Last study session for %s is %d days before exam", code, gap),
					Course:   code,
					Date:     lastBefore.Format(domain.DayLayout),
				})
			}
		}
	}
	return issues
}

// checkSpacedRepetition verifies each topic has a learning session and an
// acceptably spaced first review. The band here (2-7 days) is deliberately
// wider than the 3-5 day target the generation prompt asks for.
func checkSpacedRepetition(schedule domain.Schedule, catalog domain.CourseCatalog, cfg Config) []Issue {
	type dated struct {
		date string
		typ  domain.SessionType
	}
	topicSessions := map[string]map[string][]dated{}
	for _, day := range schedule.Sorted() {
		for _, s := range day.Sessions {
			if topicSessions[s.Course] == nil {
				topicSessions[s.Course] = map[string][]dated{}
			}
			topicSessions[s.Course][s.Topic] = append(topicSessions[s.Course][s.Topic], dated{date: day.Date, typ: s.Type})
		}
	}

	var issues []Issue
	for _, code := range catalog.EligibleCodes() {
		course := catalog.Courses[code]
		for _, topic := range course.Topics {
			sessions := topicSessions[code][topic.Name]

			var learning, reviews []dated
			for _, s := range sessions {
				switch s.typ {
				case domain.SessionLearning:
					learning = append(learning, s)
				case domain.SessionReview1, domain.SessionReview2:
					reviews = append(reviews, s)
				}
			}

			if len(learning) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Message:  fmt.Sprintf("Topic %q (%s) has no learning session", topic.Name, code),
					Course:   code,
					Topic:    topic.Name,
				})
				continue
			}
			if len(reviews) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Topic %q (%s) has no review sessions (no spaced repetition)", topic.Name, code),
					Course:   code,
					Topic:    topic.Name,
				})
				continue
			}

			learnDay, lErr := domain.ParseDay(learning[0].date)
			reviewDay, rErr := domain.ParseDay(reviews[0].date)
			if lErr != nil || rErr != nil {
				continue
			}
			gap := int(reviewDay.Sub(learnDay).Hours() / 24)
			if gap < cfg.MinReviewGapDays {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Review too soon for %q (%s): %d day(s) after learning, expected >= %d", topic.Name, code, gap, cfg.MinReviewGapDays),
					Course:   code,
					Topic:    topic.Name,
					Date:     reviews[0].date,
				})
			} else if gap > cfg.MaxReviewGapDays {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Review too late for %q (%s): %d days after learning, expected <= %d", topic.Name, code, gap, cfg.MaxReviewGapDays),
					Course:   code,
					Topic:    topic.Name,
					Date:     reviews[0].date,
				})
			}
		}
	}
	return issues
}

// formatHours renders session-hour totals without trailing zeros (one
// decimal place at most, matching the generation contract).
func formatHours(h float64) string {
	s := fmt.Sprintf("%.2f", h)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

func dedupeSorted(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
