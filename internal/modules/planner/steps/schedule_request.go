package steps

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/studyplanner-backend/internal/domain"
)

type courseSpec struct {
	MidtermDate        string      `json:"midterm_date"`
	LastValidStudyDate string      `json:"last_valid_study_date"`
	MidtermWeight      int         `json:"midterm_weight"`
	TotalPages         int         `json:"total_pages"`
	Topics             []topicSpec `json:"topics"`
}

type topicSpec struct {
	Name  string `json:"name"`
	Pages int    `json:"pages"`
}

// scheduleRequest is the fully precomputed generation request: the closed
// date and topic sets the oracle is constrained to, plus the tier-adjusted
// rule text. Building it never touches the network.
type scheduleRequest struct {
	Today       string
	StartDate   string
	CourseCodes []string
	ValidDates  []string
	ValidTopics map[string][]string

	coursesSpecJSON string
	prioritiesJSON  string
	prefsJSON       string
	reviewRules     []string
	hoursRule       string
}

// validStudyDates returns every date from start (inclusive) to endExclusive,
// skipping dates whose weekday name is a rest day.
func validStudyDates(start, endExclusive time.Time, restDays map[string]bool) []string {
	var dates []string
	for cur := start; cur.Before(endExclusive); cur = cur.AddDate(0, 0, 1) {
		if restDays[strings.ToLower(cur.Weekday().String())] {
			continue
		}
		dates = append(dates, cur.Format(domain.DayLayout))
	}
	return dates
}

// topPriorityCourse picks the highest-scoring eligible course, breaking
// ties by course code for determinism.
func topPriorityCourse(codes []string, priorities domain.PriorityTable) string {
	best := ""
	bestScore := -1.0
	for _, code := range codes {
		score := defaultPriorityScore
		if entry, ok := priorities[code]; ok {
			score = entry.PriorityScore
		}
		if score > bestScore || (score == bestScore && (best == "" || code < best)) {
			best = code
			bestScore = score
		}
	}
	return best
}

// buildScheduleRequest precomputes the constraint sets and rule text for a
// generation (or repair) call. ok is false when no course has a midterm
// date, in which case the oracle must not be invoked at all.
func buildScheduleRequest(catalog domain.CourseCatalog, priorities domain.PriorityTable, cfg Config, now time.Time) (scheduleRequest, bool) {
	codes := catalog.EligibleCodes()
	if len(codes) == 0 {
		return scheduleRequest{}, false
	}

	specs := make(map[string]courseSpec, len(codes))
	validTopics := make(map[string][]string, len(codes))
	var latestExam time.Time
	for _, code := range codes {
		course := catalog.Courses[code]
		examDay, err := domain.ParseDay(course.MidtermDate)
		if err != nil {
			// Unparseable dates disqualify the course the same way a
			// missing date does.
			continue
		}
		if examDay.After(latestExam) {
			latestExam = examDay
		}
		topics := make([]topicSpec, 0, len(course.Topics))
		for _, t := range course.Topics {
			topics = append(topics, topicSpec{Name: t.Name, Pages: t.Pages})
		}
		specs[code] = courseSpec{
			MidtermDate:        course.MidtermDate,
			LastValidStudyDate: examDay.AddDate(0, 0, -1).Format(domain.DayLayout),
			MidtermWeight:      course.MidtermWeight,
			TotalPages:         course.TotalPages,
			Topics:             topics,
		}
		validTopics[code] = course.TopicNames()
	}
	if len(specs) == 0 {
		return scheduleRequest{}, false
	}
	codes = codes[:0]
	for code := range specs {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	start := now.AddDate(0, 0, 1)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	validDates := validStudyDates(start, latestExam, catalog.Preferences.RestDaySet())

	req := scheduleRequest{
		Today:       now.Format(domain.DayLayout),
		StartDate:   start.Format(domain.DayLayout),
		CourseCodes: codes,
		ValidDates:  validDates,
		ValidTopics: validTopics,
		reviewRules: reviewRules(catalog, codes, priorities, cfg),
		hoursRule:   hoursRule(catalog.Preferences),
	}

	specsJSON, _ := json.MarshalIndent(specs, "", "  ")
	req.coursesSpecJSON = string(specsJSON)
	prioritiesJSON, _ := json.MarshalIndent(priorities, "", "  ")
	req.prioritiesJSON = string(prioritiesJSON)
	prefsJSON, _ := json.Marshal(catalog.Preferences)
	req.prefsJSON = string(prefsJSON)
	return req, true
}

// reviewRules adapts the spaced-repetition requirements to problem size:
// a full expansion over many topics produces outputs too large to generate
// reliably, so larger catalogs trade review completeness for parseability.
func reviewRules(catalog domain.CourseCatalog, codes []string, priorities domain.PriorityTable, cfg Config) []string {
	totalTopics := catalog.TotalEligibleTopics()

	switch {
	case totalTopics > cfg.LargeTierTopics:
		top := topPriorityCourse(codes, priorities)
		return []string{
			fmt.Sprintf("Only topics of course %s (the highest priority course) need a \"review_1\" session, scheduled 3-5 days after the topic's \"learning\" session. Topics of other courses get NO review sessions.", top),
			"Do NOT schedule any \"review_2\" sessions for any course.",
		}
	case totalTopics > cfg.MediumTierTopics:
		return []string{
			fmt.Sprintf("Every topic with %d or more pages MUST appear at least once with type \"review_1\", scheduled 3-5 days after its \"learning\" session. Topics under %d pages MAY skip review_1.", cfg.Review1SkipUnderPages, cfg.Review1SkipUnderPages),
			"For each course, ONLY the single topic with the most pages gets a \"review_2\" session, scheduled closer to the exam. No other review_2 sessions.",
		}
	default:
		return []string{
			"Every topic MUST appear at least once with type \"review_1\", scheduled 3-5 days after its \"learning\" session.",
			fmt.Sprintf("High-page topics (>= %d pages) should also get a \"review_2\" session, scheduled closer to the exam.", cfg.Review2MinPages),
		}
	}
}

func hoursRule(prefs domain.UserPreferences) string {
	if prefs.MaxHoursPerDay != nil {
		return fmt.Sprintf("Total hours per day MUST NOT exceed %d.", *prefs.MaxHoursPerDay)
	}
	return "Aim for 4-6 total hours per day; this is guidance, not a hard cap."
}

const scheduleOutputFormat = `Return a JSON array. Each element is a day object. Only include days with sessions.

[
  {
    "date": "YYYY-MM-DD",
    "sessions": [
      {
        "course": "COURSE_CODE",
        "topic": "Exact Topic Name",
        "hours": 2.5,
        "type": "learning"
      }
    ]
  }
]`

// userPrompt renders the generation request. Repair context (violations +
// previous candidate) is strictly additive: the constraint sets and rules
// are identical to the initial generation.
func (r scheduleRequest) userPrompt(previous domain.Schedule, violations []string) string {
	var b strings.Builder

	if len(violations) > 0 {
		b.WriteString("## ERRORS TO FIX\n")
		for _, v := range violations {
			b.WriteString("- " + v + "\n")
		}
		prevJSON, _ := json.MarshalIndent(previous, "", "  ")
		b.WriteString("\n## PREVIOUS SCHEDULE (for reference - fix the errors, keep what was correct)\n")
		b.Write(prevJSON)
		b.WriteString("\n\n")
	}

	datesJSON, _ := json.Marshal(r.ValidDates)
	topicsJSON, _ := json.Marshal(r.ValidTopics)
	codesJSON, _ := json.Marshal(r.CourseCodes)

	lastDate := r.StartDate
	if len(r.ValidDates) > 0 {
		lastDate = r.ValidDates[len(r.ValidDates)-1]
	}

	fmt.Fprintf(&b, `## CONTEXT
today: %q
scheduling_window: %q to %q (inclusive)

## COURSES
%s

## PRIORITIES
%s

## USER PREFERENCES
%s

## VALID DATES (use ONLY these dates, no others)
%s

## VALID TOPIC NAMES (use ONLY these exact strings for each course)
%s

## STRICT RULES
`, r.Today, r.StartDate, lastDate, r.coursesSpecJSON, r.prioritiesJSON, r.prefsJSON, string(datesJSON), string(topicsJSON))

	rules := []string{
		"\"date\" values MUST come from the VALID DATES list above. No other dates allowed.",
		"\"course\" values MUST be one of: " + string(codesJSON),
		"\"topic\" values MUST exactly match one of the VALID TOPIC NAMES for that course. Do NOT invent new topic names like \"Comprehensive Review\" or \"Final Review\".",
		"\"type\" values MUST be exactly one of: \"learning\", \"review_1\", \"review_2\". No other values.",
		"\"hours\" must be a number > 0, with at most one decimal place.",
		r.hoursRule,
		"Every topic for every course MUST appear exactly once with type \"learning\".",
	}
	rules = append(rules, r.reviewRules...)
	rules = append(rules,
		"All sessions for a course MUST have a date STRICTLY BEFORE that course's midterm_date (i.e. on or before last_valid_study_date).",
		"The last study session for each course should be on or near last_valid_study_date (1-2 days before exam).",
		"Learning sessions: 2-4 hours based on topic page count. Review sessions: 0.5-1.5 hours.",
		"Spread topics across days. Avoid scheduling all topics for one course on the same day.",
		"Higher priority courses get more total study hours.",
	)
	for i, rule := range rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}

	b.WriteString("\n## OUTPUT FORMAT\n")
	b.WriteString(scheduleOutputFormat)
	if len(violations) > 0 {
		b.WriteString("\n\nGenerate the corrected schedule now.")
	} else {
		b.WriteString("\n\nGenerate the complete schedule now.")
	}
	return b.String()
}
