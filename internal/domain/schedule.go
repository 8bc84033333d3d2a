package domain

import "sort"

type SessionType string

const (
	SessionLearning SessionType = "learning"
	SessionReview1  SessionType = "review_1"
	SessionReview2  SessionType = "review_2"
)

func (t SessionType) Valid() bool {
	switch t {
	case SessionLearning, SessionReview1, SessionReview2:
		return true
	default:
		return false
	}
}

type Session struct {
	Course string      `json:"course"`
	Topic  string      `json:"topic"`
	Hours  float64     `json:"hours"`
	Type   SessionType `json:"type"`
}

type ScheduleDay struct {
	Date     string    `json:"date"`
	Sessions []Session `json:"sessions"`
}

func (d ScheduleDay) TotalHours() float64 {
	total := 0.0
	for _, s := range d.Sessions {
		total += s.Hours
	}
	return total
}

// Schedule is a candidate study plan: at most one day per date, unordered
// until render time.
type Schedule []ScheduleDay

func (s Schedule) Sorted() Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s Schedule) TotalSessions() int {
	n := 0
	for _, d := range s {
		n += len(d.Sessions)
	}
	return n
}

func (s Schedule) TotalHours() float64 {
	total := 0.0
	for _, d := range s {
		total += d.TotalHours()
	}
	return total
}

// CoursePriority is one ranked entry: a 0-10 score plus a short
// justification citing concrete numbers from the catalog.
type CoursePriority struct {
	PriorityScore float64 `json:"priority_score"`
	Reasoning     string  `json:"reasoning"`
}

// PriorityTable maps course code to priority. Only eligible courses appear.
type PriorityTable map[string]CoursePriority
