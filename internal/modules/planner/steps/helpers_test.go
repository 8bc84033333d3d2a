package steps

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yungbote/studyplanner-backend/internal/domain"
	"github.com/yungbote/studyplanner-backend/internal/platform/logger"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// fakeOracle replays scripted responses, recording every prompt it saw.
type fakeOracle struct {
	jsonOut  []map[string]any
	jsonErr  []error
	textOut  []string
	textErr  []error
	jsonCall int
	textCall int

	jsonPrompts []string
	textPrompts []string
}

func (f *fakeOracle) GenerateJSON(_ context.Context, _ string, user string, _ string, _ map[string]any) (map[string]any, error) {
	f.jsonPrompts = append(f.jsonPrompts, user)
	i := f.jsonCall
	f.jsonCall++
	if i < len(f.jsonErr) && f.jsonErr[i] != nil {
		return nil, f.jsonErr[i]
	}
	if i < len(f.jsonOut) {
		return f.jsonOut[i], nil
	}
	return nil, fmt.Errorf("unexpected GenerateJSON call %d", i+1)
}

func (f *fakeOracle) GenerateText(_ context.Context, _ string, user string) (string, error) {
	f.textPrompts = append(f.textPrompts, user)
	i := f.textCall
	f.textCall++
	if i < len(f.textErr) && f.textErr[i] != nil {
		return "", f.textErr[i]
	}
	if i < len(f.textOut) {
		return f.textOut[i], nil
	}
	return "", fmt.Errorf("unexpected GenerateText call %d", i+1)
}

func testDeps(ai Oracle) Deps {
	return Deps{Log: testLogger(), AI: ai, Cfg: DefaultConfig(), Runs: NewRunLog()}
}

func intPtr(n int) *int { return &n }

// twoCourseCatalog builds the canonical fixture: two courses with exams a
// few weeks out, a handful of topics each.
func twoCourseCatalog(now time.Time) domain.CourseCatalog {
	exam1 := now.AddDate(0, 0, 14).Format(domain.DayLayout)
	exam2 := now.AddDate(0, 0, 21).Format(domain.DayLayout)
	return domain.CourseCatalog{
		Courses: map[string]domain.Course{
			"PHYS 234": {
				Name:          "PHYS 234",
				MidtermDate:   exam1,
				MidtermWeight: 40,
				TotalPages:    120,
				Topics: []domain.Topic{
					{Name: "Quantum State Vectors", Chapters: []string{"1"}, Pages: 45},
					{Name: "Operators and Measurement", Chapters: []string{"2"}, Pages: 40},
					{Name: "Time Evolution", Chapters: []string{"3"}, Pages: 35},
				},
			},
			"HLTH 204": {
				Name:          "HLTH 204",
				MidtermDate:   exam2,
				MidtermWeight: 25,
				TotalPages:    60,
				Topics: []domain.Topic{
					{Name: "Determinants of Health", Chapters: []string{"1"}, Pages: 30},
					{Name: "Health Systems", Chapters: []string{"2"}, Pages: 30},
				},
			},
		},
		Preferences: domain.UserPreferences{
			MaxHoursPerDay:      intPtr(6),
			PreferredStudyTimes: []string{"morning", "afternoon"},
			RestDays:            []string{"Sunday"},
			StudyStyle:          domain.StyleSpacedRepetition,
		},
	}
}
