package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/studyplanner-backend/internal/domain"
	"github.com/yungbote/studyplanner-backend/internal/pkg/jsonx"
)

const scheduleSystemPrompt = `You are a study schedule generator. Produce a day-by-day study plan as a JSON array of day objects. Output ONLY valid JSON that matches the requested structure. No surrounding text, no markdown fences.`

const scheduleRepairPreamble = `Your PREVIOUS schedule had validation errors. Fix ALL of the errors listed below and produce a corrected day-by-day study plan. Keep everything that was already correct.`

var ErrUnparseableSchedule = errors.New("steps: schedule output unparseable after repair and retry")

// GenerateSchedule builds the constrained generation request and asks the
// oracle for an initial candidate. A catalog with no eligible courses
// yields an empty schedule without any oracle call.
func GenerateSchedule(ctx context.Context, deps Deps, catalog domain.CourseCatalog, priorities domain.PriorityTable) (domain.Schedule, error) {
	return synthesize(ctx, deps, catalog, priorities, nil, nil)
}

// RepairSchedule re-invokes the oracle with the previous candidate and the
// concrete violations to fix. The constraint sets and rules are the same
// as the initial generation; the feedback is purely additive context.
func RepairSchedule(ctx context.Context, deps Deps, catalog domain.CourseCatalog, priorities domain.PriorityTable, previous domain.Schedule, violations []string) (domain.Schedule, error) {
	if len(violations) == 0 {
		return nil, fmt.Errorf("steps: repair requires at least one violation")
	}
	return synthesize(ctx, deps, catalog, priorities, previous, violations)
}

func synthesize(ctx context.Context, deps Deps, catalog domain.CourseCatalog, priorities domain.PriorityTable, previous domain.Schedule, violations []string) (domain.Schedule, error) {
	log := deps.Log.With("step", "generate_schedule")

	req, ok := buildScheduleRequest(catalog, priorities, deps.Cfg, time.Now())
	if !ok {
		log.Warn("No courses with midterm dates; returning empty schedule")
		return domain.Schedule{}, nil
	}

	system := scheduleSystemPrompt
	if len(violations) > 0 {
		system = scheduleSystemPrompt + "\n\n" + scheduleRepairPreamble
		log.Info("Repairing schedule", "violations", len(violations))
	}
	user := req.userPrompt(previous, violations)

	started := time.Now()
	raw, err := deps.AI.GenerateText(ctx, system, user)
	if err != nil {
		if deps.Runs != nil {
			deps.Runs.Add("schedule", "failed", started, []string{"generate_failed: " + err.Error()})
		}
		return nil, fmt.Errorf("schedule generation: %w", err)
	}

	schedule, parseErr := parseScheduleOutput(raw)
	if parseErr == nil {
		if deps.Runs != nil {
			deps.Runs.Add("schedule", "succeeded", started, nil)
		}
		logScheduleStats(deps, schedule)
		return schedule, nil
	}

	// Structural repair failed; the usual cause is output truncation. Ask
	// once (bounded) for a shorter response, trading completeness for
	// parseability.
	for retry := 1; retry <= deps.Cfg.ParseRetryBudget; retry++ {
		log.Warn("Schedule output unparseable; re-prompting for brevity",
			"retry", retry,
			"error", parseErr.Error(),
		)
		brevity := user + "\n\nIMPORTANT: your previous response could not be parsed (it was likely truncated). Respond with the SAME JSON structure but keep it SHORT: no indentation, no extra whitespace, fewer sessions per day if needed."
		raw, err = deps.AI.GenerateText(ctx, system, brevity)
		if err != nil {
			if deps.Runs != nil {
				deps.Runs.Add("schedule", "failed", started, []string{"generate_failed: " + err.Error()})
			}
			return nil, fmt.Errorf("schedule generation retry: %w", err)
		}
		schedule, parseErr = parseScheduleOutput(raw)
		if parseErr == nil {
			if deps.Runs != nil {
				deps.Runs.Add("schedule", "succeeded", started, nil)
			}
			logScheduleStats(deps, schedule)
			return schedule, nil
		}
	}

	if deps.Runs != nil {
		deps.Runs.Add("schedule", "failed", started, []string{"unparseable_output"})
	}
	return nil, fmt.Errorf("%w: %v", ErrUnparseableSchedule, parseErr)
}

// parseScheduleOutput decodes the oracle's day-array, repairing truncated
// JSON when possible, and normalizes to at most one day per date.
func parseScheduleOutput(raw string) (domain.Schedule, error) {
	var days []domain.ScheduleDay
	if _, err := jsonx.DecodeWithRepair(raw, &days); err != nil {
		return nil, err
	}
	return normalizeSchedule(days), nil
}

// normalizeSchedule merges duplicate dates, discards sessions with an
// unknown type, and drops empty days so the candidate holds the
// at-most-one-day-per-date invariant by construction. A learning session
// lost to a bad type resurfaces as a coverage error in validation.
func normalizeSchedule(days []domain.ScheduleDay) domain.Schedule {
	byDate := map[string]int{}
	out := make(domain.Schedule, 0, len(days))
	for _, day := range days {
		date := strings.TrimSpace(day.Date)
		if date == "" {
			continue
		}
		sessions := make([]domain.Session, 0, len(day.Sessions))
		for _, s := range day.Sessions {
			if !s.Type.Valid() {
				continue
			}
			sessions = append(sessions, s)
		}
		if len(sessions) == 0 {
			continue
		}
		if idx, ok := byDate[date]; ok {
			out[idx].Sessions = append(out[idx].Sessions, sessions...)
			continue
		}
		byDate[date] = len(out)
		out = append(out, domain.ScheduleDay{Date: date, Sessions: sessions})
	}
	return out
}

func logScheduleStats(deps Deps, schedule domain.Schedule) {
	deps.Log.Info("Generated schedule",
		"study_days", len(schedule),
		"sessions", schedule.TotalSessions(),
		"total_hours", fmt.Sprintf("%.1f", schedule.TotalHours()),
	)
}
