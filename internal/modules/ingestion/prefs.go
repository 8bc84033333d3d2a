package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/studyplanner-backend/internal/domain"
)

const prefsSystemPrompt = `You convert a student's free-text study preferences into structured parameters. Answer with the requested JSON only.`

func prefsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"max_hours_per_day": map[string]any{"type": []string{"integer", "null"}},
			"preferred_study_times": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": []string{"morning", "afternoon", "evening"}},
			},
			"rest_days": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"study_style": map[string]any{
				"type": "string",
				"enum": []string{"intensive", "spaced_repetition", "balanced"},
			},
		},
		"required":             []string{"max_hours_per_day", "preferred_study_times", "rest_days", "study_style"},
		"additionalProperties": false,
	}
}

// ParsePreferences turns a free-text message into UserPreferences. An
// empty message or an oracle failure yields the defaults; the planner can
// always run without stated preferences.
func (ing *Ingestor) ParsePreferences(ctx context.Context, userMessage string) domain.UserPreferences {
	prefs := domain.DefaultPreferences()
	if strings.TrimSpace(userMessage) == "" {
		return prefs
	}

	user := fmt.Sprintf(`Convert this student's study preferences into structured parameters.

Extract the following (null or defaults when not mentioned):
- max_hours_per_day: integer hours the student can study per day, or null when no cap is stated
- preferred_study_times: subset of ["morning", "afternoon", "evening"] (default ["morning", "afternoon"])
- rest_days: day names like ["Sunday"] (default [])
- study_style: one of "intensive", "spaced_repetition", "balanced" (default "spaced_repetition")

Student message:
%q`, userMessage)

	out, err := ing.ai.GenerateJSON(ctx, prefsSystemPrompt, user, "user_preferences", prefsSchema())
	if err != nil {
		ing.log.Warn("preference parsing failed, using defaults", "error", err)
		return prefs
	}

	if h, ok := asInt(out["max_hours_per_day"]); ok && h > 0 {
		prefs.MaxHoursPerDay = &h
	}
	if times := asStrings(out["preferred_study_times"]); len(times) > 0 {
		prefs.PreferredStudyTimes = times
	}
	prefs.RestDays = asStrings(out["rest_days"])
	if style, _ := out["study_style"].(string); style != "" {
		prefs.StudyStyle = domain.StudyStyle(style)
	}
	return prefs
}

func asStrings(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, sok := item.(string); sok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
