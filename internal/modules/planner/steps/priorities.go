package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/studyplanner-backend/internal/domain"
)

const (
	defaultPriorityScore     = 5.0
	defaultPriorityReasoning = "Default priority (ranking unavailable for this course)"
)

type courseSummary struct {
	MidtermDate   string `json:"midterm_date"`
	MidtermWeight int    `json:"midterm_weight"`
	TotalPages    int    `json:"total_pages"`
	NumTopics     int    `json:"num_topics"`
}

// DeterminePriorities ranks eligible courses 0-10 by exam proximity, then
// content volume, then grade weight. Ranking is an optimization hint:
// any oracle failure degrades to a default score instead of blocking the
// pipeline, so this never returns an error.
func DeterminePriorities(ctx context.Context, deps Deps, catalog domain.CourseCatalog) domain.PriorityTable {
	log := deps.Log.With("step", "determine_priorities")

	codes := catalog.EligibleCodes()
	table := make(domain.PriorityTable, len(codes))
	if len(codes) == 0 {
		return table
	}

	summaries := make(map[string]courseSummary, len(codes))
	for _, code := range codes {
		course := catalog.Courses[code]
		summaries[code] = courseSummary{
			MidtermDate:   course.MidtermDate,
			MidtermWeight: course.MidtermWeight,
			TotalPages:    course.TotalPages,
			NumTopics:     len(course.Topics),
		}
	}

	system := `You are a study planner. Rank courses by study priority.

RANKING FACTORS, in strict precedence order (apply factor 1 before even
considering factor 2, and so on; this is a tie-break chain, not a
weighted sum):
1. exam_date_proximity - fewer days until the exam = higher priority
2. content_volume - more total_pages = needs more time
3. midterm_weight - higher percentage of the grade = higher stakes

Each reasoning sentence must cite at least one concrete number from the
input (days until exam, pages, or weight).`

	summariesJSON, _ := json.Marshal(summaries)
	user := fmt.Sprintf(`today: %q
courses: %s

Score every course code listed above, each 0.0-10.0 with one sentence of
reasoning.`, time.Now().Format(domain.DayLayout), string(summariesJSON))

	started := time.Now()
	obj, err := deps.AI.GenerateJSON(ctx, system, user, "course_priorities_v1", prioritySchema(codes))
	if err != nil {
		log.Warn("Priority ranking failed; using default scores", "error", err.Error())
		if deps.Runs != nil {
			deps.Runs.Add("priorities", "degraded", started, []string{"generate_failed: " + err.Error()})
		}
		fillDefaultPriorities(table, codes)
		return table
	}

	parsed := parsePriorityTable(obj, codes)
	missing := 0
	for _, code := range codes {
		entry, ok := parsed[code]
		if !ok {
			missing++
			table[code] = domain.CoursePriority{
				PriorityScore: defaultPriorityScore,
				Reasoning:     defaultPriorityReasoning,
			}
			continue
		}
		table[code] = entry
	}

	status := "succeeded"
	if missing > 0 {
		status = "degraded"
		log.Warn("Priority ranking incomplete; defaulted missing courses", "missing", missing)
	}
	if deps.Runs != nil {
		deps.Runs.Add("priorities", status, started, nil)
	}

	for _, code := range codes {
		log.Info("Course priority",
			"course", code,
			"score", table[code].PriorityScore,
			"reasoning", table[code].Reasoning,
		)
	}
	return table
}

func prioritySchema(codes []string) map[string]any {
	perCourse := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"priority_score": map[string]any{"type": "number", "minimum": 0, "maximum": 10},
			"reasoning":      map[string]any{"type": "string"},
		},
		"required":             []string{"priority_score", "reasoning"},
		"additionalProperties": false,
	}
	props := make(map[string]any, len(codes))
	for _, code := range codes {
		props[code] = perCourse
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"course_priorities": map[string]any{
				"type":                 "object",
				"properties":           props,
				"required":             codes,
				"additionalProperties": false,
			},
		},
		"required":             []string{"course_priorities"},
		"additionalProperties": false,
	}
}

// parsePriorityTable extracts well-formed entries for known course codes,
// dropping everything else. Scores outside [0,10] are clamped.
func parsePriorityTable(obj map[string]any, codes []string) domain.PriorityTable {
	out := domain.PriorityTable{}
	inner, ok := obj["course_priorities"].(map[string]any)
	if !ok {
		return out
	}
	known := make(map[string]bool, len(codes))
	for _, c := range codes {
		known[c] = true
	}
	for code, v := range inner {
		if !known[code] {
			continue
		}
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		score, ok := entry["priority_score"].(float64)
		if !ok {
			continue
		}
		if score < 0 {
			score = 0
		}
		if score > 10 {
			score = 10
		}
		reasoning, _ := entry["reasoning"].(string)
		reasoning = strings.TrimSpace(reasoning)
		if reasoning == "" {
			reasoning = defaultPriorityReasoning
		}
		out[code] = domain.CoursePriority{PriorityScore: score, Reasoning: reasoning}
	}
	return out
}

func fillDefaultPriorities(table domain.PriorityTable, codes []string) {
	for _, code := range codes {
		table[code] = domain.CoursePriority{
			PriorityScore: defaultPriorityScore,
			Reasoning:     defaultPriorityReasoning,
		}
	}
}
