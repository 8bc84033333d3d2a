package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yungbote/studyplanner-backend/internal/domain"
	"github.com/yungbote/studyplanner-backend/internal/pkg/jsonx"
)

var (
	midtermDateRe     = regexp.MustCompile(`Date:\s*(.+)`)
	midtermChaptersRe = regexp.MustCompile(`(?i)Coverage:\s*Chapters?\s*(.+)`)
	numberRe          = regexp.MustCompile(`\d+`)
)

// dateLayouts are the formats midterm overviews use for "Date:" lines.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
}

// parseMidtermDate extracts the exam date from overview text, normalized
// to YYYY-MM-DD. Empty string when no recognizable date appears.
func parseMidtermDate(text string) string {
	m := midtermDateRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	raw := strings.TrimSpace(m[1])
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(domain.DayLayout)
		}
	}
	return ""
}

// parseMidtermChapters extracts chapter numbers from the "Coverage:
// Chapters ..." line. Handles both "1, 2, 3" and "1, 2, and 3" forms.
func parseMidtermChapters(text string) []string {
	m := midtermChaptersRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return numberRe.FindAllString(strings.TrimSpace(m[1]), -1)
}

const topicsSystemPrompt = `You extract structured study topics from midterm overview documents. Respond with JSON only, no prose and no code fences.`

type rawTopic struct {
	Name     string   `json:"name"`
	Chapters []string `json:"chapters"`
}

// parseMidtermTopics asks the oracle for the topic list. A topic spanning
// several chapters ("Chapters 2 & 3: The Modelling Process") stays one
// entry with multiple chapter numbers.
func (ing *Ingestor) parseMidtermTopics(ctx context.Context, text string) ([]domain.Topic, error) {
	user := `Extract all study topics from this midterm overview document.

For each chapter mentioned, create a topic entry with:
- "name": the chapter title or topic name
- "chapters": a list of chapter numbers as strings (e.g. ["1"])

Return ONLY a JSON array of objects. Example:
[
  {"name": "Operators and Measurement", "chapters": ["2"]}
]

If a single topic spans multiple chapters, combine them into one topic with
multiple chapter numbers.

Document:
` + text

	raw, err := ing.ai.GenerateText(ctx, topicsSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("extract topics: %w", err)
	}
	var parsed []rawTopic
	if err := jsonx.Decode(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	topics := make([]domain.Topic, 0, len(parsed))
	for _, t := range parsed {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		// Pages are filled in after the textbook TOC is parsed.
		topics = append(topics, domain.Topic{Name: name, Chapters: t.Chapters})
	}
	return topics, nil
}

const weightSystemPrompt = `You read course syllabi and report grading weights. Answer with the requested JSON only.`

// parseMidtermWeight extracts the first midterm's grade percentage from
// syllabus text. Zero when the syllabus does not state one.
func (ing *Ingestor) parseMidtermWeight(ctx context.Context, text string) (int, error) {
	user := `From this course syllabus, find the weight/percentage of Midterm
Examination #1 (the first midterm only, not midterm #2 or the final exam).
If the syllabus says "midterm #1 15%", the weight is 15.

Syllabus text:
` + truncate(text, 8000)

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"weight": map[string]any{"type": "integer"},
		},
		"required":             []string{"weight"},
		"additionalProperties": false,
	}
	out, err := ing.ai.GenerateJSON(ctx, weightSystemPrompt, user, "midterm_weight", schema)
	if err != nil {
		return 0, fmt.Errorf("extract midterm weight: %w", err)
	}
	w, ok := asInt(out["weight"])
	if !ok || w < 0 || w > 100 {
		return 0, nil
	}
	return w, nil
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	default:
		return 0, false
	}
}
