// Package ingestion builds a CourseCatalog from a directory of course
// PDFs (syllabi, midterm overviews, textbooks) plus a free-text
// preferences message. Structured facts come from regexes where the
// documents are regular; everything else goes through the oracle.
package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/studyplanner-backend/internal/domain"
	"github.com/yungbote/studyplanner-backend/internal/platform/logger"
)

var errNoSyllabi = errors.New("ingestion: no syllabi available for textbook matching")

// Oracle is the generative capability ingestion depends on; the production
// implementation is openai.Client.
type Oracle interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Ingestor struct {
	log *logger.Logger
	ai  Oracle
}

func New(log *logger.Logger, ai Oracle) *Ingestor {
	return &Ingestor{log: log.With("service", "ingestion"), ai: ai}
}

// Run ingests every course found under filesDir and parses the user's
// preference message into a complete catalog. Per-course parsing is
// best-effort: a course with an unreadable midterm overview stays in the
// catalog without a date and is simply ineligible for scheduling.
func (ing *Ingestor) Run(ctx context.Context, filesDir, userMessage string) (domain.CourseCatalog, error) {
	courseFiles, err := ing.classifyFiles(ctx, filesDir)
	if err != nil {
		return domain.CourseCatalog{}, fmt.Errorf("classify files: %w", err)
	}
	ing.log.Info("classified course documents", "courses", len(courseFiles))

	catalog := domain.CourseCatalog{Courses: map[string]domain.Course{}}
	for _, code := range sortedCodes(courseFiles) {
		course, cErr := ing.parseCourse(ctx, code, courseFiles[code])
		if cErr != nil {
			return domain.CourseCatalog{}, fmt.Errorf("parse course %s: %w", code, cErr)
		}
		catalog.Courses[code] = course
	}

	catalog.Preferences = ing.ParsePreferences(ctx, userMessage)
	ing.log.Info("ingestion complete",
		"courses", len(catalog.Courses),
		"eligible", len(catalog.EligibleCodes()),
		"topics", catalog.TotalEligibleTopics())
	return catalog, nil
}

func (ing *Ingestor) parseCourse(ctx context.Context, code string, files *courseFiles) (domain.Course, error) {
	log := ing.log.With("course", code)
	course := domain.Course{Name: code}

	var chaptersCovered []string
	if files.Midterm != "" {
		text, err := ExtractText(files.Midterm, 0)
		if err != nil {
			return course, fmt.Errorf("read midterm overview: %w", err)
		}
		course.MidtermDate = parseMidtermDate(text)
		chaptersCovered = parseMidtermChapters(text)
		log.Info("parsed midterm overview", "date", course.MidtermDate, "chapters", chaptersCovered)

		topics, tErr := ing.parseMidtermTopics(ctx, text)
		if tErr != nil {
			return course, tErr
		}
		course.Topics = topics
		log.Info("extracted topics", "count", len(topics))
	}

	if files.Syllabus != "" {
		text, err := ExtractText(files.Syllabus, 0)
		if err != nil {
			return course, fmt.Errorf("read syllabus: %w", err)
		}
		weight, wErr := ing.parseMidtermWeight(ctx, text)
		if wErr != nil {
			return course, wErr
		}
		course.MidtermWeight = weight
		log.Info("parsed syllabus", "midterm_weight", weight)
	}

	if files.Textbook != "" && len(chaptersCovered) > 0 {
		counts, err := ing.parseTextbookTOC(ctx, files.Textbook, chaptersCovered)
		if err != nil {
			return course, err
		}
		for i := range course.Topics {
			pages := 0
			for _, ch := range course.Topics[i].Chapters {
				pages += counts[ch]
			}
			course.Topics[i].Pages = pages
		}
		for _, n := range counts {
			course.TotalPages += n
		}
		log.Info("parsed textbook toc", "chapters", len(counts), "total_pages", course.TotalPages)
	} else if files.Textbook == "" {
		log.Warn("no textbook found")
	}

	return course, nil
}
