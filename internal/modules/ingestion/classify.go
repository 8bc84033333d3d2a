package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

type fileKind string

const (
	kindSyllabus fileKind = "syllabus"
	kindMidterm  fileKind = "midterm"
	kindTextbook fileKind = "textbook"
)

// courseFiles groups the documents discovered for one course.
type courseFiles struct {
	Syllabus string
	Midterm  string
	Textbook string
}

var courseCodeRe = regexp.MustCompile(`^([A-Z]{2,5}\s*\d{2,4})`)

// classifyFiles groups the PDFs in dir by course code and document kind.
// Files whose names start with a course code are classified by name;
// directories of generically named uploads fall back to content-based
// classification through the oracle.
func (ing *Ingestor) classifyFiles(ctx context.Context, dir string) (map[string]*courseFiles, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		pdfs = append(pdfs, filepath.Join(dir, e.Name()))
	}
	sort.Strings(pdfs)

	allGeneric := true
	for _, p := range pdfs {
		name := filepath.Base(p)
		if !strings.HasPrefix(name, "uploaded_") && courseCodeRe.MatchString(name) {
			allGeneric = false
			break
		}
	}
	if allGeneric && len(pdfs) > 0 {
		return ing.classifyByContent(ctx, pdfs)
	}
	return ing.classifyByName(pdfs), nil
}

func (ing *Ingestor) classifyByName(pdfs []string) map[string]*courseFiles {
	courses := map[string]*courseFiles{}
	var unmatched []string

	for _, path := range pdfs {
		name := filepath.Base(path)
		m := courseCodeRe.FindStringSubmatch(name)
		if m == nil {
			unmatched = append(unmatched, path)
			continue
		}
		code := strings.TrimSpace(m[1])
		cf := courses[code]
		if cf == nil {
			cf = &courseFiles{}
			courses[code] = cf
		}
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "syllabus"):
			cf.Syllabus = path
		case strings.Contains(lower, "midterm"), strings.Contains(lower, "overview"):
			cf.Midterm = path
		default:
			cf.Textbook = path
		}
	}

	// Codeless PDFs are textbooks. Score every (course, candidate) pair
	// against the syllabus text and assign greedily by best score so a
	// close second match cannot steal another course's book.
	ing.assignTextbooks(courses, unmatched)
	return courses
}

type matchScore struct {
	score  int
	course string
	path   string
}

func (ing *Ingestor) assignTextbooks(courses map[string]*courseFiles, unmatched []string) {
	if len(unmatched) == 0 {
		return
	}
	var scores []matchScore
	for code, cf := range courses {
		if cf.Textbook != "" || cf.Syllabus == "" {
			continue
		}
		syllabusText, err := ExtractText(cf.Syllabus, 0)
		if err != nil {
			ing.log.Warn("syllabus unreadable for textbook matching", "course", code, "error", err)
			continue
		}
		for _, candidate := range unmatched {
			if s := scoreTextbookMatch(syllabusText, candidate); s > 0 {
				scores = append(scores, matchScore{score: s, course: code, path: candidate})
			}
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		if scores[i].course != scores[j].course {
			return scores[i].course < scores[j].course
		}
		return scores[i].path < scores[j].path
	})

	takenCourse := map[string]bool{}
	takenBook := map[string]bool{}
	for _, s := range scores {
		if takenCourse[s.course] || takenBook[s.path] {
			continue
		}
		courses[s.course].Textbook = s.path
		takenCourse[s.course] = true
		takenBook[s.path] = true
		ing.log.Info("matched textbook", "course", s.course, "file", filepath.Base(s.path), "score", s.score)
	}
}

var nameSplitRe = regexp.MustCompile(`[\s_\-,]+`)

var commonBookWords = map[string]bool{
	"edition": true,
	"higher":  true,
	"press":   true,
	"pages":   true,
	"chapter": true,
}

// scoreTextbookMatch counts distinctive filename words that appear in the
// syllabus text.
func scoreTextbookMatch(syllabusText, candidate string) int {
	lower := strings.ToLower(syllabusText)
	stem := strings.TrimSuffix(filepath.Base(candidate), filepath.Ext(candidate))
	score := 0
	for _, part := range nameSplitRe.Split(strings.ToLower(stem), -1) {
		if len(part) > 4 && !commonBookWords[part] && strings.Contains(lower, part) {
			score++
		}
	}
	return score
}

const classifySystemPrompt = `You classify university course documents. Answer with the requested JSON only.`

func classifySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"course_code": map[string]any{"type": []string{"string", "null"}},
			"file_type":   map[string]any{"type": "string", "enum": []string{"syllabus", "midterm", "textbook"}},
		},
		"required":             []string{"course_code", "file_type"},
		"additionalProperties": false,
	}
}

func (ing *Ingestor) classifyByContent(ctx context.Context, pdfs []string) (map[string]*courseFiles, error) {
	courses := map[string]*courseFiles{}
	var textbooks []string

	for _, path := range pdfs {
		name := filepath.Base(path)
		text, err := ExtractText(path, 3)
		if err != nil || len(text) < 100 {
			ing.log.Warn("could not read document for classification", "file", name, "error", err)
			continue
		}

		user := "Identify the course code (e.g. \"PHYS 234\") and the document type for this excerpt.\n" +
			"file_type is one of \"syllabus\", \"midterm\" (midterm overview or study guide), or \"textbook\".\n" +
			"If this is a textbook, set course_code to null; it is matched to a course later.\n\n" +
			"Document excerpt:\n" + truncate(text, 4000)

		out, err := ing.ai.GenerateJSON(ctx, classifySystemPrompt, user, "document_classification", classifySchema())
		if err != nil {
			ing.log.Warn("content classification failed", "file", name, "error", err)
			continue
		}

		code, _ := out["course_code"].(string)
		code = strings.TrimSpace(code)
		kind, _ := out["file_type"].(string)

		if fileKind(kind) == kindTextbook || code == "" {
			textbooks = append(textbooks, path)
			continue
		}
		cf := courses[code]
		if cf == nil {
			cf = &courseFiles{}
			courses[code] = cf
		}
		switch fileKind(kind) {
		case kindSyllabus:
			cf.Syllabus = path
		case kindMidterm:
			cf.Midterm = path
		}
		ing.log.Info("classified document", "file", name, "course", code, "kind", kind)
	}

	for _, tb := range textbooks {
		code, err := ing.matchTextbook(ctx, tb, courses)
		if err != nil {
			ing.log.Warn("textbook matching failed", "file", filepath.Base(tb), "error", err)
			continue
		}
		if cf, ok := courses[code]; ok && cf.Textbook == "" {
			cf.Textbook = tb
			ing.log.Info("matched textbook", "course", code, "file", filepath.Base(tb))
		}
	}
	return courses, nil
}

// matchTextbook asks the oracle which course a content-classified textbook
// belongs to, given syllabus excerpts.
func (ing *Ingestor) matchTextbook(ctx context.Context, textbook string, courses map[string]*courseFiles) (string, error) {
	bookText, err := ExtractText(textbook, 5)
	if err != nil {
		return "", err
	}

	codes := make([]string, 0, len(courses))
	var b strings.Builder
	b.WriteString("Match this textbook to the correct course.\n\nTEXTBOOK (first pages):\n")
	b.WriteString(truncate(bookText, 2000))
	b.WriteString("\n\nCOURSES AND THEIR SYLLABI:\n")
	for _, code := range sortedCodes(courses) {
		cf := courses[code]
		if cf.Syllabus == "" {
			continue
		}
		syl, sErr := ExtractText(cf.Syllabus, 2)
		if sErr != nil {
			continue
		}
		codes = append(codes, code)
		b.WriteString("\n--- " + code + " ---\n" + truncate(syl, 800) + "\n")
	}
	if len(codes) == 0 {
		return "", errNoSyllabi
	}
	b.WriteString("\nWhich course code does this textbook belong to? Choose from: " + strings.Join(codes, ", "))

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"course_code": map[string]any{"type": "string", "enum": codes},
		},
		"required":             []string{"course_code"},
		"additionalProperties": false,
	}
	out, err := ing.ai.GenerateJSON(ctx, classifySystemPrompt, b.String(), "textbook_match", schema)
	if err != nil {
		return "", err
	}
	code, _ := out["course_code"].(string)
	return code, nil
}

func sortedCodes(m map[string]*courseFiles) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
