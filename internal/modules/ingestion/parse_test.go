package ingestion

import (
	"testing"

	"go.uber.org/zap"

	"github.com/yungbote/studyplanner-backend/internal/platform/logger"
)

func testIngestor() *Ingestor {
	return &Ingestor{log: &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}}
}

func TestParseMidtermDate(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"long month", "Midterm Overview\nDate: October 15, 2026\nCoverage: Chapters 1-3", "2026-10-15"},
		{"short month", "Date: Oct 7, 2026", "2026-10-07"},
		{"iso", "Date: 2026-10-15", "2026-10-15"},
		{"slashes", "Date: 10/15/2026", "2026-10-15"},
		{"no padding", "Date: March 3, 2026", "2026-03-03"},
		{"no date line", "The midterm covers chapters 1 through 3.", ""},
		{"unparseable", "Date: sometime in October", ""},
	}
	for _, tc := range cases {
		if got := parseMidtermDate(tc.text); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseMidtermChapters(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"comma list", "Coverage: Chapters 1, 2, 3, 4", []string{"1", "2", "3", "4"}},
		{"with and", "Coverage: Chapters 1, 2, and 3", []string{"1", "2", "3"}},
		{"singular", "coverage: chapter 5", []string{"5"}},
		{"absent", "This exam covers the first half of the course.", nil},
	}
	for _, tc := range cases {
		got := parseMidtermChapters(tc.text)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestCourseCodeRegex(t *testing.T) {
	cases := []struct {
		filename string
		code     string
	}{
		{"PHYS 234 - Syllabus.pdf", "PHYS 234"},
		{"HLTH204 Midterm Overview.pdf", "HLTH204"},
		{"SYSD 300 Textbook.pdf", "SYSD 300"},
		{"Quantum Mechanics A Paradigms Approach.pdf", ""},
		{"uploaded_1.pdf", ""},
	}
	for _, tc := range cases {
		m := courseCodeRe.FindStringSubmatch(tc.filename)
		switch {
		case tc.code == "" && m != nil:
			t.Fatalf("%s: unexpected match %q", tc.filename, m[1])
		case tc.code != "" && (m == nil || m[1] != tc.code):
			t.Fatalf("%s: got %v, want %q", tc.filename, m, tc.code)
		}
	}
}

func TestClassifyByName(t *testing.T) {
	ing := testIngestor()
	courses := ing.classifyByName([]string{
		"/files/PHYS 234 - Syllabus.pdf",
		"/files/PHYS 234 - Midterm Overview.pdf",
		"/files/PHYS 234 Quantum Textbook.pdf",
		"/files/HLTH 204 Syllabus.pdf",
	})

	phys := courses["PHYS 234"]
	if phys == nil {
		t.Fatalf("PHYS 234 not classified: %v", courses)
	}
	if phys.Syllabus == "" || phys.Midterm == "" || phys.Textbook == "" {
		t.Fatalf("PHYS 234 files incomplete: %+v", phys)
	}
	hlth := courses["HLTH 204"]
	if hlth == nil || hlth.Syllabus == "" {
		t.Fatalf("HLTH 204 syllabus not classified: %+v", hlth)
	}
	if hlth.Midterm != "" || hlth.Textbook != "" {
		t.Fatalf("HLTH 204 got extra files: %+v", hlth)
	}
}

func TestScoreTextbookMatch(t *testing.T) {
	syllabus := "Required text: Quantum Mechanics, A Paradigms Approach by McIntyre."
	score := scoreTextbookMatch(syllabus, "/files/Quantum Mechanics A Paradigms Approach.pdf")
	if score < 3 {
		t.Fatalf("expected strong match, score = %d", score)
	}
	unrelated := scoreTextbookMatch(syllabus, "/files/Introduction to Population Health.pdf")
	if unrelated != 0 {
		t.Fatalf("expected no match, score = %d", unrelated)
	}
	if score <= unrelated {
		t.Fatalf("matching book must outscore unrelated book")
	}
}

func TestTOCLinePatterns(t *testing.T) {
	cases := []struct {
		line    string
		chapter string
		page    string
	}{
		{"Chapter 1 Stern-Gerlach Experiments 1", "1", "1"},
		{"CHAPTER 3: Schrodinger Time Evolution 85", "3", "85"},
		{"2 Operators and Measurement 46", "2", "46"},
		{"4. Quantized Energies 120", "4", "120"},
	}
	for _, tc := range cases {
		matched := false
		for _, re := range tocLineRes {
			m := re.FindStringSubmatch(tc.line)
			if m == nil {
				continue
			}
			matched = true
			if m[1] != tc.chapter || m[2] != tc.page {
				t.Fatalf("%q: got chapter=%q page=%q, want %q/%q", tc.line, m[1], m[2], tc.chapter, tc.page)
			}
			break
		}
		if !matched {
			t.Fatalf("no pattern matched %q", tc.line)
		}
	}

	for _, line := range []string{"Preface xi", "Index 312", "and the spin of the electron"} {
		for _, re := range tocLineRes {
			if re.MatchString(line) {
				t.Fatalf("pattern %v must not match %q", re, line)
			}
		}
	}
}
