package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/studyplanner-backend/internal/pkg/jsonx"
)

// tocMaxPages bounds the front-matter scan; tables of contents live in the
// first pages of a textbook.
const tocMaxPages = 20

// lastChapterEstimate covers the final listed chapter, whose end page the
// TOC cannot reveal.
const lastChapterEstimate = 30

var tocLineRes = []*regexp.Regexp{
	// "Chapter 1 Title ... 45"
	regexp.MustCompile(`(?:Chapter|CHAPTER)\s+(\d+)[.\s:].*?(\d+)\s*$`),
	// "1 Title 45"
	regexp.MustCompile(`^(\d+)\s+[A-Z].*?(\d+)\s*$`),
	// "1. Title ... 45"
	regexp.MustCompile(`^(\d+)\.\s+.*?(\d+)\s*$`),
}

type chapterStart struct {
	chapter string
	page    int
}

// parseTextbookTOC maps chapter numbers to page counts by locating each
// chapter's starting page in the TOC and diffing consecutive starts.
// Chapters the regexes miss fall back to the oracle.
func (ing *Ingestor) parseTextbookTOC(ctx context.Context, path string, chaptersNeeded []string) (map[string]int, error) {
	tocText, err := ExtractText(path, tocMaxPages)
	if err != nil {
		return nil, fmt.Errorf("read toc: %w", err)
	}

	var starts []chapterStart
	for _, line := range strings.Split(tocText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, re := range tocLineRes {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			page, pErr := strconv.Atoi(m[2])
			if pErr == nil && page >= 1 && page <= 2000 {
				starts = append(starts, chapterStart{chapter: m[1], page: page})
			}
			break
		}
	}

	needed := map[string]bool{}
	for _, ch := range chaptersNeeded {
		needed[ch] = true
	}

	counts := map[string]int{}
	sort.Slice(starts, func(i, j int) bool { return starts[i].page < starts[j].page })
	for i, s := range starts {
		if !needed[s.chapter] {
			continue
		}
		end := s.page + lastChapterEstimate
		if i+1 < len(starts) {
			end = starts[i+1].page
		}
		counts[s.chapter] = end - s.page
	}

	var missing []string
	for _, ch := range chaptersNeeded {
		if _, ok := counts[ch]; !ok {
			missing = append(missing, ch)
		}
	}
	if len(missing) > 0 && strings.TrimSpace(tocText) != "" {
		llmCounts, lErr := ing.parseTOCWithOracle(ctx, tocText, chaptersNeeded)
		if lErr != nil {
			ing.log.Warn("toc oracle fallback failed", "error", lErr, "missing_chapters", missing)
		}
		for ch, n := range llmCounts {
			if _, ok := counts[ch]; !ok {
				counts[ch] = n
			}
		}
	}
	return counts, nil
}

const tocSystemPrompt = `You read textbook tables of contents and report chapter page counts. Respond with JSON only, no prose and no code fences.`

func (ing *Ingestor) parseTOCWithOracle(ctx context.Context, tocText string, chaptersNeeded []string) (map[string]int, error) {
	user := fmt.Sprintf(`From this textbook's table of contents, find the starting page
number of each chapter, then calculate the approximate pages per chapter
(next chapter start minus this chapter start).

I need page counts for these chapters: %s

Return ONLY a JSON object mapping chapter number (as string) to page count
(as integer). Example: {"1": 35, "2": 42}
If you cannot determine a chapter's page count, use %d as the estimate.

Table of contents text:
%s`, strings.Join(chaptersNeeded, ", "), lastChapterEstimate, truncate(tocText, 12000))

	raw, err := ing.ai.GenerateText(ctx, tocSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	var parsed map[string]int
	if err := jsonx.Decode(raw, &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}
