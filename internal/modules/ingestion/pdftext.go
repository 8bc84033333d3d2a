package ingestion

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText pulls plain text from a PDF, page by page. maxPages <= 0
// means the whole document. Pages that fail to decode are skipped rather
// than failing the extraction; scanned or partially corrupt files still
// yield whatever text they carry.
func ExtractText(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	if maxPages > 0 && maxPages < total {
		total = maxPages
	}

	var parts []string
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, tErr := page.GetPlainText(nil)
		if tErr != nil || strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// truncate bounds prompt excerpts so a long textbook never blows the
// request size.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
