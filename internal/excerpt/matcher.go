// Package excerpt locates a highlight inside a book's markup content and
// extracts a bounded surrounding excerpt.
//
// The matching is a best-effort string heuristic: there is no stable
// identifier linking a highlight row to its location in the book, so the
// highlighted text itself is the only correlation. Formatting drift in the
// book (footnote markers, hyphenation) causes misses, never wrong matches:
// both sides of the comparison are whitespace-normalized identically.
package excerpt

import (
	"archive/zip"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Excerpt is the text surrounding a matched highlight. The renderer places
// the styled highlight span between Before and After; the truncation flags
// say whether the window was clipped and needs leading/trailing ellipses.
type Excerpt struct {
	Before         string
	After          string
	TruncatedStart bool
	TruncatedEnd   bool
}

// Normalize collapses all whitespace runs (including newlines) to single
// spaces and trims the ends. It is applied to the search target and to the
// book's plain text, never to the raw highlight used for pre-filtering.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
}

// Matcher extracts context excerpts from zip-packaged markup books.
type Matcher struct {
	padding int
}

func NewMatcher(padding int) *Matcher {
	return &Matcher{padding: padding}
}

// Extract searches the book at bookPath for highlight and returns the
// surrounding excerpt. The second return is false when the book is missing,
// not a searchable format, or simply does not contain the text anymore.
func (m *Matcher) Extract(bookPath, highlight string) (*Excerpt, bool) {
	if bookPath == "" {
		return nil, false
	}
	if _, err := os.Stat(bookPath); err != nil {
		return nil, false
	}
	// Fixed-layout formats have no markup to search.
	if strings.HasSuffix(strings.ToLower(bookPath), ".pdf") {
		return nil, false
	}
	target := Normalize(highlight)
	if target == "" {
		return nil, false
	}

	reader, err := zip.OpenReader(bookPath)
	if err != nil {
		return nil, false
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if !isMarkupEntry(entry.Name) {
			continue
		}
		content, err := readEntry(entry)
		if err != nil {
			continue
		}
		// Cheap filter: only entries containing the raw, un-normalized
		// highlight get the full strip-and-normalize treatment.
		if !strings.Contains(content, highlight) {
			continue
		}
		if ex, ok := m.matchIn(content, target); ok {
			return ex, true
		}
	}
	return nil, false
}

// MatchInText runs the normalized search against already-plain text. Split
// out so the heuristic itself is independently testable and substitutable.
// The padding window is counted in runes, not bytes, so multibyte text is
// never split mid-sequence and CJK books get the full configured padding.
func (m *Matcher) MatchInText(plainText, target string) (*Excerpt, bool) {
	clean := Normalize(plainText)
	idx := strings.Index(clean, target)
	if idx == -1 {
		return nil, false
	}

	before := []rune(clean[:idx])
	after := []rune(clean[idx+len(target):])

	start := len(before) - m.padding
	if start < 0 {
		start = 0
	}
	end := m.padding
	if end > len(after) {
		end = len(after)
	}

	return &Excerpt{
		Before:         string(before[start:]),
		After:          string(after[:end]),
		TruncatedStart: start > 0,
		TruncatedEnd:   end < len(after),
	}, true
}

func (m *Matcher) matchIn(markup, target string) (*Excerpt, bool) {
	return m.MatchInText(stripMarkup(markup), target)
}

func isMarkupEntry(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range []string{"html", "htm", "xml", "xhtml"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func readEntry(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	// Invalid byte sequences are replaced, not fatal.
	return strings.ToValidUTF8(string(data), "�"), nil
}

// stripMarkup drops tags and keeps text nodes, separated by spaces so that
// adjacent elements do not run together.
func stripMarkup(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tokenizer.Text())
			b.WriteByte(' ')
		}
	}
}
