package exporter

import "github.com/mrlokans/moonexport/internal/notes"

// BookGroup is a book title with its highlights in the order they were
// read from the database (newest first). Rendering reverses them so the
// page reads in chronological order.
type BookGroup struct {
	Title      string
	Highlights []*notes.Highlight
}

// Watermark is the newest highlight timestamp in the group. The database
// read is ordered by time descending, so the first row carries it.
func (g *BookGroup) Watermark() int64 {
	return g.Highlights[0].TimeMs
}

// Author returns the group's author, or a fallback when the column is
// absent or empty.
func (g *BookGroup) Author() string {
	if a := g.Highlights[0].Author; a != "" {
		return a
	}
	return "Unknown Author"
}

// RepresentativePath picks the book file path for the group: the first
// non-empty recorded path in original order. Duplicate copies of a book in
// the database sometimes lack a path, so the newest highlight alone cannot
// be trusted. Empty means the group has no locatable source at all.
func (g *BookGroup) RepresentativePath() string {
	for _, h := range g.Highlights {
		if p := h.Filename; p != "" {
			return p
		}
	}
	return ""
}

// GroupByTitle groups highlights by book title, preserving both the
// source-read order of books and the row order within each group.
func GroupByTitle(highlights []*notes.Highlight) []*BookGroup {
	byTitle := make(map[string]*BookGroup)
	var groups []*BookGroup
	for _, h := range highlights {
		g, ok := byTitle[h.BookTitle]
		if !ok {
			g = &BookGroup{Title: h.BookTitle}
			byTitle[h.BookTitle] = g
			groups = append(groups, g)
		}
		g.Highlights = append(g.Highlights, h)
	}
	return groups
}
