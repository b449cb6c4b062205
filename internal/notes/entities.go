package notes

// Highlight is one row of the Moon+ Reader notes table, immutable once
// read. The recorded Filename may be stale: books get moved or deleted on
// the device after the highlight is made.
type Highlight struct {
	BookTitle     string
	Original      string // Verbatim highlighted text
	Note          string // Optional user annotation
	Filename      string // Source book path as recorded by the app
	Color         int64  // Android ARGB int; 0 means no explicit color
	TimeMs        int64  // Epoch milliseconds
	Author        string
	Underline     bool
	Strikethrough bool
	Wavy          bool // "bak" column; squiggly underline
}
