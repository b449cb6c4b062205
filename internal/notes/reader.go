package notes

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Reader reads highlight rows from a pulled Moon+ Reader database.
type Reader struct {
	dbPath string
}

func NewReader(dbPath string) *Reader {
	return &Reader{dbPath: dbPath}
}

// ReadHighlights returns all highlights with non-empty text, newest first.
// The descending time order is load-bearing: grouping takes the first row
// of each book as its watermark.
//
// Older database versions lack the author and decoration columns; those
// are detected up front and degrade to empty author and default style.
func (r *Reader) ReadHighlights() ([]*Highlight, error) {
	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	columns, err := tableColumns(db, "notes")
	if err != nil {
		return nil, err
	}
	hasAuthor := columns["author"]
	hasStyle := columns["underline"] && columns["bak"]

	selected := []string{"book", "original", "note", "filename", "highlightColor", "time"}
	if hasAuthor {
		selected = append(selected, "author")
	}
	if hasStyle {
		selected = append(selected, "underline", "strikethrough", "bak")
	}

	query := fmt.Sprintf(
		"SELECT %s FROM notes WHERE original IS NOT NULL AND original != '' ORDER BY time DESC",
		strings.Join(selected, ", "),
	)

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var highlights []*Highlight
	for rows.Next() {
		h := &Highlight{}
		var note, filename, author sql.NullString
		var color, underline, strikethrough, wavy sql.NullInt64

		dest := []any{&h.BookTitle, &h.Original, &note, &filename, &color, &h.TimeMs}
		if hasAuthor {
			dest = append(dest, &author)
		}
		if hasStyle {
			dest = append(dest, &underline, &strikethrough, &wavy)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		h.Note = note.String
		h.Filename = filename.String
		h.Author = author.String
		h.Color = color.Int64
		h.Underline = underline.Int64 != 0
		h.Strikethrough = strikethrough.Int64 != 0
		h.Wavy = wavy.Int64 != 0

		// Legacy databases without the decoration columns encode colors
		// differently; drop the color so those rows render with the
		// default highlight style.
		if !hasStyle {
			h.Color = 0
		}

		highlights = append(highlights, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return highlights, nil
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s table: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
