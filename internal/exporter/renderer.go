package exporter

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/mrlokans/moonexport/internal/excerpt"
	"github.com/mrlokans/moonexport/internal/notes"
	"github.com/mrlokans/moonexport/internal/styles"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
    body { font-family: "Georgia", "Times New Roman", serif; width: 95%; max-width: 850px; margin: 20px auto; line-height: 1.6; color: #333; background-color: #fdfdfd; }
    h1 { font-family: "Georgia", serif; border-bottom: 2px solid #eee; padding-bottom: 10px; margin-bottom: 5px; }
    .author { font-size: 0.6em; color: #777; font-weight: normal; margin-left: 10px; vertical-align: middle; }
    .last-update { font-family: sans-serif; font-size: 0.8em; color: #999; text-align: right; margin-bottom: 30px; }
    .card { margin-bottom: 30px; padding-bottom: 20px; border-bottom: 1px solid #eee; }
    .ctx { font-size: 1.1em; color: #444; }
    .note { font-weight: bold; margin-top: 10px; padding-left: 10px; border-left: 3px solid #ccc; color: #000; }
</style>
</head>
<body>
<h1>{{.Title}}<span class="author">by {{.Author}}</span></h1>
<div class="last-update">Last highlight: {{.LastUpdated}}</div>
{{- range .Cards}}
<div class="card">
<div class="ctx">{{if .HasContext}}{{if .TruncatedStart}}&hellip;{{end}}{{.Before}} {{template "span" .}} {{.After}}{{if .TruncatedEnd}}&hellip;{{end}}{{else}}{{template "span" .}}{{end}}</div>
{{- with .Note}}
<div class="note">{{.}}</div>
{{- end}}
</div>
{{- end}}
</body>
</html>
{{- define "span"}}<span style="{{.Style}}; padding: 0 2px; border-radius: 2px">{{.Text}}</span>{{end}}`

type page struct {
	Title       string
	Author      string
	LastUpdated string
	Cards       []card
}

type card struct {
	Text           string
	Note           string
	Style          template.CSS
	HasContext     bool
	Before         string
	After          string
	TruncatedStart bool
	TruncatedEnd   bool
}

// Renderer writes one self-contained HTML page per exported book.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{tmpl: template.Must(template.New("page").Parse(pageTemplate))}
}

// extractFunc locates a highlight's surrounding text in a local book file.
// Matches the excerpt matcher's Extract signature.
type extractFunc func(bookPath, highlight string) (*excerpt.Excerpt, bool)

// Render writes the page for a book group. Highlights are emitted
// oldest-to-newest regardless of retrieval order. localBookPath may be
// empty, in which case every card falls back to the raw highlight.
func (r *Renderer) Render(w io.Writer, group *BookGroup, localBookPath string, extract extractFunc) error {
	data := page{
		Title:       group.Title,
		Author:      group.Author(),
		LastUpdated: formatWatermark(group.Watermark()),
	}

	for i := len(group.Highlights) - 1; i >= 0; i-- {
		data.Cards = append(data.Cards, buildCard(group.Highlights[i], localBookPath, extract))
	}

	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render %q: %w", group.Title, err)
	}
	return nil
}

func buildCard(h *notes.Highlight, localBookPath string, extract extractFunc) card {
	c := card{
		Text:  h.Original,
		Note:  h.Note,
		Style: template.CSS(styles.Resolve(h.Color, h.Underline, h.Strikethrough, h.Wavy).String()),
	}
	if localBookPath == "" || extract == nil {
		return c
	}
	if ex, ok := extract(localBookPath, h.Original); ok {
		c.HasContext = true
		c.Before = ex.Before
		c.After = ex.After
		c.TruncatedStart = ex.TruncatedStart
		c.TruncatedEnd = ex.TruncatedEnd
	}
	return c
}

func formatWatermark(timeMs int64) string {
	if timeMs <= 0 {
		return "Unknown Date"
	}
	return time.UnixMilli(timeMs).Format("2006-01-02 15:04")
}
