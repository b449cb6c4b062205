// Package exporter drives the incremental export pipeline: retrieve the
// notes database, group highlights by book, skip books whose watermark has
// not moved, fetch book files for context, render HTML pages, and persist
// the updated history.
package exporter

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/mrlokans/moonexport/internal/books"
	"github.com/mrlokans/moonexport/internal/config"
	"github.com/mrlokans/moonexport/internal/device"
	"github.com/mrlokans/moonexport/internal/excerpt"
	"github.com/mrlokans/moonexport/internal/history"
	"github.com/mrlokans/moonexport/internal/notes"
	"github.com/mrlokans/moonexport/internal/utils"
)

// Summary is the user-facing result of one run.
type Summary struct {
	Processed int
	Skipped   int
	ExportDir string
}

// Exporter orchestrates one sequential export run. There is no concurrent
// retrieval or rendering: every device interaction is a blocking round
// trip and the history semantics rely on per-book completion order.
type Exporter struct {
	cfg      *config.Config
	bridge   device.Bridge
	renderer *Renderer
}

func New(cfg *config.Config, bridge device.Bridge) *Exporter {
	return &Exporter{
		cfg:      cfg,
		bridge:   bridge,
		renderer: NewRenderer(),
	}
}

// Run executes the full pipeline and returns the run summary. Only a
// missing database or an unreadable notes table abort the run; everything
// per-book or per-operation degrades and continues.
func (e *Exporter) Run() (*Summary, error) {
	if err := os.MkdirAll(e.cfg.Export.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	// Leftovers from a crashed run must not be mistaken for fresh pulls.
	if err := os.RemoveAll(e.cfg.Export.TempDir); err != nil {
		return nil, fmt.Errorf("failed to clear temp directory: %w", err)
	}
	if err := os.MkdirAll(e.cfg.Export.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(e.cfg.Export.TempDir); err != nil {
			log.Printf("Could not remove temp directory: %v", err)
		}
	}()

	hist, err := history.Open(e.cfg.History.Path)
	if err != nil {
		return nil, err
	}
	defer hist.Close()

	localDB := filepath.Join(e.cfg.Export.TempDir, "moon.db")
	retriever := device.NewDatabaseRetriever(e.bridge, e.cfg.Device)
	if err := retriever.Retrieve(localDB); err != nil {
		return nil, err
	}

	highlights, err := notes.NewReader(localDB).ReadHighlights()
	if err != nil {
		return nil, err
	}
	log.Printf("Found %d highlights", len(highlights))

	groups := GroupByTitle(highlights)

	// The index is built up front so the per-book loop never stalls on a
	// full device walk mid-way.
	index := device.NewFileIndex(nil)
	if !e.cfg.Context.Disabled {
		built, err := device.BuildFileIndex(e.bridge, e.cfg.Device.BooksDir)
		if err != nil {
			log.Printf("Building file index failed, books will not be relocated: %v", err)
		} else {
			index = built
		}
	}
	fetcher := books.NewFetcher(e.bridge, index)
	matcher := excerpt.NewMatcher(e.cfg.Context.Padding)

	summary := &Summary{ExportDir: e.cfg.Export.Dir}
	usedNames := make(map[string]bool)

	for _, group := range groups {
		if !hist.ShouldProcess(group.Title, group.Watermark()) {
			summary.Skipped++
			continue
		}
		log.Printf("Processing: %s", group.Title)

		if err := e.exportBook(group, fetcher, matcher, usedNames); err != nil {
			// Leave the history entry untouched so the book is retried
			// on the next run.
			log.Printf("Export of %q failed: %v", group.Title, err)
			continue
		}
		hist.Update(group.Title, group.Watermark())
		summary.Processed++
	}

	if err := hist.Save(); err != nil {
		log.Printf("Persisting history failed: %v", err)
	}

	return summary, nil
}

func (e *Exporter) exportBook(group *BookGroup, fetcher *books.Fetcher, matcher *excerpt.Matcher, usedNames map[string]bool) error {
	localBook := e.fetchBookFile(group, fetcher)
	if localBook != "" {
		defer utils.RemoveWithRetry(localBook)
	}

	name := utils.UniqueExportName(utils.SanitizeTitle(group.Title), ".html", usedNames)
	outPath := filepath.Join(e.cfg.Export.Dir, name)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer out.Close()

	return e.renderer.Render(out, group, localBook, matcher.Extract)
}

// fetchBookFile pulls the group's book into the temp dir and returns the
// local path. It returns empty when context is disabled, no highlight
// recorded a path, or the pull failed; the book then exports without
// excerpts.
func (e *Exporter) fetchBookFile(group *BookGroup, fetcher *books.Fetcher) string {
	if e.cfg.Context.Disabled {
		return ""
	}
	recorded := group.RepresentativePath()
	if recorded == "" {
		return ""
	}

	ext := path.Ext(recorded)
	if ext == "" {
		ext = ".epub"
	}
	localBook := filepath.Join(e.cfg.Export.TempDir, "temp_book"+ext)

	if !fetcher.Fetch(recorded, localBook) {
		return ""
	}
	return localBook
}
