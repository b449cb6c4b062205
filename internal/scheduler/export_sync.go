// Package scheduler runs the export pipeline on a cron schedule for the
// watch command.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/moonexport/internal/exporter"
)

// ExportScheduler triggers periodic export runs. Runs never overlap: a
// tick that fires while the previous run is still going is skipped, since
// the pipeline is strictly sequential and shares the temp directory.
type ExportScheduler struct {
	exp  *exporter.Exporter
	cron *cron.Cron

	mu        sync.Mutex
	isRunning bool
}

func NewExportScheduler(exp *exporter.Exporter) *ExportScheduler {
	return &ExportScheduler{
		exp:  exp,
		cron: cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules export runs and blocks until ctx is cancelled.
func (s *ExportScheduler) Start(ctx context.Context, schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runExport); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	log.Printf("Watch mode started with schedule %q", schedule)

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Printf("Watch mode stopped")
	return nil
}

func (s *ExportScheduler) runExport() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		log.Printf("Previous export still running, skipping this tick")
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	summary, err := s.exp.Run()
	if err != nil {
		log.Printf("Scheduled export failed: %v", err)
		return
	}
	log.Printf("Scheduled export done: %d processed, %d skipped", summary.Processed, summary.Skipped)
}
