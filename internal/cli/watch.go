package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/moonexport/internal/config"
	"github.com/mrlokans/moonexport/internal/device"
	"github.com/mrlokans/moonexport/internal/exporter"
	"github.com/mrlokans/moonexport/internal/scheduler"
)

// WatchCommand runs the export pipeline on a cron schedule until
// interrupted.
type WatchCommand struct {
	cfg *config.Config

	schedule string
}

func NewWatchCommand(cfg *config.Config) *WatchCommand {
	return &WatchCommand{cfg: cfg}
}

func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)

	fs.StringVar(&cmd.schedule, "schedule", cmd.cfg.Watch.Schedule, "Cron schedule for export runs")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run the export repeatedly on a cron schedule.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *WatchCommand) Run() error {
	engine, err := device.NewEngine(cmd.cfg.Device.AdbPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewExportScheduler(exporter.New(cmd.cfg, engine))
	return sched.Start(ctx, cmd.schedule)
}
