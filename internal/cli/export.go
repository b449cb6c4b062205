package cli

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mrlokans/moonexport/internal/config"
	"github.com/mrlokans/moonexport/internal/device"
	"github.com/mrlokans/moonexport/internal/exporter"
)

// ExportCommand runs a single export: pull the notes database, export
// changed books, update the history.
type ExportCommand struct {
	cfg *config.Config

	exportDir      string
	historyPath    string
	adbPath        string
	disableContext bool
	noRoot         bool
}

func NewExportCommand(cfg *config.Config) *ExportCommand {
	return &ExportCommand{cfg: cfg}
}

// ParseFlags parses command line flags; flags override environment config.
func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	fs.StringVar(&cmd.exportDir, "output", cmd.cfg.Export.Dir, "Output directory for HTML pages")
	fs.StringVar(&cmd.historyPath, "history", cmd.cfg.History.Path, "Path to the watermark history store")
	fs.StringVar(&cmd.adbPath, "adb", cmd.cfg.Device.AdbPath, "Path to the adb binary (default: discover)")
	fs.BoolVar(&cmd.disableContext, "no-context", cmd.cfg.Context.Disabled, "Skip book pulls and excerpt extraction")
	fs.BoolVar(&cmd.noRoot, "no-root", !cmd.cfg.Device.UseRoot, "Skip the root tier, use backups only")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export Moon+ Reader highlights from a connected Android device.\n\n")
		fmt.Fprintf(os.Stderr, "This command:\n")
		fmt.Fprintf(os.Stderr, "  1. Pulls the notes database (live via root, or newest .mrpro backup)\n")
		fmt.Fprintf(os.Stderr, "  2. Exports books with new highlights as per-book HTML pages\n")
		fmt.Fprintf(os.Stderr, "  3. Enriches each highlight with surrounding book text when possible\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.cfg.Export.Dir = cmd.exportDir
	cmd.cfg.History.Path = cmd.historyPath
	cmd.cfg.Device.AdbPath = cmd.adbPath
	cmd.cfg.Context.Disabled = cmd.disableContext
	cmd.cfg.Device.UseRoot = !cmd.noRoot
	return nil
}

// Run executes the export pipeline once.
func (cmd *ExportCommand) Run() error {
	engine, err := device.NewEngine(cmd.cfg.Device.AdbPath)
	if err != nil {
		return err
	}

	summary, err := exporter.New(cmd.cfg, engine).Run()
	if err != nil {
		return err
	}

	log.Printf("Processed: %d books | Skipped: %d", summary.Processed, summary.Skipped)
	log.Printf("Done! Exports at: %s", summary.ExportDir)
	return nil
}
