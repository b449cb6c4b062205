package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mrlokans/moonexport/internal/cli"
	"github.com/mrlokans/moonexport/internal/config"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// Missing .env is fine, the environment alone may carry the config.
	_ = godotenv.Load()

	cfg := config.NewConfig()
	setupLogging(cfg)

	log.Printf("moonexport v%s (%s)", Version, Commit)

	// Bare flags imply the default export command.
	name := "export"
	args := os.Args[1:]
	if len(os.Args) >= 2 && !strings.HasPrefix(os.Args[1], "-") {
		name = os.Args[1]
		args = os.Args[2:]
	}

	var cmd command
	switch name {
	case "export":
		cmd = cli.NewExportCommand(cfg)
	case "serve":
		cmd = cli.NewServeCommand(cfg)
	case "watch":
		cmd = cli.NewWatchCommand(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		fmt.Fprintf(os.Stderr, "Usage: %s [export|serve|watch] [options]\n", os.Args[0])
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging tees log output to the configured log file when enabled.
func setupLogging(cfg *config.Config) {
	if !cfg.Logging.Enabled || cfg.Logging.File == "" {
		return
	}
	f, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("Could not open log file %s: %v", cfg.Logging.File, err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}
