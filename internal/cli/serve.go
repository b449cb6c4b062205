package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/moonexport/internal/config"
	"github.com/mrlokans/moonexport/internal/http"
)

// ServeCommand serves the export directory over a local HTTP server.
type ServeCommand struct {
	cfg *config.Config

	host string
	port int
}

func NewServeCommand(cfg *config.Config) *ServeCommand {
	return &ServeCommand{cfg: cfg}
}

func (cmd *ServeCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	fs.StringVar(&cmd.host, "host", cmd.cfg.HTTP.Host, "Address to bind")
	fs.IntVar(&cmd.port, "port", int(cmd.cfg.HTTP.Port), "Port to bind")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s serve [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Browse previously exported highlight pages in a browser.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.cfg.HTTP.Host = cmd.host
	cmd.cfg.HTTP.Port = int32(cmd.port)
	return nil
}

func (cmd *ServeCommand) Run() error {
	router := http.NewRouter(cmd.cfg.Export.Dir)
	return http.Serve(router, cmd.cfg)
}
