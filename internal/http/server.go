// Package http serves the export directory over a local gin server so the
// rendered pages can be browsed without digging through the filesystem.
package http

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/moonexport/internal/config"
)

type HealthResponse struct {
	Status string            `json:"status"`
	Time   string            `json:"time"`
	Checks map[string]string `json:"checks"`
}

const indexTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Exported books</title></head>
<body>
<h1>Exported books</h1>
<ul>
{{- range .}}
<li><a href="/books/{{.}}">{{.}}</a></li>
{{- end}}
</ul>
</body>
</html>`

// NewRouter builds the serve-command router: an index of exported pages,
// the pages themselves, and a health endpoint.
func NewRouter(exportDir string) *gin.Engine {
	router := gin.Default()
	tmpl := template.Must(template.New("index").Parse(indexTemplate))
	router.SetHTMLTemplate(tmpl)

	router.GET("/health", func(c *gin.Context) {
		checks := make(map[string]string)
		status := "healthy"
		if _, err := os.Stat(exportDir); err != nil {
			checks["export_dir"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["export_dir"] = "ok"
		}

		code := http.StatusOK
		if status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, HealthResponse{
			Status: status,
			Time:   time.Now().Format(time.RFC3339),
			Checks: checks,
		})
	})

	router.GET("/", func(c *gin.Context) {
		pages, err := listExportedPages(exportDir)
		if err != nil {
			c.String(http.StatusInternalServerError, "could not list exports: %v", err)
			return
		}
		c.HTML(http.StatusOK, "index", pages)
	})

	router.StaticFS("/books", gin.Dir(exportDir, false))

	return router
}

func listExportedPages(exportDir string) ([]string, error) {
	entries, err := os.ReadDir(exportDir)
	if err != nil {
		return nil, err
	}
	var pages []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			pages = append(pages, entry.Name())
		}
	}
	sort.Strings(pages)
	return pages, nil
}

// Serve runs the router until SIGINT/SIGTERM, then shuts down gracefully.
func Serve(router *gin.Engine, cfg *config.Config) error {
	if _, err := os.Stat(cfg.Export.Dir); os.IsNotExist(err) {
		return fmt.Errorf("export directory %s does not exist, run an export first", cfg.Export.Dir)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		abs, _ := filepath.Abs(cfg.Export.Dir)
		log.Printf("Serving %s at http://%s:%d", abs, cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down, waiting up to %v", config.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Printf("Server exiting")
	return nil
}
