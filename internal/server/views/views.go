// Package views renders the embedded HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/brizzai/moodlist/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	Home        = "home.html"
	Playlists   = "playlist.html"
	NewPlaylist = "newplaylist.html"
	Error       = "error.html"
	Failed      = "failed.html"
)

// Renderer executes the parsed page templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"valence": func(v float64) string { return fmt.Sprintf("%.3f", v) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render writes the named page with status. The page is rendered into a
// buffer first so a template failure still produces a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("Failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Debug("Failed to write response", zap.String("template", name), zap.Error(err))
	}
}

// Module provides the renderer
var Module = fx.Module("views",
	fx.Provide(NewRenderer),
)
