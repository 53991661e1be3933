package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// DashboardPage is the data for the map page
type DashboardPage struct {
	Title string
	Map   MapView
}

// ErrorPage is the data for the page-level load failure
type ErrorPage struct {
	Title    string
	Message  string
	RetryURL string
}

// Renderer executes the embedded page templates
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Dashboard renders the map page
func (r *Renderer) Dashboard(w io.Writer, page DashboardPage) error {
	return r.tmpl.ExecuteTemplate(w, "dashboard.html", page)
}

// Error renders the load failure page with a retry action
func (r *Renderer) Error(w io.Writer, page ErrorPage) error {
	return r.tmpl.ExecuteTemplate(w, "error.html", page)
}
