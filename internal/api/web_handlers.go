package api

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templates embed.FS

// dashboardPageData contains data for the dashboard page template.
type dashboardPageData struct {
	Title string
}

// handleDashboard serves the dashboard page.
// GET /
func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	tmpl, err := template.ParseFS(templates, "templates/dashboard.html")
	if err != nil {
		s.logger.Error("Failed to parse dashboard template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := dashboardPageData{Title: "Book Club Dashboard"}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("Failed to execute dashboard template", "error", err)
	}
}
