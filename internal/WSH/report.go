package wsh

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"rugby-scorekeeper/internal/models"
	"rugby-scorekeeper/internal/report"
)

// current: снимок открытой сессии свежее сохранённого.
func (s *Server) current(r *http.Request, id string) (models.Match, error) {
	if ss, found := s.Sessions.Get(id); found {
		return ss.Snapshot(), nil
	}
	return s.Matches.GetMatchByID(r.Context(), id)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	m, err := s.current(r, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err, "match not found")
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "full":
		writeText(w, "text/plain; charset=utf-8", []byte(report.Full(m)))
	case "summary":
		writeText(w, "text/plain; charset=utf-8", []byte(report.Summary(m)))
	case "html", "summary-html":
		render := report.HTML
		if format == "summary-html" {
			render = report.SummaryHTML
		}
		html, err := render(m)
		if err != nil {
			s.fail(w, err, "failed to render report")
			return
		}
		writeText(w, "text/html; charset=utf-8", html)
	case "pdf", "summary-pdf":
		render, name := s.PDF.MatchPDF, report.MatchFilename(m, s.Now())
		if format == "summary-pdf" {
			render, name = s.PDF.SummaryPDF, report.SummaryFilename(s.Now())
		}
		pdf, err := render(r.Context(), m)
		if err != nil {
			s.fail(w, err, "failed to render pdf")
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		writeText(w, "application/pdf", pdf)
	default:
		writeJSON(w, http.StatusBadRequest, Response{Message: "unknown report format", Error: format})
	}
}

func writeText(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
