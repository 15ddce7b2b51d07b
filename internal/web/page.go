package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/kfreiman/office2md/internal/conversion"
	"github.com/kfreiman/office2md/internal/converter"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Result  *conversion.Result
	Message string
	Error   string
	URL     string
}

type pageView struct {
	pageData
	Formats   []converter.FormatCategory
	Accept    string
	Preview   string
	Truncated bool
	Version   string
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	view := pageView{
		pageData: data,
		Formats:  converter.SupportedFormats(),
		Accept:   converter.AcceptAttribute(),
		Version:  s.version,
	}
	if data.Result != nil {
		view.Preview, view.Truncated = data.Result.Preview()
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to render page",
			"error", err,
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
