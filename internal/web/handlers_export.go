package web

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"bastion/internal/game"
	"bastion/internal/sheet"
)

const maxImportBytes = 32 << 20

// GET /roster.yaml
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	b, err := game.MarshalRoster(ros)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="roster.yaml"`)
	if _, err := w.Write(b); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /roster/import (multipart field "file") replaces the session roster.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes+64<<10)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusRequestEntityTooLarge)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	f, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	imported, err := game.ParseRoster(b)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid roster: %v", err), http.StatusBadRequest)
		return
	}
	ros.Replace(imported)
	redirect(w, r, "/")
}

// GET /roster.pdf takes the same filter and sort query as the roster page.
func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	filter, ok := game.ParseFilter(r.URL.Query().Get("filter"))
	if !ok {
		http.Error(w, "unknown filter", http.StatusBadRequest)
		return
	}
	order, ok := game.ParseSortOrder(r.URL.Query().Get("sort"))
	if !ok {
		http.Error(w, "unknown sort order", http.StatusBadRequest)
		return
	}

	title := "Printed " + time.Now().Format("2 Jan 2006 15:04")
	pdf, err := sheet.Generate(title, ros.List(filter, order))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="combat-sheet.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
