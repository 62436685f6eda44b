package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"bastion/internal/game"
	"bastion/internal/session"
)

type Server struct {
	Store session.Store[*game.Roster]
	Tmpl  *template.Template

	// Seed, if set, is copied into every new session's roster.
	Seed *game.Roster

	StaticDir        string
	MaxPortraitBytes int64
	SecureCookies    bool
}

const cookieName = "bastion_sid"

const defaultMaxPortraitBytes = 2 << 20

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(logRequests)

	r.HandleFunc("/", s.handleRoster).Methods(http.MethodGet)
	r.HandleFunc("/roster.yaml", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/roster.pdf", s.handleSheet).Methods(http.MethodGet)
	r.HandleFunc("/roster/import", s.handleImport).Methods(http.MethodPost)
	r.HandleFunc("/session/clear", s.handleClearSession).Methods(http.MethodPost)

	r.HandleFunc("/combat", s.handleCombat).Methods(http.MethodGet)
	r.HandleFunc("/combat/damage", s.handleCombatDamage).Methods(http.MethodPost)
	r.HandleFunc("/combat/toggle/{condition}", s.handleCombatToggle).Methods(http.MethodPost)

	r.HandleFunc("/characters/new", s.handleNew).Methods(http.MethodGet)
	r.HandleFunc("/characters", s.handleCreate).Methods(http.MethodPost)

	c := r.PathPrefix("/characters/{name}").Subrouter()
	c.HandleFunc("", s.handleCharacter).Methods(http.MethodGet)
	c.HandleFunc("/damage", s.handleDamage).Methods(http.MethodPost)
	c.HandleFunc("/heal", s.handleHeal).Methods(http.MethodPost)
	c.HandleFunc("/restore-guard", s.handleRestoreGuard).Methods(http.MethodPost)
	c.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	c.HandleFunc("/adjust", s.handleAdjust).Methods(http.MethodPost)
	c.HandleFunc("/toggle/{condition}", s.handleToggle).Methods(http.MethodPost)
	c.HandleFunc("/maximums", s.handleMaximums).Methods(http.MethodPost)
	c.HandleFunc("/notes", s.handleNotes).Methods(http.MethodPost)
	c.HandleFunc("/portrait", s.handlePortrait).Methods(http.MethodGet)
	c.HandleFunc("/portrait", s.handlePortraitUpload).Methods(http.MethodPost)
	c.HandleFunc("/portrait/delete", s.handlePortraitDelete).Methods(http.MethodPost)
	c.HandleFunc("/delete", s.handleDelete).Methods(http.MethodPost)

	if s.StaticDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(s.StaticDir))))
	}
	return r
}

// roster returns the caller's session roster, starting a session if the
// request has none.
func (s *Server) roster(ctx context.Context, w http.ResponseWriter, r *http.Request) (*game.Roster, error) {
	id := s.sessionID(r)
	if id == "" {
		id = s.Store.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s.Store.GetOrCreate(ctx, id, s.newRoster)
}

func (s *Server) newRoster() *game.Roster {
	if s.Seed != nil {
		return s.Seed.Clone()
	}
	return game.NewRoster()
}

// POST /session/clear drops the session roster and its cookie. The next
// request starts over from the seed roster.
func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if id := s.sessionID(r); id != "" {
		if err := s.Store.Delete(r.Context(), id); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	redirect(w, r, "/")
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) maxPortraitBytes() int64 {
	if s.MaxPortraitBytes > 0 {
		return s.MaxPortraitBytes
	}
	return defaultMaxPortraitBytes
}

// muxVar returns a decoded path variable. The router matches on the
// escaped path so names may contain slashes.
func muxVar(r *http.Request, key string) string {
	raw := mux.Vars(r)[key]
	v, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return v
}

func nameVar(r *http.Request) string {
	return muxVar(r, "name")
}

// characterPath is the URL of a character's page.
func characterPath(name string) string {
	return "/characters/" + url.PathEscape(name)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to path; htmx requests get HX-Redirect so the
// whole page is replaced.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrEmptyName),
		errors.Is(err, game.ErrNameTooLong),
		errors.Is(err, game.ErrDuplicateName),
		errors.Is(err, game.ErrNegativeAmount),
		errors.Is(err, game.ErrInvalidStat),
		errors.Is(err, game.ErrUnknownCondition),
		errors.Is(err, game.ErrBadPortrait),
		errors.Is(err, errBadForm):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "internal error", code)
		return
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s for %s: %v", name, r.URL.Path, err)
		http.Error(w, "failed to render template", http.StatusInternalServerError)
	}
}

var errBadForm = errors.New("bad form")

// intField reads a whole number from a form value; empty means def.
func intField(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", errBadForm, key)
	}
	return n, nil
}

// formInts reads several whole-number fields, keeping the first error.
type formInts struct {
	r   *http.Request
	err error
}

func (f *formInts) get(key string, def int) int {
	if f.err != nil {
		return 0
	}
	n, err := intField(f.r, key, def)
	if err != nil {
		f.err = err
	}
	return n
}

// GET /
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
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

	vm := newRosterViewModel(ros, filter, order)
	if isHTMX(r) {
		s.render(w, r, "roster.html", vm)
		return
	}
	s.render(w, r, "layout.html", map[string]any{"Roster": vm})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
