package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"bastion/internal/game"
	"bastion/internal/session"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	tmpl, err := LoadTemplates(filepath.Join("..", "..", "templates"))
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	seed := game.NewRoster()
	for _, c := range []*game.Character{
		game.NewCharacter("Aldous", 10, 10, 10, 3, 1),
		game.NewCharacter("Brann", 6, 8, 8, 0, 0),
	} {
		if err := seed.Add(c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return &Server{
		Store: session.NewMemoryStore[*game.Roster](),
		Tmpl:  tmpl,
		Seed:  seed,
	}
}

// client replays the session cookie between requests.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func newClient(t *testing.T, srv *Server) *client {
	return &client{t: t, h: srv.Routes()}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieName {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, http.NoBody))
}

func (c *client) post(path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return c.do(req)
}

func sessionRoster(t *testing.T, srv *Server, c *client) *game.Roster {
	t.Helper()
	if c.cookie == nil {
		t.Fatal("no session cookie")
	}
	ros, ok, err := srv.Store.Get(context.Background(), c.cookie.Value)
	if err != nil || !ok {
		t.Fatalf("session roster: ok=%v err=%v", ok, err)
	}
	return ros
}

func TestHandleRoster(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)

	rec := c.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Character Roster", "Aldous", "Brann", `href="/characters/Aldous"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
	if c.cookie == nil {
		t.Error("Expected a session cookie")
	}
}

func TestHandleRoster_FilterAndSort(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)
	c.get("/")
	if _, err := sessionRoster(t, srv, c).Damage("Brann", 10); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/?filter=dead&sort=vigor", http.NoBody)
	req.Header.Set("HX-Request", "true")
	rec := c.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("Expected a fragment for htmx requests")
	}
	if !strings.Contains(body, "Brann") || strings.Contains(body, `href="/characters/Aldous"`) {
		t.Errorf("Expected only Brann in dead filter, got %s", body)
	}

	if rec := c.get("/?filter=sleepy"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown filter, got %d", rec.Code)
	}
	if rec := c.get("/?sort=height"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown sort, got %d", rec.Code)
	}
}

func TestHandleRoster_NoMatches(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)

	rec := c.get("/?filter=scarred")
	if !strings.Contains(rec.Body.String(), "No characters match the filter") {
		t.Error("Expected no-match message")
	}
}

func TestHandleNew(t *testing.T) {
	srv := testServer(t)
	rec := newClient(t, srv).get("/characters/new")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Create New Character") {
		t.Error("Expected creation form")
	}
}

func TestHandleCreate(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)

	rec := c.post("/characters", url.Values{
		"name": {"Sir Cador/The Bold"}, "vigor": {"12"}, "clarity": {"9"},
		"spirit": {"8"}, "guard": {"4"}, "armor": {"2"}, "notes": {"oathsworn"},
	}, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	loc := rec.Header().Get("Location")
	if loc != "/characters/Sir%20Cador%2FThe%20Bold" {
		t.Errorf("Unexpected Location %q", loc)
	}

	got, ok := sessionRoster(t, srv, c).Get("Sir Cador/The Bold")
	if !ok {
		t.Fatal("Expected character to be created")
	}
	if got.MaxVigor != 12 || got.Guard != 4 || got.Armor != 2 || got.Notes != "oathsworn" {
		t.Errorf("Unexpected character %+v", got)
	}

	rec = c.get(loc)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 following Location, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Sir Cador/The Bold") {
		t.Error("Expected character page")
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"empty name", url.Values{"name": {"   "}}, "character name is required"},
		{"duplicate", url.Values{"name": {"Aldous"}}, "already exists"},
		{"vigor out of range", url.Values{"name": {"X"}, "vigor": {"51"}}, "Vigor must be between 1 and 50"},
		{"armor not a number", url.Values{"name": {"X"}, "armor": {"lots"}}, "armor must be a whole number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t)
			c := newClient(t, srv)
			rec := c.post("/characters", tt.form, false)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("Expected body to contain %q", tt.want)
			}
			if n := sessionRoster(t, srv, c).Len(); n != 2 {
				t.Errorf("Expected roster unchanged, got %d characters", n)
			}
		})
	}
}

func TestHandleCreate_HTMXRedirect(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)
	rec := c.post("/characters", url.Values{"name": {"Cora"}}, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/characters/Cora" {
		t.Errorf("Unexpected HX-Redirect %q", got)
	}
}

func TestHandleDamage(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)
	c.get("/")

	rec := c.post("/characters/Aldous/damage", url.Values{"amount": {"9"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Armor absorbed 1 damage",
		"Guard reduced by 3 (now 0)",
		"SCAR inflicted!",
		"Vigor reduced by 5 (now 5)",
		"MORTAL WOUND inflicted!",
		"Mortally wounded",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}

	a, _ := sessionRoster(t, srv, c).Get("Aldous")
	if a.Vigor != 5 || a.Guard != 0 || !a.Scarred || !a.MortallyWounded {
		t.Errorf("Unexpected state %+v", a)
	}
}

func TestHandleDamage_Errors(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)

	if rec := c.post("/characters/Aldous/damage", url.Values{"amount": {"-2"}}, false); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative amount, got %d", rec.Code)
	}
	if rec := c.post("/characters/Aldous/damage", url.Values{"amount": {"x"}}, false); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-number, got %d", rec.Code)
	}
	if rec := c.post("/characters/Nobody/damage", url.Values{"amount": {"1"}}, false); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown character, got %d", rec.Code)
	}
	if rec := c.get("/characters/Nobody"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown page, got %d", rec.Code)
	}
}

func TestHandleHealAndReset(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)
	c.post("/characters/Brann/damage", url.Values{"amount": {"4"}}, true)

	rec := c.post("/characters/Brann/heal", url.Values{"amount": {"1"}}, true)
	if !strings.Contains(rec.Body.String(), "Healed 1 vigor.") {
		t.Error("Expected heal message")
	}
	b, _ := sessionRoster(t, srv, c).Get("Brann")
	if b.Vigor != 3 || !b.Wounded {
		t.Errorf("Expected partial heal to keep wound, got %+v", b)
	}

	rec = c.post("/characters/Brann/reset", nil, true)
	if !strings.Contains(rec.Body.String(), "Character fully healed!") {
		t.Error("Expected reset message")
	}
	b, _ = sessionRoster(t, srv, c).Get("Brann")
	if b.Vigor != 6 || b.Wounded || b.MortallyWounded || !b.Alive {
		t.Errorf("Expected full reset, got %+v", b)
	}
}

func TestHandleRestoreGuardAndAdjust(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)
	c.post("/characters/Aldous/damage", url.Values{"amount": {"4"}}, true)

	c.post("/characters/Aldous/restore-guard", url.Values{"amount": {"2"}}, true)
	a, _ := sessionRoster(t, srv, c).Get("Aldous")
	if a.Guard != 2 || !a.Scarred {
		t.Errorf("Unexpected guard state %+v", a)
	}

	rec := c.post("/characters/Aldous/adjust", url.Values{"vigor": {"-20"}, "guard": {"5"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	a, _ = sessionRoster(t, srv, c).Get("Aldous")
	if a.Vigor != 0 || a.Alive || a.Guard != 3 {
		t.Errorf("Unexpected adjusted state %+v", a)
	}
	if !strings.Contains(rec.Body.String(), "This character has been slain") {
		t.Error("Expected slain notice")
	}
}

func TestHandleToggle(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)

	if rec := c.post("/characters/Aldous/toggle/fatigued", nil, true); rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	a, _ := sessionRoster(t, srv, c).Get("Aldous")
	if !a.Fatigued {
		t.Error("Expected fatigued")
	}
	if rec := c.post("/characters/Aldous/toggle/wounded", nil, true); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown condition, got %d", rec.Code)
	}
}

func TestHandleMaximums(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)

	rec := c.post("/characters/Aldous/maximums", url.Values{"max_vigor": {"4"}, "armor": {"3"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	a, _ := sessionRoster(t, srv, c).Get("Aldous")
	if a.MaxVigor != 4 || a.Vigor != 4 || a.Armor != 3 || a.MaxClarity != 10 {
		t.Errorf("Unexpected maximums %+v", a)
	}

	if rec := c.post("/characters/Aldous/maximums", url.Values{"max_vigor": {"0"}}, true); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for zero max vigor, got %d", rec.Code)
	}
}

func TestHandleNotes(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)

	c.post("/characters/Aldous/notes", url.Values{"notes": {"owes Brann a silver"}}, true)
	a, _ := sessionRoster(t, srv, c).Get("Aldous")
	if a.Notes != "owes Brann a silver" {
		t.Errorf("Unexpected notes %q", a.Notes)
	}

	rec := c.post("/characters/Aldous/notes", url.Values{"notes": {"ignored"}, "clear": {"1"}}, true)
	if !strings.Contains(rec.Body.String(), "Notes cleared.") {
		t.Error("Expected clear message")
	}
	a, _ = sessionRoster(t, srv, c).Get("Aldous")
	if a.Notes != "" {
		t.Errorf("Expected notes cleared, got %q", a.Notes)
	}
}

func TestHandleDelete(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)

	rec := c.post("/characters/Brann/delete", nil, false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("Expected redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, ok := sessionRoster(t, srv, c).Get("Brann"); ok {
		t.Error("Expected Brann deleted")
	}
	if rec := c.post("/characters/Brann/delete", nil, false); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", rec.Code)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := testServer(t)
	one := newClient(t, srv)
	two := newClient(t, srv)

	one.post("/characters/Brann/delete", nil, false)
	two.get("/")

	if _, ok := sessionRoster(t, srv, two).Get("Brann"); !ok {
		t.Error("Expected second session to keep its own seed copy")
	}
	if srv.Seed.Len() != 2 {
		t.Error("Expected seed roster untouched")
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestExportImport(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)
	c.post("/characters/Aldous/damage", url.Values{"amount": {"6"}}, true)

	rec := c.get("/roster.yaml")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Unexpected Content-Type %q", ct)
	}
	exported := rec.Body.Bytes()

	other := newClient(t, srv)
	other.post("/characters/Brann/delete", nil, false)
	body, ct := multipartBody(t, "file", "roster.yaml", exported)
	req := httptest.NewRequest(http.MethodPost, "/roster/import", body)
	req.Header.Set("Content-Type", ct)
	rec = other.do(req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d: %s", rec.Code, rec.Body.String())
	}

	got := sessionRoster(t, srv, other).Characters()
	want := sessionRoster(t, srv, c).Characters()
	if len(got) != len(want) {
		t.Fatalf("Expected %d characters, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Name != want[i].Name || got[i].Vigor != want[i].Vigor || got[i].Scarred != want[i].Scarred {
			t.Errorf("Character %d differs: %+v vs %+v", i, got[i], want[i])
		}
	}
}

func TestImport_Invalid(t *testing.T) {
	srv := testServer(t)
	c := newClient(t, srv)

	body, ct := multipartBody(t, "file", "roster.yaml", []byte("characters:\n  - {name: '', vigor: 1}\n"))
	req := httptest.NewRequest(http.MethodPost, "/roster/import", body)
	req.Header.Set("Content-Type", ct)
	rec := c.do(req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if n := sessionRoster(t, srv, c).Len(); n != 2 {
		t.Errorf("Expected roster unchanged, got %d", n)
	}
}

func TestHandleSheet_ReturnsPDF(t *testing.T) {
	srv := testServer(t)
	rec := newClient(t, srv).get("/roster.pdf?filter=alive&sort=guard")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Unexpected Content-Type %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("Expected PDF body")
	}
}

type errReader struct{ err error }

func (e *errReader) Read([]byte) (int, error) { return 0, e.err }

func TestHandleNotes_ParseFormError_BadRequest(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/characters/Aldous/notes", &errReader{err: errors.New("read failed")})
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{game.ErrNotFound, http.StatusNotFound},
		{game.ErrDuplicateName, http.StatusBadRequest},
		{game.ErrNegativeAmount, http.StatusBadRequest},
		{errBadForm, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
