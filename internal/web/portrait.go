package web

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"net/http"

	"bastion/internal/game"
)

const (
	portraitCacheControl    = "private, max-age=60"
	placeholderCacheControl = "private, max-age=300"
)

// GET /characters/{name}/portrait serves the uploaded image, or a generated
// placeholder when there is none or the stored bytes are not a valid image.
func (s *Server) handlePortrait(w http.ResponseWriter, r *http.Request) {
	ros, err := s.roster(r.Context(), w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, ok := ros.Get(nameVar(r))
	if !ok {
		http.NotFound(w, r)
		return
	}

	if ct, err := game.ValidatePortrait(c.ProfileImage); err == nil {
		w.Header().Set("Content-Type", ct)
		w.Header().Set("Cache-Control", portraitCacheControl)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if _, err := w.Write(c.ProfileImage); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	img := generatePlaceholder(c.Name, c.Alive)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", placeholderCacheControl)
	if _, err := w.Write(buf.Bytes()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /characters/{name}/portrait (multipart field "image")
func (s *Server) handlePortraitUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.maxPortraitBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+64<<10)
	if err := r.ParseMultipartForm(limit); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusRequestEntityTooLarge)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	f, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "missing image", http.StatusBadRequest)
		return
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	if int64(len(b)) > limit {
		http.Error(w, fmt.Sprintf("portrait larger than %d bytes", limit), http.StatusRequestEntityTooLarge)
		return
	}
	if _, err := game.ValidatePortrait(b); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.apply(w, r, "Profile image saved.", func(c *game.Character) error {
		c.ProfileImage = b
		return nil
	})
}

// POST /characters/{name}/portrait/delete
func (s *Server) handlePortraitDelete(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, "Profile image removed.", func(c *game.Character) error {
		c.ProfileImage = nil
		return nil
	})
}
