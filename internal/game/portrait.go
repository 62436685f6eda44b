package game

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders for DecodeConfig
	_ "image/jpeg"
	_ "image/png"
	"net/http"
)

// PortraitTypes lists the image types a profile image may have.
var PortraitTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

var ErrBadPortrait = errors.New("portrait must be a PNG, JPEG or GIF image")

// ValidatePortrait sniffs b and checks it decodes as the image type it
// claims to be. It returns the content type to serve it with.
func ValidatePortrait(b []byte) (string, error) {
	ct := http.DetectContentType(b)
	if !PortraitTypes[ct] {
		return "", ErrBadPortrait
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(b)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPortrait, err)
	}
	return ct, nil
}
