// Package photo shrinks drone photos into JPEG data URIs and parses them back.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	MaxWidth  = 800
	MaxHeight = 800

	quality = 70
	// fallbackQuality is used when the payload at quality is still too big.
	fallbackQuality = 50
	// maxPayload is the largest base64 payload kept at full quality.
	maxPayload = 500 * 1024
)

var ErrNotDataURI = errors.New("photo: not a base64 data URI")

// Compress decodes an image, fits it inside MaxWidth x MaxHeight keeping the
// aspect ratio, and returns it as a JPEG data URI. Small images are never
// enlarged.
func Compress(r io.Reader) (string, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	img := imaging.Fit(src, MaxWidth, MaxHeight, imaging.Lanczos)

	uri, err := encode(img, quality)
	if err != nil {
		return "", err
	}
	if len(uri) > maxPayload {
		return encode(img, fallbackQuality)
	}
	return uri, nil
}

func encode(img image.Image, q int) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// IsDataURI reports whether s is a base64 data URI.
func IsDataURI(s string) bool {
	head, _, ok := strings.Cut(s, ",")
	return ok && strings.HasPrefix(head, "data:") && strings.HasSuffix(head, ";base64")
}

// ParseDataURI returns the content type and the decoded bytes of a base64
// data URI.
func ParseDataURI(s string) (string, []byte, error) {
	if !IsDataURI(s) {
		return "", nil, ErrNotDataURI
	}
	head, payload, _ := strings.Cut(s, ",")
	contentType := strings.TrimSuffix(strings.TrimPrefix(head, "data:"), ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	return contentType, data, nil
}
