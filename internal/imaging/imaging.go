// Package imaging normalises uploaded asset photos and keeps them on disk.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/erazemk/assetdesk/internal/apperr"
)

// MaxDimension is the maximum width or height for stored images.
const MaxDimension = 1024

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = errors.New("image is too large")

// Normalize reads at most maxBytes of r, checks by content sniffing that it
// is a JPEG or PNG, fits it within MaxDimension and re-encodes it as JPEG.
// Rejected input yields an *apperr.ValidationError on the "image" field.
func Normalize(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, apperr.Upstream("reading image upload", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperr.Invalid("image", fmt.Sprintf("%s (limit %d bytes)", ErrTooLarge, maxBytes))
	}

	// Client headers are not trusted.
	if detected := http.DetectContentType(data); !accepted[detected] {
		return nil, apperr.Invalid("image", fmt.Sprintf("unsupported image format %s, only JPEG and PNG are accepted", detected))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Invalid("image", "image could not be decoded")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, MaxDimension), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img down with Catmull-Rom so neither side exceeds limit,
// keeping the aspect ratio. Smaller images are returned as they are.
func fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	scale := float64(limit) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
