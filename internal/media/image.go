// Package media shrinks question attachments before they are embedded as data URLs.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"quizmaster/internal/domain"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageWidth  = 800
	MaxImageHeight = 800
	JPEGQuality    = 70
)

// CompressImage decodes r, scales it down to fit the 800x800 box keeping its aspect ratio and
// re-encodes it as a JPEG data URL. Images already inside the box keep their size.
func CompressImage(r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w: %v", domain.ErrUnsupportedMedia, err)
	}

	b := src.Bounds()
	w, h := fitBox(b.Dx(), b.Dy(), MaxImageWidth, MaxImageHeight)
	if w == 0 || h == 0 {
		return "", fmt.Errorf("decode image: %w: empty image", domain.ErrUnsupportedMedia)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return DataURL("image/jpeg", buf.Bytes()), nil
}

func fitBox(w, h, maxW, maxH int) (int, int) {
	if w > h {
		if w > maxW {
			h = h * maxW / w
			w = maxW
		}
	} else if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	if w < 1 && h > 0 {
		w = 1
	}
	if h < 1 && w > 0 {
		h = 1
	}
	return w, h
}

// DataURL embeds data base64-encoded under the given MIME type.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Compress dispatches to the compressor for kind.
func Compress(kind domain.MediaType, data []byte) (string, error) {
	switch kind {
	case domain.MediaImage:
		return CompressImage(bytes.NewReader(data))
	case domain.MediaAudio:
		return CompressAudio(bytes.NewReader(data))
	}
	return "", fmt.Errorf("media type %q: %w", kind, domain.ErrUnsupportedMedia)
}
