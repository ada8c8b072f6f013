package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"golang.org/x/image/draw"
)

// ImageTier represents the terminal's image rendering capability.
type ImageTier int

const (
	TierNone  ImageTier = iota // text only
	TierKitty                  // Kitty graphics protocol (Kitty, Ghostty, WezTerm)
	TierIterm                  // iTerm2 inline images (OSC 1337)
	TierSixel                  // Sixel protocol (foot, Contour)
)

// ThumbnailSize bounds the longest side of a photo shown in the terminal.
const ThumbnailSize = 256

// ErrNoPhoto is returned when a contact carries no usable photo.
var ErrNoPhoto = errors.New("no photo")

// DetectImageTier determines the terminal's image rendering capability.
// configOverride values: "auto" (default), "inline", "text".
func DetectImageTier(configOverride string) ImageTier {
	switch strings.ToLower(configOverride) {
	case "text":
		return TierNone
	case "", "auto", "inline":
		return detectBest()
	default:
		return TierNone
	}
}

// detectBest probes the terminal for the best supported image protocol.
// Sixel is not detected because WriteInlineImage cannot render it
// (rasterm.SixelWriteImage requires image.Paletted, not raw PNG).
func detectBest() ImageTier {
	if rasterm.IsKittyCapable() {
		return TierKitty
	}
	if rasterm.IsItermCapable() {
		return TierIterm
	}
	return TierNone
}

// WriteInlineImage writes a PNG image to w using the appropriate terminal
// protocol for the given tier. Tiers without inline support are a no-op.
func WriteInlineImage(w io.Writer, pngData []byte, tier ImageTier) error {
	switch tier {
	case TierKitty:
		return rasterm.KittyCopyPNGInline(w, bytes.NewReader(pngData), rasterm.KittyImgOpts{})
	case TierIterm:
		return rasterm.ItermCopyFileInline(w, bytes.NewReader(pngData), int64(len(pngData)))
	default:
		return nil
	}
}

// PhotoPNG decodes a base64 image data URI and re-encodes it as PNG, scaled
// down so its longest side is at most maxSide. maxSide <= 0 keeps the size.
func PhotoPNG(dataURI string, maxSide int) ([]byte, error) {
	meta, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(meta, "data:image/") || payload == "" {
		return nil, ErrNoPhoto
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("photo data URI is not base64 encoded")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	img = thumbnail(img, maxSide)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}
	return buf.Bytes(), nil
}

func thumbnail(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	if w >= h {
		h = h * maxSide / w
		w = maxSide
	} else {
		w = w * maxSide / h
		h = maxSide
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// WritePhoto shows a contact photo data URI inline. It returns ErrNoPhoto
// when uri is empty; tiers without inline support write nothing.
func WritePhoto(w io.Writer, uri string, tier ImageTier) error {
	if uri == "" {
		return ErrNoPhoto
	}
	if tier == TierNone {
		return nil
	}
	data, err := PhotoPNG(uri, ThumbnailSize)
	if err != nil {
		return err
	}
	if err := WriteInlineImage(w, data, tier); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
