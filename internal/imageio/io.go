package imageio

import (
	"fmt"
	"image"
	_ "image/gif"
	"io"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/rm-hull/image-editor/internal/pixel"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 95

// Load opens and decodes an image file (PNG, JPEG, GIF, BMP, TIFF or WebP).
func Load(path string) (*pixel.Buffer, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return ToBuffer(img)
}

// Decode reads an encoded image from r.
func Decode(r io.Reader) (*pixel.Buffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return ToBuffer(img)
}

// EncoderFor picks an encoder by format name or file extension
// ("png", ".jpg", "jpeg", "bmp").
func EncoderFor(format string) (imgio.Encoder, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "png":
		return imgio.PNGEncoder(), nil
	case "jpg", "jpeg":
		return imgio.JPEGEncoder(jpegQuality), nil
	case "bmp":
		return imgio.BMPEncoder(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ContentType returns the MIME type for a format accepted by EncoderFor.
func ContentType(format string) string {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "bmp":
		return "image/bmp"
	}
	return "image/png"
}

// Encode writes buf to w in the given format.
func Encode(w io.Writer, buf *pixel.Buffer, format string) error {
	encoder, err := EncoderFor(format)
	if err != nil {
		return err
	}
	img, err := FromBuffer(buf)
	if err != nil {
		return err
	}
	return encoder(w, img)
}

// Save writes buf to path, choosing the encoder from the file extension.
func Save(path string, buf *pixel.Buffer) error {
	encoder, err := EncoderFor(filepath.Ext(path))
	if err != nil {
		return err
	}
	img, err := FromBuffer(buf)
	if err != nil {
		return err
	}
	if err := imgio.Save(path, img, encoder); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// IsImageFile reports whether path has an extension Load understands.
func IsImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}
