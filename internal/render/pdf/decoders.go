package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Decoders for formats fpdf cannot embed directly
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gompdf/folio/internal/res"
)

// embeddable returns image data and the fpdf image type for it. PNG, JPEG and
// GIF pass through; anything image.Decode understands is converted to PNG.
func embeddable(r *res.Resource) ([]byte, string, error) {
	switch r.MimeType {
	case "image/png":
		return r.Data, "PNG", nil
	case "image/jpeg":
		return r.Data, "JPG", nil
	case "image/gif":
		return r.Data, "GIF", nil
	}

	img, format, err := image.Decode(bytes.NewReader(r.Data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", r.MimeType, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("failed to convert %s to png: %w", format, err)
	}
	return buf.Bytes(), "PNG", nil
}
