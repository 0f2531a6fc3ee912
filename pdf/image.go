package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// MaxImageBytes bounds a decoded logo or signature.
const MaxImageBytes = 2 << 20

type embeddedImage struct {
	name          string
	width, height int // pixels
}

func (i embeddedImage) aspect() float64 {
	if i.height == 0 {
		return 0
	}
	return float64(i.width) / float64(i.height)
}

// decodeDataURL accepts "data:image/png;base64,..." or bare base64 and
// returns the raw bytes.
func decodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: malformed data URL", ErrImageEmbed)
		}
		if !strings.HasSuffix(s[:comma], ";base64") {
			return nil, fmt.Errorf("%w: data URL is not base64", ErrImageEmbed)
		}
		s = s[comma+1:]
	}
	if base64.StdEncoding.DecodedLen(len(s)) > MaxImageBytes+3 {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrImageEmbed, MaxImageBytes)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageEmbed, err)
	}
	if len(raw) > MaxImageBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrImageEmbed, MaxImageBytes)
	}
	return raw, nil
}

// embedImage registers an image with the document. Failures leave the
// document usable: gofpdf's sticky error is cleared before returning.
func embedImage(f *gofpdf.Fpdf, name, dataURL string) (embeddedImage, error) {
	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return embeddedImage{}, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return embeddedImage{}, fmt.Errorf("%w: %v", ErrImageEmbed, err)
	}

	var imageType string
	switch format {
	case "png":
		imageType = "PNG"
	case "jpeg":
		imageType = "JPG"
	case "gif":
		imageType = "GIF"
	default:
		return embeddedImage{}, fmt.Errorf("%w: unsupported format %q", ErrImageEmbed, format)
	}

	f.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(raw))
	if f.Err() {
		err := f.Error()
		f.ClearError()
		return embeddedImage{}, fmt.Errorf("%w: %v", ErrImageEmbed, err)
	}
	return embeddedImage{name: name, width: cfg.Width, height: cfg.Height}, nil
}
