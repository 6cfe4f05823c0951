// Package screen post-processes device screenshots: annotation, scaling
// and re-encoding.
package screen

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/hamen/android-mcp/internal/model"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"

	DefaultQuality = 80
)

// Options controls Process. The zero value passes the PNG through.
type Options struct {
	// Scale shrinks the image; 0 and 1 keep full size.
	Scale float64
	// Format is FormatPNG (default) or FormatJPEG.
	Format string
	// Quality is the JPEG quality, 1-100.
	Quality int
	// Annotate draws these nodes' bounds and tap points before scaling.
	Annotate []model.FlatNode
}

// Image is an encoded screenshot.
type Image struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

func (o Options) normalized() (Options, error) {
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Scale < 0 || o.Scale > 1 {
		return o, fmt.Errorf("scale must be in (0, 1], got %g", o.Scale)
	}
	switch strings.ToLower(o.Format) {
	case "", FormatPNG:
		o.Format = FormatPNG
	case FormatJPEG, "jpg":
		o.Format = FormatJPEG
	default:
		return o, fmt.Errorf("unsupported image format %q (use png or jpeg)", o.Format)
	}
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Quality < 1 || o.Quality > 100 {
		return o, fmt.Errorf("quality must be between 1 and 100, got %d", o.Quality)
	}
	return o, nil
}

func (o Options) passthrough() bool {
	return o.Scale == 1 && o.Format == FormatPNG && len(o.Annotate) == 0
}

// Process applies opts to a PNG screenshot.
func Process(png []byte, opts Options) (Image, error) {
	opts, err := opts.normalized()
	if err != nil {
		return Image{}, err
	}

	if opts.passthrough() {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
		if err != nil {
			return Image{}, fmt.Errorf("decode screenshot: %w", err)
		}
		return Image{Data: png, MIMEType: "image/png", Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return Image{}, fmt.Errorf("decode screenshot: %w", err)
	}
	if len(opts.Annotate) > 0 {
		img = Annotate(img, opts.Annotate)
	}
	if opts.Scale < 1 {
		w := int(float64(img.Bounds().Dx()) * opts.Scale)
		if w < 1 {
			w = 1
		}
		img = imaging.Resize(img, w, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	mime := "image/png"
	if opts.Format == FormatJPEG {
		mime = "image/jpeg"
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	} else {
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return Image{}, fmt.Errorf("encode screenshot: %w", err)
	}
	b := img.Bounds()
	return Image{Data: buf.Bytes(), MIMEType: mime, Width: b.Dx(), Height: b.Dy()}, nil
}
