package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ProcessedImage is a downscaled image ready for upload
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Config for image processing
type Config struct {
	MaxWidth  int // default 2000
	MaxHeight int // default 2000
	Quality   int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:  2000,
		MaxHeight: 2000,
		Quality:   85,
	}
}

// Processor downscales catalog and proof images before storage
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process decodes an image and resizes it if it exceeds the configured bounds
func (p *Processor) Process(reader io.Reader) (*ProcessedImage, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	if width <= p.config.MaxWidth && height <= p.config.MaxHeight {
		return &ProcessedImage{
			Data:        data,
			ContentType: mimeFromFormat(format),
			Width:       width,
			Height:      height,
		}, nil
	}

	resized := imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)

	// Oversized gif and webp come back as JPEG: there is no webp encoder,
	// and a resized animation frame has no reason to stay a gif.
	var buf bytes.Buffer
	contentType := "image/jpeg"
	switch format {
	case "png":
		err = png.Encode(&buf, resized)
		contentType = "image/png"
	default:
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.config.Quality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ProcessedImage{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       resized.Bounds().Dx(),
		Height:      resized.Bounds().Dy(),
	}, nil
}

func mimeFromFormat(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
