// Package imaging normalises photos before they are stored: the format is
// sniffed, oversized images are downscaled and everything is re-encoded as
// JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored photos.
const MaxDimension = 1024

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// DefaultMaxBytes is the largest accepted upload.
const DefaultMaxBytes = 2 << 20

// OutputMIME is the content type of every processed photo.
const OutputMIME = "image/jpeg"

var (
	// ErrUnsupportedFormat is returned for anything other than JPEG or PNG.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned when the input exceeds the size limit.
	ErrTooLarge = errors.New("image exceeds size limit")
)

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a processed image.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process reads at most maxBytes (DefaultMaxBytes when <= 0), validates the
// format by sniffing, downscales past MaxDimension and re-encodes as JPEG.
func Process(r io.Reader, maxBytes int64) (*Photo, error) {
	data, err := ReadLimited(r, maxBytes)
	if err != nil {
		return nil, err
	}

	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("%w: %s (only JPEG and PNG accepted)", ErrUnsupportedFormat, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), MIME: OutputMIME, Width: b.Dx(), Height: b.Dy()}, nil
}

// ReadLimited reads r fully, failing with ErrTooLarge past maxBytes.
func ReadLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

// downscale resizes img with Catmull-Rom so neither side exceeds maxDim,
// preserving the aspect ratio. Smaller images are returned unchanged.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
