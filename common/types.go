// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds decoded pixel data pending a device texture upload.
type TextureStagingData struct {
	// Pixels is the tightly packed pixel data, row-major, Channels bytes per pixel.
	Pixels []byte
	// Width is the width of the image in pixels.
	Width int
	// Height is the height of the image in pixels.
	Height int
	// Channels is the number of bytes per pixel (3 for RGB, 4 for RGBA).
	Channels int
}

// Size returns the expected byte length of the pixel data.
func (t TextureStagingData) Size() int {
	return t.Width * t.Height * t.Channels
}

// DecodeImage decodes an image stream into RGBA staging data.
// Supports PNG, JPEG, BMP, WebP and TGA.
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - TextureStagingData: RGBA pixel data (4 channels)
//   - error: error if the stream could not be decoded
func DecodeImage(r io.Reader) (TextureStagingData, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return TextureStagingData{}, fmt.Errorf("decoded %s image is empty", format)
	}
	rgba := toRGBA(img)
	return TextureStagingData{
		Pixels:   rgba.Pix,
		Width:    rgba.Rect.Dx(),
		Height:   rgba.Rect.Dy(),
		Channels: 4,
	}, nil
}

// DecodeImageBytes decodes an in-memory encoded image into RGBA staging data.
func DecodeImageBytes(data []byte) (TextureStagingData, error) {
	if len(data) == 0 {
		return TextureStagingData{}, fmt.Errorf("image data is empty")
	}
	return DecodeImage(bytes.NewReader(data))
}

// DecodeImageFile opens and decodes an image file into RGBA staging data.
//
// Parameters:
//   - path: the file path of the image
//
// Returns:
//   - TextureStagingData: RGBA pixel data (4 channels)
//   - error: error if the file could not be opened or decoded
func DecodeImageFile(path string) (TextureStagingData, error) {
	file, err := os.Open(path)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	data, err := DecodeImage(file)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("texture file %s: %w", path, err)
	}
	return data, nil
}

// BuildMipChain produces the full mip chain for an RGBA image, level 0 first, halving each
// dimension (minimum 1) until a 1x1 level is reached. Each level is a bilinear downscale of
// the previous one.
//
// Parameters:
//   - pixels: RGBA pixel data for level 0
//   - width: level 0 width in pixels
//   - height: level 0 height in pixels
//
// Returns:
//   - [][]byte: RGBA pixel data for every level
func BuildMipChain(pixels []byte, width, height int) [][]byte {
	levels := [][]byte{pixels}
	src := &image.RGBA{Pix: pixels, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	for width > 1 || height > 1 {
		width = max(width/2, 1)
		height = max(height/2, 1)
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.BiLinear.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
		levels = append(levels, dst.Pix)
		src = dst
	}
	return levels
}

// MipLevelCount returns the number of levels in a full mip chain for the given size.
func MipLevelCount(width, height int) int {
	n := 1
	for width > 1 || height > 1 {
		width = max(width/2, 1)
		height = max(height/2, 1)
		n++
	}
	return n
}

// EncodeWebP writes RGBA pixel data as a lossless WebP image.
//
// Parameters:
//   - w: the destination writer
//   - pixels: RGBA pixel data, row-major, top row first
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - error: error if the pixel data is malformed or encoding fails
func EncodeWebP(w io.Writer, pixels []byte, width, height int) error {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return fmt.Errorf("invalid RGBA frame %dx%d with %d bytes", width, height, len(pixels))
	}
	img := &image.RGBA{Pix: pixels, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	return nil
}

// toRGBA converts any image to a zero-origin RGBA image.
func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}
