// Package imaging converts decoded PDF image data into standalone PNG
// files. It deliberately supports a narrow set of pixel layouts and drops
// anything else rather than guessing, so malformed or exotic images never
// produce corrupt output.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/ccitt"
)

// ErrUnsupportedFormat reports pixel data whose length does not match any
// supported layout for the stated dimensions. Callers treat it as "no
// image produced".
var ErrUnsupportedFormat = errors.New("imaging: unsupported pixel format")

// CCITTParams holds the decode parameters for CCITT fax compressed data.
type CCITTParams struct {
	// K selects the coding scheme: negative for Group 4, zero or
	// positive for Group 3.
	K int

	// Columns is the image width in pixels.
	Columns int

	// Rows is the image height in pixels.
	Rows int

	// BlackIs1 inverts the bit interpretation.
	BlackIs1 bool
}

// Raster is an embedded image as handed over by the PDF decoding layer:
// pixel or compressed data plus the parameters needed to interpret it.
type Raster struct {
	// Data holds raw pixel data, or compressed data when Filter names an
	// image-compression filter.
	Data []byte

	// Width and Height are the pixel dimensions.
	Width  int
	Height int

	// ColorSpace is the device color space name (DeviceGray, DeviceRGB,
	// DeviceCMYK). Only used for raw pixel data.
	ColorSpace string

	// BitsPerComponent is the bit depth per color component.
	BitsPerComponent int

	// Filter names the image-compression filter still applied to Data:
	// "DCTDecode", "CCITTFaxDecode", or empty for raw pixels.
	Filter string

	// CCITT holds fax decode parameters when Filter is CCITTFaxDecode.
	CCITT CCITTParams
}

// PNG converts the raster to a standalone PNG file. Raw pixel data in a
// non-RGB color space returns ErrUnsupportedFormat: a DeviceCMYK buffer
// has the same byte length as RGBA and would silently encode as garbage.
func (r *Raster) PNG() ([]byte, error) {
	switch r.Filter {
	case "DCTDecode":
		return jpegToPNG(r.Data)
	case "CCITTFaxDecode":
		return ccittToPNG(r.Data, r.Width, r.Height, r.CCITT)
	case "":
		if !rgbColorSpace(r.ColorSpace) {
			return nil, ErrUnsupportedFormat
		}
		return EncodePNG(r.Data, r.Width, r.Height)
	default:
		return nil, fmt.Errorf("imaging: unsupported filter %q", r.Filter)
	}
}

// rgbColorSpace reports whether raw pixel data in the named color space is
// safe to hand to EncodePNG. An absent name is accepted; the byte-length
// check still guards the layout.
func rgbColorSpace(name string) bool {
	return name == "" || name == "DeviceRGB"
}

// EncodePNG converts a raw pixel buffer to PNG bytes. The buffer must be
// row-major RGB24 or RGBA32 for the given dimensions; RGB is expanded to
// RGBA with full opacity. Any other length returns ErrUnsupportedFormat.
func EncodePNG(data []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrUnsupportedFormat
	}

	pixels := width * height
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	switch len(data) {
	case pixels * 3:
		for i := 0; i < pixels; i++ {
			src := i * 3
			dst := i * 4
			img.Pix[dst+0] = data[src+0]
			img.Pix[dst+1] = data[src+1]
			img.Pix[dst+2] = data[src+2]
			img.Pix[dst+3] = 255
		}
	case pixels * 4:
		copy(img.Pix, data)
	default:
		return nil, ErrUnsupportedFormat
	}

	return encode(img)
}

// jpegToPNG re-encodes JPEG-compressed image data as PNG.
func jpegToPNG(data []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: jpeg decode failed: %w", err)
	}
	return encode(img)
}

// ccittToPNG decodes CCITT Group 3/4 fax data to a grayscale PNG.
// K selects the subformat and BlackIs1 maps to the decoder's Invert
// option; PDF data uses MSB bit order.
func ccittToPNG(data []byte, width, height int, params CCITTParams) ([]byte, error) {
	columns := params.Columns
	if columns == 0 {
		columns = width
	}
	rows := params.Rows
	if rows == 0 {
		rows = height
	}

	sf := ccitt.Group3
	if params.K < 0 {
		sf = ccitt.Group4
	}

	opts := &ccitt.Options{Invert: params.BlackIs1}
	reader := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, opts)
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("imaging: ccitt decode failed: %w", err)
	}

	return bilevelToPNG(decoded, columns, rows)
}

// bilevelToPNG expands packed 1-bit rows into an 8-bit grayscale PNG.
func bilevelToPNG(data []byte, width, height int) ([]byte, error) {
	bytesPerRow := (width + 7) / 8
	if len(data) < bytesPerRow*height {
		return nil, ErrUnsupportedFormat
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		rowStart := y * bytesPerRow
		for x := 0; x < width; x++ {
			bit := (data[rowStart+x/8] >> (7 - x%8)) & 1
			// 0 is black, 1 is white.
			var v uint8
			if bit != 0 {
				v = 255
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	return encode(img)
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imaging: png encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
