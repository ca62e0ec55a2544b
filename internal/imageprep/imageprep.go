// Package imageprep normalizes uploaded invoice photos before they are sent
// to the model. Phone cameras produce images far larger than extraction
// needs, so oversized uploads are downscaled and re-encoded.
package imageprep

import (
	"bytes"

	"github.com/disintegration/imaging"
)

const (
	// maxDimension bounds the longer side of the prepared image.
	maxDimension = 2000

	jpegQuality = 90
)

// Prepare returns the image bytes to send to the model and their MIME type.
//
// Images that decode and exceed maxDimension on either side are rotated
// per their EXIF orientation, scaled down to fit, and re-encoded as JPEG.
// Everything else, including data that does not decode as an image, passes
// through untouched. Prepare never fails; the model call decides whether
// the bytes are usable.
func Prepare(data []byte, mimeType string) ([]byte, string) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data, mimeType
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return data, mimeType
	}

	resized := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return data, mimeType
	}
	return buf.Bytes(), "image/jpeg"
}
