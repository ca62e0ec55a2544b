package imageprep

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 100 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.Black)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestPrepare_DownscalesOversizedImage(t *testing.T) {
	data := encodePNG(t, 4000, 2000)

	out, mime := Prepare(data, "image/png")
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", mime)
	}

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding prepared image: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 2000 || h != 1000 {
		t.Errorf("prepared size = %dx%d, want 2000x1000", w, h)
	}
}

func TestPrepare_KeepsSmallImage(t *testing.T) {
	data := encodePNG(t, 800, 600)

	out, mime := Prepare(data, "image/png")
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if !bytes.Equal(out, data) {
		t.Error("small image should pass through byte for byte")
	}
}

func TestPrepare_PassesThroughUndecodableData(t *testing.T) {
	data := []byte("not an image at all")

	out, mime := Prepare(data, "application/octet-stream")
	if mime != "application/octet-stream" {
		t.Errorf("mime = %q, want unchanged", mime)
	}
	if !bytes.Equal(out, data) {
		t.Error("undecodable data should pass through byte for byte")
	}
}

func TestPrepare_TallImageFitsBothSides(t *testing.T) {
	data := encodePNG(t, 1000, 5000)

	out, _ := Prepare(data, "image/png")
	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding prepared image: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 400 || h != 2000 {
		t.Errorf("prepared size = %dx%d, want 400x2000", w, h)
	}
}
