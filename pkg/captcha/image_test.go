package captcha

import (
	"bytes"
	"image/png"
	"math/rand"
	"testing"
)

func TestRenderImage(t *testing.T) {
	for _, wheezy := range []bool{false, true} {
		data, err := RenderImage("ABCD2345", wheezy, rand.New(rand.NewSource(1)))
		if err != nil {
			t.Fatalf("RenderImage(wheezy=%v) error = %v", wheezy, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("png.Decode() error = %v", err)
		}
		if b := img.Bounds(); b.Dx() != ImageWidth || b.Dy() != ImageHeight {
			t.Errorf("image size = %dx%d, want %dx%d", b.Dx(), b.Dy(), ImageWidth, ImageHeight)
		}
	}
}
