package captcha

import (
	"bytes"
	"math/rand"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/metrics"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomonobold"
)

// Image size in pixels
const (
	ImageWidth  = 320
	ImageHeight = 110
)

var captchaFont *truetype.Font

func init() {
	f, err := truetype.Parse(gomonobold.TTF)
	if err != nil {
		panic(err)
	}
	captchaFont = f
}

// RenderImage draws code on a noisy background. Wheezy images use less noise and no rotation.
func RenderImage(code string, wheezy bool, rng *rand.Rand) ([]byte, error) {
	start := time.Now()
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	dc := gg.NewContext(ImageWidth, ImageHeight)
	dc.SetRGB255(240-rng.Intn(30), 240-rng.Intn(30), 240-rng.Intn(30))
	dc.Clear()

	noise := 14
	dots := 600
	if wheezy {
		noise = 5
		dots = 150
	}
	for i := 0; i < dots; i++ {
		dc.SetRGBA255(rng.Intn(200), rng.Intn(200), rng.Intn(200), 120)
		dc.DrawPoint(float64(rng.Intn(ImageWidth)), float64(rng.Intn(ImageHeight)), 1)
		dc.Fill()
	}

	size := 44.0
	if wheezy {
		size = 40
	}
	dc.SetFontFace(truetype.NewFace(captchaFont, &truetype.Options{Size: size}))
	step := float64(ImageWidth-30) / float64(len(code))
	for i, ch := range code {
		x := 15 + step*float64(i) + step/2
		y := float64(ImageHeight)/2 + float64(rng.Intn(16)-8)
		dc.Push()
		if !wheezy {
			dc.RotateAbout(gg.Radians(float64(rng.Intn(50)-25)), x, y)
		}
		dc.SetRGB255(rng.Intn(120), rng.Intn(120), rng.Intn(120))
		dc.DrawStringAnchored(string(ch), x, y, 0.5, 0.5)
		dc.Pop()
	}

	for i := 0; i < noise; i++ {
		dc.SetRGBA255(rng.Intn(150), rng.Intn(150), rng.Intn(150), 180)
		dc.SetLineWidth(1 + rng.Float64()*2)
		dc.DrawLine(
			float64(rng.Intn(ImageWidth)), float64(rng.Intn(ImageHeight)),
			float64(rng.Intn(ImageWidth)), float64(rng.Intn(ImageHeight)),
		)
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.WrapIf(err, "codificar captcha")
	}
	kind := TypeImage
	if wheezy {
		kind = TypeWheezy
	}
	metrics.ObserveSince(metrics.Get().ImageRender.WithLabelValues("captcha_"+kind), start)
	return buf.Bytes(), nil
}
