package leveler

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#abc", "#aabbcc", false},
		{"ABC", "#aabbcc", false},
		{"#12ab9F", "#12ab9f", false},
		{"white", "#ffffff", false},
		{"#12345", "", true},
		{"#gggggg", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHexToRGBA(t *testing.T) {
	fallback := color.RGBA{1, 2, 3, 4}
	assert.Equal(t, color.RGBA{0x12, 0x34, 0x56, 200}, HexToRGBA("#123456", 200, fallback))
	assert.Equal(t, fallback, HexToRGBA("nope", 200, fallback))
	assert.Equal(t, "#123456", RGBToHex(color.RGBA{0x12, 0x34, 0x56, 255}))
}

func TestContrastText(t *testing.T) {
	assert.Equal(t, color.RGBA{A: 255}, ContrastText(color.RGBA{250, 250, 250, 255}))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, ContrastText(color.RGBA{10, 10, 40, 255}))
}

func TestDominantColors(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{200, 16, 16, 255}}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, 3, 3), &image.Uniform{color.RGBA{16, 16, 200, 255}}, image.Point{}, draw.Src)

	got := DominantColors(img, 3)
	require.Len(t, got, 2)
	assert.Equal(t, "#cc1414", got[0])
	assert.Equal(t, "#1414cc", got[1])
}

func TestSetColors(t *testing.T) {
	svc, store, _ := newTestService(t)

	require.NoError(t, svc.SetColors("u1", CardProfile, SectionRep, []string{"#abc"}))
	require.NoError(t, svc.SetColors("u1", CardRank, SectionAll, []string{"#111111", "#222222"}))
	assert.ErrorIs(t, svc.SetColors("u1", CardRank, SectionBadge, []string{"#fff"}), ErrUnknownSection)
	assert.ErrorIs(t, svc.SetColors("u1", CardProfile, SectionInfo, []string{"bad"}), ErrInvalidColor)

	u, _ := store.User("u1")
	assert.Equal(t, "#aabbcc", u.ProfileColors.Rep)
	assert.Equal(t, "#111111", u.RankColors.Exp)
	assert.Equal(t, "#222222", u.RankColors.Info)

	require.NoError(t, svc.SetColors("u1", CardProfile, SectionRep, nil))
	u, _ = store.User("u1")
	assert.Empty(t, u.ProfileColors.Rep)
}
