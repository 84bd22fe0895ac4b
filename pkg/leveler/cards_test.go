package leveler

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func TestRenderCards(t *testing.T) {
	r, err := NewRenderer("")
	require.NoError(t, err)

	u := NewUser("u1", "alice", DefaultBackgrounds())
	u.Servers["g1"] = models.ServerStats{Level: 3, CurrentExp: 100}
	u.Badges["star_g1"] = models.Badge{BadgeName: "star", BgImg: "#ffcc00", Border: "#000000", PriorityNum: 2}
	bg := solid(800, 300, color.RGBA{30, 90, 160, 255})
	avatar := solid(128, 128, color.RGBA{200, 200, 200, 255})

	tests := []struct {
		name   string
		render func() ([]byte, error)
		w, h   int
	}{
		{"rank", func() ([]byte, error) {
			return r.Rank(RankCard{User: u, Name: "alice", GuildID: "g1", ServerRank: 1, Background: bg, Avatar: avatar})
		}, RankWidth, RankHeight},
		{"levelup", func() ([]byte, error) {
			return r.Levelup(LevelupCard{User: u, Level: 3, Background: bg, Avatar: avatar})
		}, LevelupWidth, LevelupHeight},
		{"profile", func() ([]byte, error) {
			return r.Profile(ProfileCard{User: u, Name: "alice", GuildID: "g1", ServerRank: 1, GlobalRank: 4, BadgeType: BadgeCircles, Background: bg, Avatar: avatar})
		}, ProfileWidth, ProfileHeight},
		{"profile without images", func() ([]byte, error) {
			return r.Profile(ProfileCard{User: u, Name: "alice", GuildID: "g1", BadgeType: BadgeBars})
		}, ProfileWidth, ProfileHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.render()
			require.NoError(t, err)
			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			if got := img.Bounds().Size(); got != image.Pt(tt.w, tt.h) {
				t.Errorf("size = %v, want %dx%d", got, tt.w, tt.h)
			}
		})
	}
}

func TestNewRendererMissingFont(t *testing.T) {
	if _, err := NewRenderer("/does/not/exist.ttf"); err == nil {
		t.Error("NewRenderer() error = nil, want error")
	}
}
