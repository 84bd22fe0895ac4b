package imagefinder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"testing"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResolve(t *testing.T) {
	lookup := func(id string) (*discordgo.User, error) {
		return &discordgo.User{ID: id, Avatar: "abc"}, nil
	}

	tests := []struct {
		name    string
		query   Query
		want    string
		wantErr bool
	}{
		{
			name: "attachment first",
			query: Query{
				Argument:    "https://example.com/x.png",
				Attachments: []*discordgo.MessageAttachment{{URL: "https://cdn.test/a.jpg", Filename: "a.jpg"}},
			},
			want: "https://cdn.test/a.jpg",
		},
		{
			name:  "link argument",
			query: Query{Argument: "<https://example.com/x.png>"},
			want:  "https://example.com/x.png",
		},
		{
			name:  "animated emoji",
			query: Query{Argument: "<a:party:123456>"},
			want:  "https://cdn.discordapp.com/emojis/123456.gif",
		},
		{
			name:  "static emoji",
			query: Query{Argument: "<:blob:42>"},
			want:  "https://cdn.discordapp.com/emojis/42.png",
		},
		{
			name: "recent messages",
			query: Query{Recent: []*discordgo.Message{
				{Content: "no image here"},
				{Embeds: []*discordgo.MessageEmbed{{Image: &discordgo.MessageEmbedImage{URL: "https://img.test/e.png"}}}},
			}},
			want: "https://img.test/e.png",
		},
		{
			name:    "nothing",
			query:   Query{Recent: []*discordgo.Message{{Content: "https://example.com/page.html"}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.query, lookup)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAvatar(t *testing.T) {
	lookup := func(id string) (*discordgo.User, error) {
		return &discordgo.User{ID: id, Avatar: "abc"}, nil
	}
	for _, arg := range []string{"<@123456789012345678>", "<@!123456789012345678>", "123456789012345678"} {
		got, err := Resolve(Query{Argument: arg}, lookup)
		require.NoError(t, err)
		assert.Contains(t, got, "/avatars/123456789012345678/abc")
	}
}

func TestFetchAndDecode(t *testing.T) {
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)
	client := httpx.New("images", httpx.WithHTTPClient(hc), httpx.WithRateLimit(100, 100))

	httpmock.RegisterResponder("GET", "https://img.test/ok.png", httpmock.NewBytesResponder(200, pngBytes(t, 4, 3)))
	httpmock.RegisterResponder("GET", "https://img.test/page", httpmock.NewStringResponder(200, "<html><body>hi</body></html>"))

	img, err := FetchImage(context.Background(), client, "https://img.test/ok.png")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 3), img.Bounds().Size())

	_, _, err = Fetch(context.Background(), client, "https://img.test/page")
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestToJPEGShrinks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 100))
	data, err := ToJPEG(img, 200)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 50), decoded.Bounds().Size())
	assert.Contains(t, DataURI(data), "data:image/jpeg;base64,")
}

func TestCustomEmojis(t *testing.T) {
	got := CustomEmojis("hola <:pepe:111> y <a:baile:222> otra vez <:pepe:111>")
	want := []Emoji{{ID: "111", Name: "pepe"}, {ID: "222", Name: "baile", Animated: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CustomEmojis() mismatch (-want +got):\n%s", diff)
	}
	if u := got[1].URL(); u != "https://cdn.discordapp.com/emojis/222.gif" {
		t.Errorf("URL() = %v, want %v", u, "https://cdn.discordapp.com/emojis/222.gif")
	}
}
