package leveler

import (
	"context"
	"image"
	"strings"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/PancyStudios/CogsBotGo/pkg/imagefinder"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// Assets downloads backgrounds, avatars and badge images for the cards.
// Every decoded image stays cached for half an hour.
type Assets struct {
	http  *httpx.Client
	cache *cache.Cache
}

// NewAssets creates a loader using client
func NewAssets(client *httpx.Client) *Assets {
	return &Assets{http: client, cache: cache.New(30*time.Minute, 10*time.Minute)}
}

// Load fetches every URL in parallel. Failed or non http URLs yield nil images,
// which the renderer skips.
func (a *Assets) Load(ctx context.Context, urls ...string) []image.Image {
	out := make([]image.Image, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, u := range urls {
		if !strings.HasPrefix(u, "http") {
			continue
		}
		if img, ok := a.cache.Get(u); ok {
			out[i] = img.(image.Image)
			continue
		}
		g.Go(func() error {
			img, err := imagefinder.FetchImage(ctx, a.http, u)
			if err != nil {
				logger.Debug("No pude descargar "+u+": "+err.Error(), "Leveler")
				return nil
			}
			out[i] = img
			a.cache.SetDefault(u, img)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ProfileAssets loads everything a profile card needs
func (a *Assets) ProfileAssets(ctx context.Context, d *ProfileCard, avatarURL string) {
	badges := ProfileBadges(d.User, 6)
	urls := []string{d.User.ProfileBackground, avatarURL}
	for _, b := range badges {
		urls = append(urls, b.BgImg)
	}
	imgs := a.Load(ctx, urls...)
	d.Background, d.Avatar = imgs[0], imgs[1]
	d.BadgeImages = make(map[string]image.Image, len(badges))
	for i, b := range badges {
		if img := imgs[i+2]; img != nil {
			d.BadgeImages[b.BgImg] = img
		}
	}
}
