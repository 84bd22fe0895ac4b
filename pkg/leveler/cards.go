package leveler

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/metrics"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Card sizes in pixels
const (
	RankWidth     = 390
	RankHeight    = 100
	LevelupWidth  = 176
	LevelupHeight = 67
	ProfileWidth  = 340
	ProfileHeight = 390
)

var (
	defaultInfoColor  = color.RGBA{30, 30, 30, 200}
	defaultRepColor   = color.RGBA{92, 130, 203, 230}
	defaultBadgeColor = color.RGBA{128, 151, 165, 230}
	defaultExpColor   = color.RGBA{255, 255, 255, 230}
	defaultLevelColor = color.RGBA{255, 255, 255, 230}
)

// Renderer draws the leveler cards
type Renderer struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// NewRenderer parses the card fonts. fontPath may point at a TTF file replacing the regular font.
func NewRenderer(fontPath string) (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.WrapIf(err, "fuente regular")
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, errors.WrapIf(err, "fuente negrita")
	}
	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, errors.WrapIf(err, "leer fuente personalizada")
		}
		custom, err := truetype.Parse(data)
		if err != nil {
			return nil, errors.WrapIf(err, "fuente personalizada")
		}
		regular = custom
	}
	return &Renderer{regular: regular, bold: bold}, nil
}

func (r *Renderer) face(bold bool, size float64) font.Face {
	f := r.regular
	if bold {
		f = r.bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// cover scales img to fill w x h, cropping the overflow around the center
func cover(dc *gg.Context, img image.Image, x, y, w, h int) {
	if img == nil {
		return
	}
	b := img.Bounds()
	scale := float64(w) / float64(b.Dx())
	if s := float64(h) / float64(b.Dy()); s > scale {
		scale = s
	}
	nw := uint(float64(b.Dx())*scale + 0.5)
	nh := uint(float64(b.Dy())*scale + 0.5)
	scaled := resize.Resize(nw, nh, img, resize.Lanczos3)
	dc.Push()
	dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	dc.Clip()
	dc.DrawImageAnchored(scaled, x+w/2, y+h/2, 0.5, 0.5)
	dc.ResetClip()
	dc.Pop()
}

// circleImage draws img clipped to a circle of radius r centered at (cx, cy)
func circleImage(dc *gg.Context, img image.Image, cx, cy, r float64) {
	if img == nil {
		return
	}
	size := uint(2 * r)
	scaled := resize.Resize(size, size, img, resize.Lanczos3)
	dc.Push()
	dc.DrawCircle(cx, cy, r)
	dc.Clip()
	dc.DrawImageAnchored(scaled, int(cx), int(cy), 0.5, 0.5)
	dc.ResetClip()
	dc.Pop()
}

func setColor(dc *gg.Context, c color.RGBA) {
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

func sectionColor(hex string, alpha uint8, fallback color.RGBA) color.RGBA {
	if hex == "" {
		return fallback
	}
	return HexToRGBA(hex, alpha, fallback)
}

// progressBar draws a rounded bar filled to ratio
func progressBar(dc *gg.Context, x, y, w, h, ratio float64, fill color.RGBA) {
	dc.SetRGBA255(0, 0, 0, 120)
	dc.DrawRoundedRectangle(x, y, w, h, h/2)
	dc.Fill()
	if ratio <= 0 {
		return
	}
	fw := w * ratio
	if fw < h {
		fw = h
	}
	setColor(dc, fill)
	dc.DrawRoundedRectangle(x, y, fw, h, h/2)
	dc.Fill()
}

func encode(dc *gg.Context, kind string, start time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.WrapIf(err, "codificar "+kind)
	}
	metrics.ObserveSince(metrics.Get().ImageRender.WithLabelValues(kind), start)
	return buf.Bytes(), nil
}

// RankCard is the data shown on a rank card
type RankCard struct {
	User       *models.LevelerUser
	Name       string
	GuildID    string
	ServerRank int
	Background image.Image
	Avatar     image.Image
}

// Rank draws the 390x100 rank card
func (r *Renderer) Rank(d RankCard) ([]byte, error) {
	start := time.Now()
	dc := gg.NewContext(RankWidth, RankHeight)
	dc.SetRGB255(40, 40, 40)
	dc.Clear()
	cover(dc, d.Background, 0, 0, RankWidth, RankHeight)

	colors := d.User.RankColors
	info := sectionColor(colors.Info, 200, defaultInfoColor)
	setColor(dc, info)
	dc.DrawRoundedRectangle(90, 10, RankWidth-100, RankHeight-20, 8)
	dc.Fill()

	dc.SetRGBA255(255, 255, 255, 230)
	dc.DrawCircle(50, 50, 38)
	dc.Fill()
	circleImage(dc, d.Avatar, 50, 50, 35)

	text := ContrastText(info)
	setColor(dc, text)
	dc.SetFontFace(r.face(true, 18))
	dc.DrawStringAnchored(Shorten(d.Name, 20), 102, 32, 0, 0)

	stats := d.User.Servers[d.GuildID]
	dc.SetFontFace(r.face(false, 12))
	dc.DrawStringAnchored(fmt.Sprintf("NIVEL %d", stats.Level), RankWidth-20, 32, 1, 0)
	dc.DrawStringAnchored(fmt.Sprintf("Rango servidor #%d", d.ServerRank), 102, 52, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("Créditos: %d", d.User.Credits), RankWidth-20, 52, 1, 0)

	exp := sectionColor(colors.Exp, 230, defaultExpColor)
	progressBar(dc, 102, 62, RankWidth-124, 14, Progress(stats), exp)
	setColor(dc, text)
	dc.SetFontFace(r.face(false, 10))
	dc.DrawStringAnchored(fmt.Sprintf("%d/%d", stats.CurrentExp, RequiredExp(stats.Level)), RankWidth/2+45, 84, 0.5, 1)

	return encode(dc, "rank", start)
}

// LevelupCard is the data shown on a level-up card
type LevelupCard struct {
	User       *models.LevelerUser
	Level      int
	Background image.Image
	Avatar     image.Image
}

// Levelup draws the 176x67 level-up card
func (r *Renderer) Levelup(d LevelupCard) ([]byte, error) {
	start := time.Now()
	dc := gg.NewContext(LevelupWidth, LevelupHeight)
	dc.SetRGB255(40, 40, 40)
	dc.Clear()
	cover(dc, d.Background, 0, 0, LevelupWidth, LevelupHeight)

	dc.SetRGBA255(0, 0, 0, 110)
	dc.DrawRoundedRectangle(4, 4, LevelupWidth-8, LevelupHeight-8, 6)
	dc.Fill()

	circleImage(dc, d.Avatar, 34, LevelupHeight/2, 24)

	level := sectionColor(d.User.LevelupColors.Level, 230, defaultLevelColor)
	setColor(dc, level)
	dc.SetFontFace(r.face(true, 14))
	dc.DrawStringAnchored("¡SUBE DE NIVEL!", 116, 26, 0.5, 0.5)
	dc.SetFontFace(r.face(true, 18))
	dc.DrawStringAnchored(fmt.Sprintf("NV %d", d.Level), 116, 46, 0.5, 0.5)

	return encode(dc, "levelup", start)
}

// ProfileCard is the data shown on a profile card
type ProfileCard struct {
	User         *models.LevelerUser
	Name         string
	GuildID      string
	ServerRank   int
	GlobalRank   int
	BadgeType    string
	GlobalLevels bool
	Background   image.Image
	Avatar       image.Image
	// BadgeImages holds the downloaded images keyed by badge bg_img URL
	BadgeImages map[string]image.Image
}

// Profile draws the 340x390 profile card
func (r *Renderer) Profile(d ProfileCard) ([]byte, error) {
	start := time.Now()
	u := d.User
	colors := u.ProfileColors
	dc := gg.NewContext(ProfileWidth, ProfileHeight)
	dc.SetRGB255(40, 40, 40)
	dc.Clear()
	cover(dc, d.Background, 0, 0, ProfileWidth, 160)

	info := sectionColor(colors.Info, 200, defaultInfoColor)
	setColor(dc, info)
	dc.DrawRectangle(0, 150, ProfileWidth, ProfileHeight-150)
	dc.Fill()

	dc.SetRGBA255(255, 255, 255, 255)
	dc.DrawCircle(70, 150, 52)
	dc.Fill()
	circleImage(dc, d.Avatar, 70, 150, 48)

	text := ContrastText(info)
	setColor(dc, text)
	dc.SetFontFace(r.face(true, 20))
	dc.DrawStringAnchored(Shorten(d.Name, 18), 132, 172, 0, 0)
	if u.Title != "" {
		dc.SetFontFace(r.face(false, 12))
		dc.DrawStringAnchored(u.Title, 132, 190, 0, 0)
	}

	rep := sectionColor(colors.Rep, 230, defaultRepColor)
	setColor(dc, rep)
	dc.DrawRoundedRectangle(14, 210, 112, 30, 6)
	dc.Fill()
	setColor(dc, ContrastText(rep))
	dc.SetFontFace(r.face(true, 14))
	dc.DrawStringAnchored(fmt.Sprintf("+%d rep", u.Rep), 70, 225, 0.5, 0.5)

	setColor(dc, text)
	dc.SetFontFace(r.face(false, 12))
	stats := u.Servers[d.GuildID]
	level := stats.Level
	if d.GlobalLevels {
		level = FindLevel(u.TotalExp)
	}
	lines := []string{
		fmt.Sprintf("Rango servidor: #%d", d.ServerRank),
		fmt.Sprintf("Rango global: #%d", d.GlobalRank),
		fmt.Sprintf("Experiencia total: %d", u.TotalExp),
		fmt.Sprintf("Créditos: %d", u.Credits),
	}
	for i, line := range lines {
		dc.DrawStringAnchored(line, 140, 218+float64(i)*16, 0, 0)
	}

	dc.SetFontFace(r.face(false, 11))
	wrapped := dc.WordWrap(u.Info, ProfileWidth-28)
	if len(wrapped) > 4 {
		wrapped = wrapped[:4]
	}
	dc.DrawStringAnchored("INFO", 14, 292, 0, 0)
	for i, line := range wrapped {
		dc.DrawStringAnchored(line, 14, 308+float64(i)*14, 0, 0)
	}

	exp := sectionColor(colors.Exp, 230, defaultExpColor)
	progressBar(dc, 14, 364, ProfileWidth-90, 14, Progress(stats), exp)
	setColor(dc, text)
	dc.SetFontFace(r.face(true, 12))
	dc.DrawStringAnchored(fmt.Sprintf("NV %d", level), ProfileWidth-14, 371, 1, 0.5)

	r.drawBadges(dc, d)
	return encode(dc, "profile", start)
}

// drawBadges lays the top profile badges in the header corner
func (r *Renderer) drawBadges(dc *gg.Context, d ProfileCard) {
	badges := ProfileBadges(d.User, 6)
	if len(badges) == 0 {
		return
	}
	col := sectionColor(d.User.ProfileColors.BadgeCol, 230, defaultBadgeColor)
	setColor(dc, col)
	dc.DrawRoundedRectangle(ProfileWidth-118, 8, 110, 76, 8)
	dc.Fill()

	for i, b := range badges {
		x := float64(ProfileWidth-100) + float64(i%3)*36
		y := 28 + float64(i/3)*36
		border := HexToRGBA(b.Border, 255, color.RGBA{255, 255, 255, 255})
		img := d.BadgeImages[b.BgImg]
		switch d.BadgeType {
		case BadgeBars, BadgeSquares, BadgeTags:
			setColor(dc, border)
			dc.DrawRectangle(x-15, y-15, 30, 30)
			dc.Fill()
			if img != nil {
				dc.DrawImageAnchored(resize.Resize(26, 26, img, resize.Lanczos3), int(x), int(y), 0.5, 0.5)
			}
		default:
			setColor(dc, border)
			dc.DrawCircle(x, y, 15)
			dc.Fill()
			if img != nil {
				circleImage(dc, img, x, y, 13)
			} else if strings.HasPrefix(b.BgImg, "#") {
				setColor(dc, HexToRGBA(b.BgImg, 255, border))
				dc.DrawCircle(x, y, 13)
				dc.Fill()
			}
		}
	}
}
