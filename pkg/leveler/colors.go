package leveler

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/PancyStudios/CogsBotGo/pkg/models"
)

// Card kinds
const (
	CardProfile = "profile"
	CardRank    = "rank"
	CardLevelup = "levelup"
)

// Color sections, plus "all"
const (
	SectionExp   = "exp"
	SectionRep   = "rep"
	SectionBadge = "badge"
	SectionInfo  = "info"
	SectionLevel = "level"
	SectionAll   = "all"
)

// cardSections lists the sections each card lets users recolor
var cardSections = map[string][]string{
	CardProfile: {SectionExp, SectionRep, SectionBadge, SectionInfo},
	CardRank:    {SectionExp, SectionInfo},
	CardLevelup: {SectionLevel},
}

// Sections returns the colorable sections of card
func Sections(card string) []string {
	return cardSections[card]
}

var namedColors = map[string]string{
	"white": "#ffffff",
	"black": "#000000",
}

// ParseHex normalizes a "#rgb" or "#rrggbb" color to "#rrggbb". Named colors are accepted.
func ParseHex(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if named, ok := namedColors[s]; ok {
		return named, nil
	}
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return "", ErrInvalidColor
	}
	if _, err := strconv.ParseUint(h, 16, 32); err != nil {
		return "", ErrInvalidColor
	}
	return "#" + h, nil
}

// HexToRGBA converts a "#rrggbb" color, with alpha a. Invalid input yields fallback.
func HexToRGBA(hex string, a uint8, fallback color.RGBA) color.RGBA {
	norm, err := ParseHex(hex)
	if err != nil {
		return fallback
	}
	v, _ := strconv.ParseUint(norm[1:], 16, 32)
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: a}
}

// RGBToHex formats c as "#rrggbb"
func RGBToHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// Luminance returns the relative luminance of c, between 0 and 1
func Luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return (0.2126*float64(r>>8) + 0.7152*float64(g>>8) + 0.0722*float64(b>>8)) / 255
}

// ContrastText returns black or white, whichever reads better on bg
func ContrastText(bg color.Color) color.RGBA {
	if Luminance(bg) > 0.5 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

// DominantColors returns up to n of the most frequent colors in img, quantized to 32 levels per channel
func DominantColors(img image.Image, n int) []string {
	b := img.Bounds()
	step := 1
	if px := b.Dx() * b.Dy(); px > 40000 {
		step = px / 40000
	}
	counts := map[uint32]int{}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i++
			if i%step != 0 {
				continue
			}
			r, g, bl, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			key := (r>>11)<<10 | (g>>11)<<5 | bl>>11
			counts[key]++
		}
	}
	keys := make([]uint32, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		c := color.RGBA{
			R: uint8((k>>10)&31)<<3 | 4,
			G: uint8((k>>5)&31)<<3 | 4,
			B: uint8(k&31)<<3 | 4,
			A: 255,
		}
		out = append(out, RGBToHex(c))
	}
	return out
}

func colorsOf(u *models.LevelerUser, card string) *models.CardColors {
	switch card {
	case CardProfile:
		return &u.ProfileColors
	case CardRank:
		return &u.RankColors
	case CardLevelup:
		return &u.LevelupColors
	}
	return nil
}

func sectionField(c *models.CardColors, section string) *string {
	switch section {
	case SectionExp:
		return &c.Exp
	case SectionRep:
		return &c.Rep
	case SectionBadge:
		return &c.BadgeCol
	case SectionInfo:
		return &c.Info
	case SectionLevel:
		return &c.Level
	}
	return nil
}

// SetColors stores colors for section of card. For SectionAll, values are
// applied to the card sections in order; a single value is used for all of
// them. An empty value restores the default.
func (s *Service) SetColors(userID, card, section string, values []string) error {
	valid := cardSections[card]
	if valid == nil {
		return ErrUnknownSection
	}
	targets := []string{section}
	if section == SectionAll {
		targets = valid
	} else {
		found := false
		for _, v := range valid {
			if v == section {
				found = true
			}
		}
		if !found {
			return ErrUnknownSection
		}
	}
	if len(values) == 0 {
		values = []string{""}
	}

	_, err := s.UpdateUser(userID, "", "", func(u *models.LevelerUser) error {
		colors := colorsOf(u, card)
		for i, target := range targets {
			v := values[len(values)-1]
			if i < len(values) {
				v = values[i]
			}
			if v != "" {
				norm, err := ParseHex(v)
				if err != nil {
					return err
				}
				v = norm
			}
			*sectionField(colors, target) = v
		}
		return nil
	})
	return err
}
