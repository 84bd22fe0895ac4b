// Package imagefinder downloads and decodes images, and locates the image a
// command refers to: an attachment, a link, a custom emoji, a user avatar or
// the latest image posted in the channel.
package imagefinder

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"regexp"
	"strings"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/bwmarrin/discordgo"
	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned when the downloaded data is not a supported image
const ErrNotImage = errors.Sentinel("el archivo no es una imagen válida")

// ErrNoImage is returned when no image could be found for a command
const ErrNoImage = errors.Sentinel("no encontré ninguna imagen")

var (
	urlRe         = regexp.MustCompile(`https?://\S+`)
	customEmojiRe = regexp.MustCompile(`<(a?):([A-Za-z0-9_]+):(\d+)>`)
	mentionRe     = regexp.MustCompile(`^<@!?(\d+)>$`)
	snowflakeRe   = regexp.MustCompile(`^\d{15,21}$`)
)

// Fetch downloads url and checks it is an image. It returns the data and its MIME type.
func Fetch(ctx context.Context, client *httpx.Client, url string) ([]byte, string, error) {
	data, err := client.GetBytes(ctx, url, nil)
	if err != nil {
		return nil, "", err
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, mime.String(), errors.WithStack(ErrNotImage)
	}
	return data, mime.String(), nil
}

// Decode decodes png, jpeg, gif, webp and bmp images
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapIf(ErrNotImage, err.Error())
	}
	return img, nil
}

// FetchImage downloads and decodes url
func FetchImage(ctx context.Context, client *httpx.Client, url string) (image.Image, error) {
	data, _, err := Fetch(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// ToJPEG re-encodes img as JPEG, shrinking it so neither side exceeds maxSide
func ToJPEG(img image.Image, maxSide int) ([]byte, error) {
	b := img.Bounds()
	if maxSide > 0 && (b.Dx() > maxSide || b.Dy() > maxSide) {
		if b.Dx() >= b.Dy() {
			img = resize.Resize(uint(maxSide), 0, img, resize.Lanczos3)
		} else {
			img = resize.Resize(0, uint(maxSide), img, resize.Lanczos3)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, errors.WrapIf(err, "codificar jpeg")
	}
	return buf.Bytes(), nil
}

// DataURI encodes data as a base64 data URI
func DataURI(data []byte) string {
	return "data:" + mimetype.Detect(data).String() + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// EmojiURL returns the CDN URL of a custom emoji
func EmojiURL(id string, animated bool) string {
	ext := "png"
	if animated {
		ext = "gif"
	}
	return fmt.Sprintf("https://cdn.discordapp.com/emojis/%s.%s", id, ext)
}

// CustomEmoji extracts the first custom emoji of s
func CustomEmoji(s string) (id, name string, animated bool, ok bool) {
	m := customEmojiRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false, false
	}
	return m[3], m[2], m[1] == "a", true
}

// Emoji is a custom emoji found in text
type Emoji struct {
	ID       string
	Name     string
	Animated bool
}

// URL returns the CDN URL of the emoji
func (e Emoji) URL() string { return EmojiURL(e.ID, e.Animated) }

// CustomEmojis extracts every distinct custom emoji of s, in order
func CustomEmojis(s string) []Emoji {
	var out []Emoji
	seen := map[string]bool{}
	for _, m := range customEmojiRe.FindAllStringSubmatch(s, -1) {
		if seen[m[3]] {
			continue
		}
		seen[m[3]] = true
		out = append(out, Emoji{ID: m[3], Name: m[2], Animated: m[1] == "a"})
	}
	return out
}

// UserLookup resolves a user ID to a user, used for avatar arguments
type UserLookup func(id string) (*discordgo.User, error)

// Query is what a command received
type Query struct {
	// Argument is the optional text argument: a link, emoji, mention or user ID
	Argument    string
	Attachments []*discordgo.MessageAttachment
	// Recent are the latest channel messages, newest first
	Recent []*discordgo.Message
}

// Resolve picks the image URL for q
func Resolve(q Query, lookup UserLookup) (string, error) {
	for _, a := range q.Attachments {
		if isImageAttachment(a) {
			return a.URL, nil
		}
	}

	arg := strings.TrimSpace(q.Argument)
	if arg != "" {
		if u := urlRe.FindString(arg); u != "" {
			return strings.Trim(u, "<>"), nil
		}
		if id, _, animated, ok := CustomEmoji(arg); ok {
			return EmojiURL(id, animated), nil
		}
		userID := ""
		if m := mentionRe.FindStringSubmatch(arg); m != nil {
			userID = m[1]
		} else if snowflakeRe.MatchString(arg) {
			userID = arg
		}
		if userID != "" && lookup != nil {
			user, err := lookup(userID)
			if err == nil && user != nil {
				return user.AvatarURL("1024"), nil
			}
		}
	}

	for _, m := range q.Recent {
		if u := FromMessage(m); u != "" {
			return u, nil
		}
	}
	return "", errors.WithStack(ErrNoImage)
}

// FromMessage returns the first image of a message: attachment, embed image, or link
func FromMessage(m *discordgo.Message) string {
	if m == nil {
		return ""
	}
	for _, a := range m.Attachments {
		if isImageAttachment(a) {
			return a.URL
		}
	}
	for _, e := range m.Embeds {
		if e.Image != nil && e.Image.URL != "" {
			return e.Image.URL
		}
		if e.Thumbnail != nil && e.Thumbnail.URL != "" {
			return e.Thumbnail.URL
		}
	}
	if u := urlRe.FindString(m.Content); u != "" && looksLikeImage(u) {
		return u
	}
	return ""
}

func isImageAttachment(a *discordgo.MessageAttachment) bool {
	if a == nil {
		return false
	}
	if strings.HasPrefix(a.ContentType, "image/") {
		return true
	}
	return (a.Width > 0 && a.Height > 0) || looksLikeImage(a.Filename)
}

func looksLikeImage(s string) bool {
	s = strings.ToLower(s)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"} {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}
