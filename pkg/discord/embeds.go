package discord

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Embed colors
const (
	ColorInfo    = 0x3498db
	ColorSuccess = 0x2ecc71
	ColorWarn    = 0xf1c40f
	ColorError   = 0xe74c3c
)

// Discord message limits
const (
	MaxMessageLength     = 2000
	MaxDescriptionLength = 4096
	MaxFieldLength       = 1024
)

// ErrorEmbed is the red embed used for failed commands
func ErrorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: "❌ " + description, Color: ColorError}
}

// SuccessEmbed is the green embed used for completed commands
func SuccessEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Description: "✅ " + description, Color: ColorSuccess}
}

// DisplayName prefers the member nickname, then the global name
func DisplayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u == nil && m != nil {
		u = m.User
	}
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Truncate cuts s to max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

// ChunkLines groups lines into blocks of at most max characters. A single
// longer line is split by runes.
func ChunkLines(lines []string, max int) []string {
	var (
		out []string
		b   strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for _, line := range lines {
		for utf8.RuneCountInString(line) > max {
			flush()
			r := []rune(line)
			out = append(out, string(r[:max]))
			line = string(r[max:])
		}
		if b.Len() > 0 && utf8.RuneCountInString(b.String())+1+utf8.RuneCountInString(line) > max {
			flush()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	flush()
	return out
}

// TextPages builds one embed per chunk of lines, numbering them in the footer
func TextPages(title string, color int, lines []string) []*discordgo.MessageEmbed {
	chunks := ChunkLines(lines, 2000)
	pages := make([]*discordgo.MessageEmbed, len(chunks))
	for i, chunk := range chunks {
		pages[i] = &discordgo.MessageEmbed{
			Title:       title,
			Description: chunk,
			Color:       color,
		}
		if len(chunks) > 1 {
			pages[i].Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Página %d de %d", i+1, len(chunks))}
		}
	}
	return pages
}

// YesNo renders a boolean setting
func YesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// FailureMessage turns err into the text shown to users. Sentinel errors are
// already written for them; anything else is logged under prefix and hidden.
func FailureMessage(err error, prefix string) string {
	var sentinel errors.Sentinel
	if errors.As(err, &sentinel) {
		r := []rune(string(sentinel))
		r[0] = unicode.ToUpper(r[0])
		return string(r) + "."
	}
	logger.Error(err.Error(), prefix)
	return "Ocurrió un error inesperado. Inténtalo de nuevo más tarde."
}

// Fail answers a deferred command with the failure message of err
func (ctx *CommandContext) Fail(err error, prefix string) error {
	return ctx.EditReplyEmbed(ErrorEmbed(FailureMessage(err, prefix)))
}

// Box wraps text in a code block that fits a message, escaping fences
func Box(text, lang string) string {
	text = strings.ReplaceAll(text, "```", "`\u200b``")
	overhead := utf8.RuneCountInString(lang) + 8
	return "```" + lang + "\n" + Truncate(text, MaxMessageLength-overhead) + "\n```"
}
