package discord

import (
	"bytes"
	"strings"

	"github.com/PancyStudios/CogsBotGo/pkg/config"
	"github.com/bwmarrin/discordgo"
)

// CommandContext is what a command handler gets for one interaction
type CommandContext struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Client      *ExtendedClient
}

func (ctx *CommandContext) respond(kind discordgo.InteractionResponseType, data *discordgo.InteractionResponseData) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{Type: kind, Data: data})
}

func (ctx *CommandContext) edit(e *discordgo.WebhookEdit) error {
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, e)
	return err
}

func ephemeral(data *discordgo.InteractionResponseData) *discordgo.InteractionResponseData {
	data.Flags |= discordgo.MessageFlagsEphemeral
	return data
}

func attachment(name string, data []byte) []*discordgo.File {
	return []*discordgo.File{{Name: name, Reader: bytes.NewReader(data)}}
}

// Reply sends a reply to the interaction
func (ctx *CommandContext) Reply(content string) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource, &discordgo.InteractionResponseData{Content: content})
}

// ReplyEmbed sends an embed reply to the interaction
func (ctx *CommandContext) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource, &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}})
}

// ReplyEphemeral sends a reply visible only to the user
func (ctx *CommandContext) ReplyEphemeral(content string) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource, ephemeral(&discordgo.InteractionResponseData{Content: content}))
}

// ReplyEphemeralEmbed sends an embed visible only to the user
func (ctx *CommandContext) ReplyEphemeralEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.respond(discordgo.InteractionResponseChannelMessageWithSource, ephemeral(&discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}))
}

// Defer acknowledges the interaction; the answer comes later through the Edit* helpers
func (ctx *CommandContext) Defer() error {
	return ctx.respond(discordgo.InteractionResponseDeferredChannelMessageWithSource, nil)
}

// DeferEphemeral defers the response as an ephemeral message
func (ctx *CommandContext) DeferEphemeral() error {
	return ctx.respond(discordgo.InteractionResponseDeferredChannelMessageWithSource, ephemeral(&discordgo.InteractionResponseData{}))
}

// EditReply replaces the deferred response with text
func (ctx *CommandContext) EditReply(content string) error {
	return ctx.edit(&discordgo.WebhookEdit{Content: &content})
}

// EditReplyEmbed replaces the deferred response with an embed
func (ctx *CommandContext) EditReplyEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.EditReplyEmbeds([]*discordgo.MessageEmbed{embed})
}

// EditReplyEmbeds replaces the deferred response with several embeds
func (ctx *CommandContext) EditReplyEmbeds(embeds []*discordgo.MessageEmbed) error {
	return ctx.edit(&discordgo.WebhookEdit{Embeds: &embeds})
}

// EditReplyFile replaces the deferred response with a file attachment
func (ctx *CommandContext) EditReplyFile(content, name string, data []byte) error {
	return ctx.edit(&discordgo.WebhookEdit{Content: &content, Files: attachment(name, data)})
}

// EditReplyEmbedFile replaces the deferred response with an embed and an attachment it can reference as attachment://name
func (ctx *CommandContext) EditReplyEmbedFile(embed *discordgo.MessageEmbed, name string, data []byte) error {
	return ctx.edit(&discordgo.WebhookEdit{Embeds: &[]*discordgo.MessageEmbed{embed}, Files: attachment(name, data)})
}

// IsOwner reports whether the invoking user is a bot owner
func (ctx *CommandContext) IsOwner() bool {
	u := ctx.User()
	return u != nil && config.Get().IsOwner(u.ID)
}

// User is the invoking user, in guilds and in DMs
func (ctx *CommandContext) User() *discordgo.User {
	if ctx.Interaction.Member != nil {
		return ctx.Interaction.Member.User
	}
	return ctx.Interaction.User
}

// Member is nil outside guilds
func (ctx *CommandContext) Member() *discordgo.Member {
	return ctx.Interaction.Member
}

// Guild is the cached guild of the interaction, nil in DMs or when not cached
func (ctx *CommandContext) Guild() *discordgo.Guild {
	if ctx.Interaction.GuildID == "" {
		return nil
	}
	guild, _ := ctx.Session.State.Guild(ctx.Interaction.GuildID)
	return guild
}

func (ctx *CommandContext) Channel() *discordgo.Channel {
	channel, _ := ctx.Session.State.Channel(ctx.Interaction.ChannelID)
	return channel
}

// GetOption finds an option by name at any nesting depth
func (ctx *CommandContext) GetOption(name string) *discordgo.ApplicationCommandInteractionDataOption {
	return findOption(ctx.Interaction.ApplicationCommandData().Options, name)
}

func findOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
		if found := findOption(opt.Options, name); found != nil {
			return found
		}
	}
	return nil
}

// optionValue reads an option with read, or returns the zero value when the user left it empty
func optionValue[T any](ctx *CommandContext, name string, read func(*discordgo.ApplicationCommandInteractionDataOption) T) T {
	var zero T
	opt := ctx.GetOption(name)
	if opt == nil {
		return zero
	}
	return read(opt)
}

func (ctx *CommandContext) GetStringOption(name string) string {
	return optionValue(ctx, name, (*discordgo.ApplicationCommandInteractionDataOption).StringValue)
}

func (ctx *CommandContext) GetIntOption(name string) int64 {
	return optionValue(ctx, name, (*discordgo.ApplicationCommandInteractionDataOption).IntValue)
}

func (ctx *CommandContext) GetBoolOption(name string) bool {
	return optionValue(ctx, name, (*discordgo.ApplicationCommandInteractionDataOption).BoolValue)
}

func (ctx *CommandContext) GetUserOption(name string) *discordgo.User {
	return optionValue(ctx, name, func(o *discordgo.ApplicationCommandInteractionDataOption) *discordgo.User {
		return o.UserValue(ctx.Session)
	})
}

func (ctx *CommandContext) GetChannelOption(name string) *discordgo.Channel {
	return optionValue(ctx, name, func(o *discordgo.ApplicationCommandInteractionDataOption) *discordgo.Channel {
		return o.ChannelValue(ctx.Session)
	})
}

func (ctx *CommandContext) GetRoleOption(name string) *discordgo.Role {
	return optionValue(ctx, name, func(o *discordgo.ApplicationCommandInteractionDataOption) *discordgo.Role {
		return o.RoleValue(ctx.Session, ctx.Interaction.GuildID)
	})
}

// focusedValue returns what the user typed in the option being autocompleted
func focusedValue(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range options {
		if opt.Focused {
			s, _ := opt.Value.(string)
			return s
		}
		if v := focusedValue(opt.Options); v != "" {
			return v
		}
	}
	return ""
}

// maxChoices is the most autocomplete choices Discord accepts
const maxChoices = 25

// Matching returns the names containing typed, case insensitive, capped at maxChoices
func Matching(names []string, typed string) []string {
	typed = strings.ToLower(typed)
	out := make([]string, 0, maxChoices)
	for _, name := range names {
		if len(out) == maxChoices {
			break
		}
		if strings.Contains(strings.ToLower(name), typed) {
			out = append(out, name)
		}
	}
	return out
}

// Suggest answers an autocomplete request with the names containing the typed text
func (ctx *CommandContext) Suggest(names []string) error {
	typed := focusedValue(ctx.Interaction.ApplicationCommandData().Options)
	matches := Matching(names, typed)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(matches))
	for i, name := range matches {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name}
	}
	return ctx.respond(discordgo.InteractionApplicationCommandAutocompleteResult, &discordgo.InteractionResponseData{Choices: choices})
}
