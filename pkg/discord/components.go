package discord

import (
	"strings"
	"sync"

	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// CustomIDSeparator splits the prefix and arguments of a component custom ID
const CustomIDSeparator = ":"

// ComponentContext is passed to component handlers
type ComponentContext struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Args        []string
}

// ComponentHandler handles buttons and select menus
type ComponentHandler func(ctx *ComponentContext) error

// ComponentRouter dispatches message components by custom ID prefix
type ComponentRouter struct {
	mu       sync.RWMutex
	handlers map[string]ComponentHandler
}

// NewComponentRouter creates an empty router
func NewComponentRouter() *ComponentRouter {
	return &ComponentRouter{handlers: make(map[string]ComponentHandler)}
}

// Handle registers h for custom IDs starting with prefix
func (r *ComponentRouter) Handle(prefix string, h ComponentHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[prefix] = h
}

// CustomID joins a prefix and its arguments
func CustomID(prefix string, args ...string) string {
	return strings.Join(append([]string{prefix}, args...), CustomIDSeparator)
}

// ParseCustomID is the inverse of CustomID
func ParseCustomID(id string) (string, []string) {
	parts := strings.Split(id, CustomIDSeparator)
	return parts[0], parts[1:]
}

// Lookup returns the handler registered for the custom ID
func (r *ComponentRouter) Lookup(customID string) (ComponentHandler, []string, bool) {
	prefix, args := ParseCustomID(customID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[prefix]
	return h, args, ok
}

// Dispatch runs the matching handler, reporting whether one existed
func (r *ComponentRouter) Dispatch(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	customID := i.MessageComponentData().CustomID
	h, args, ok := r.Lookup(customID)
	if !ok {
		return false
	}
	if err := h(&ComponentContext{Session: s, Interaction: i, Args: args}); err != nil {
		logger.Error("Error en componente "+customID+": "+err.Error(), "Components")
	}
	return true
}

// User returns who pressed the component
func (ctx *ComponentContext) User() *discordgo.User {
	if ctx.Interaction.Member != nil {
		return ctx.Interaction.Member.User
	}
	return ctx.Interaction.User
}

// Update edits the message the component belongs to
func (ctx *ComponentContext) Update(data *discordgo.InteractionResponseData) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
}

// Finish replaces the message with embed, removing the question and its buttons
func (ctx *ComponentContext) Finish(embed *discordgo.MessageEmbed) error {
	return ctx.Update(&discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{},
	})
}

// ReplyEphemeral answers only to the user who pressed the component
func (ctx *ComponentContext) ReplyEphemeral(content string) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
