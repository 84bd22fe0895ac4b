package discord

import (
	"github.com/bwmarrin/discordgo"
)

// CommandRunFunc answers an invocation
type CommandRunFunc func(ctx *CommandContext) error

// AutoCompleteFunc answers the autocomplete requests of a command
type AutoCompleteFunc func(ctx *CommandContext)

// Command is one invocable slash command or subcommand. The access fields
// are checked before Run.
type Command struct {
	Name        string
	Description string
	Category    string
	Options     []*discordgo.ApplicationCommandOption

	// UserPermissions must all be held by the member, administrators pass
	UserPermissions int64
	// BotPermissions must all be granted to the bot in the channel
	BotPermissions int64
	IsDev          bool
	OwnerOnly      bool
	GuildOnly      bool
	RequiresDB     bool

	Run          CommandRunFunc
	AutoComplete AutoCompleteFunc
}

func NewCommand(name, description, category string, run CommandRunFunc) *Command {
	return &Command{Name: name, Description: description, Category: category, Run: run}
}

func (c *Command) WithOptions(opts ...*discordgo.ApplicationCommandOption) *Command {
	c.Options = opts
	return c
}

func (c *Command) WithUserPermissions(perms int64) *Command {
	c.UserPermissions = perms
	return c
}

func (c *Command) WithBotPermissions(perms int64) *Command {
	c.BotPermissions = perms
	return c
}

func (c *Command) WithAutoComplete(fn AutoCompleteFunc) *Command {
	c.AutoComplete = fn
	return c
}

// AsDev registers the command in the dev guild only and hides it from help
func (c *Command) AsDev() *Command {
	c.IsDev = true
	return c
}

// AsOwner restricts the command to the bot owners
func (c *Command) AsOwner() *Command {
	c.OwnerOnly = true
	return c
}

// InGuild rejects the command in DMs
func (c *Command) InGuild() *Command {
	c.GuildOnly = true
	return c
}

// RequiresDatabase rejects the command while the database is offline
func (c *Command) RequiresDatabase() *Command {
	c.RequiresDB = true
	return c
}

func (c *Command) ToApplicationCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name, Description: c.Description, Options: c.Options}
}
