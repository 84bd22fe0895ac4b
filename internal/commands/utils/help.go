package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createHelpCommand creates the /cogs help subcommand
func (c *Cog) createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Lista los comandos disponibles",
		"utils",
		c.helpHandler,
	).WithOptions(&discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "categoria",
		Description:  "Solo los comandos de esta categoría",
		Autocomplete: true,
	}).WithAutoComplete(func(ctx *discord.CommandContext) {
		ctx.Suggest(Categories(c.client.Commands.All()))
	})
}

// visible reports whether a command is listed to everyone
func visible(cmd *discord.Command) bool {
	return !cmd.OwnerOnly && !cmd.IsDev
}

// Categories lists the categories with at least one visible command
func Categories(cmds map[string]*discord.Command) []string {
	seen := map[string]bool{}
	var out []string
	for _, cmd := range cmds {
		if visible(cmd) && !seen[cmd.Category] {
			seen[cmd.Category] = true
			out = append(out, cmd.Category)
		}
	}
	sort.Strings(out)
	return out
}

// HelpLines renders one line per visible command, grouped by category.
// Registry keys use dots between group levels.
func HelpLines(cmds map[string]*discord.Command, category string) []string {
	byCategory := map[string][]string{}
	for key, cmd := range cmds {
		if !visible(cmd) || (category != "" && cmd.Category != category) {
			continue
		}
		line := fmt.Sprintf("`/%s` - %s", strings.ReplaceAll(key, ".", " "), cmd.Description)
		byCategory[cmd.Category] = append(byCategory[cmd.Category], line)
	}
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		lines := byCategory[name]
		sort.Strings(lines)
		out = append(out, fmt.Sprintf("**%s**", name))
		out = append(out, lines...)
	}
	return out
}

// helpHandler handles the /cogs help command
func (c *Cog) helpHandler(ctx *discord.CommandContext) error {
	lines := HelpLines(c.client.Commands.All(), ctx.GetStringOption("categoria"))
	if len(lines) == 0 {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("No hay comandos en esa categoría."))
	}
	return c.client.Interactive.Paginate(ctx, discord.TextPages("📖 Ayuda", discord.ColorInfo, lines))
}
