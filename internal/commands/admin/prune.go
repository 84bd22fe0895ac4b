package admin

import (
	"fmt"
	"net/url"
	"strings"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	errorsx "github.com/PancyStudios/CogsBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
)

// ClampPruneDays keeps days in the range Discord accepts
func ClampPruneDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > 30 {
		return 30
	}
	return days
}

type pruneResult struct {
	Pruned int `json:"pruned"`
}

type pruneRequest struct {
	Days              int      `json:"days"`
	ComputePruneCount bool     `json:"compute_prune_count"`
	IncludeRoles      []string `json:"include_roles,omitempty"`
}

// pruneCount estimates the members a prune would remove. discordgo has no
// include_roles support, so the request is built here.
func pruneCount(s *discordgo.Session, guildID string, days int, roles []string) (int, error) {
	q := url.Values{"days": {fmt.Sprint(days)}}
	if len(roles) > 0 {
		q.Set("include_roles", strings.Join(roles, ","))
	}
	endpoint := discordgo.EndpointGuildPrune(guildID)
	body, err := s.RequestWithBucketID("GET", endpoint+"?"+q.Encode(), nil, endpoint)
	if err != nil {
		return 0, err
	}
	var res pruneResult
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, errors.WrapIf(err, "decodificar estimación")
	}
	return res.Pruned, nil
}

func prune(s *discordgo.Session, guildID string, days int, roles []string, reason string) (int, error) {
	endpoint := discordgo.EndpointGuildPrune(guildID)
	body, err := s.RequestWithBucketID("POST", endpoint,
		pruneRequest{Days: days, ComputePruneCount: true, IncludeRoles: roles}, endpoint,
		discordgo.WithAuditLogReason(reason))
	if err != nil {
		return 0, err
	}
	var res pruneResult
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, errors.WrapIf(err, "decodificar resultado")
	}
	return res.Pruned, nil
}

func (c *Cog) createPruneCommand() *discord.Command {
	min := 0.0
	return discord.NewCommand("prune", "Expulsa a los miembros inactivos", "admin", c.pruneHandler).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "dias",
				Description: "Días de inactividad (1-30)",
				MinValue:    &min,
				MaxValue:    30,
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "rol",
				Description: "Incluir también a los miembros con este rol",
			},
		).
		WithUserPermissions(discordgo.PermissionKickMembers).
		WithBotPermissions(discordgo.PermissionKickMembers)
}

func (c *Cog) pruneHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		days := ClampPruneDays(int(ctx.GetIntOption("dias")))
		var roles []string
		if r := ctx.GetRoleOption("rol"); r != nil {
			roles = append(roles, r.ID)
		}
		guildID := ctx.Interaction.GuildID
		count, err := pruneCount(ctx.Session, guildID, days, roles)
		if err != nil {
			ctx.Fail(err, "Admin")
			return
		}
		if count == 0 {
			ctx.EditReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("No hay miembros inactivos durante %d días.", days)))
			return
		}
		question := fmt.Sprintf("⚠️ Vas a expulsar a **%d** miembros inactivos durante **%d** días. ¿Continuar?", count, days)
		reason := "Limpieza solicitada por " + ctx.User().Username
		c.pages.Confirm(ctx, question, func(cc *discord.ComponentContext) error {
			pruned, err := prune(cc.Session, guildID, days, roles, reason)
			if err != nil {
				return cc.Finish(discord.ErrorEmbed(discord.FailureMessage(err, "Admin")))
			}
			return cc.Finish(discord.SuccessEmbed(fmt.Sprintf("Expulsados %d de %d miembros inactivos durante %d días.", pruned, count, days)))
		})
	}()
	return nil
}
