package leveler

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	errorsx "github.com/PancyStudios/CogsBotGo/pkg/errors"
	lvl "github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const errBadDuration = errors.Sentinel("duración inválida, usa por ejemplo 30m, 12h, 2d o 1w")

var durationPartRe = regexp.MustCompile(`(\d+)\s*(w|d|h|m|s)`)

// ParseDuration reads durations like "1d12h" or "2w", which time.ParseDuration lacks
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
	parts := durationPartRe.FindAllStringSubmatch(s, -1)
	if len(parts) == 0 || durationPartRe.ReplaceAllString(s, "") != "" {
		return 0, errBadDuration
	}
	units := map[string]time.Duration{
		"w": 7 * 24 * time.Hour, "d": 24 * time.Hour, "h": time.Hour, "m": time.Minute, "s": time.Second,
	}
	var total time.Duration
	for _, p := range parts {
		n, err := strconv.Atoi(p[1])
		if err != nil {
			return 0, errBadDuration
		}
		total += time.Duration(n) * units[p[2]]
	}
	return total, nil
}

func intOption(name, description string, required bool, min float64) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
		MinValue:    &min,
	}
}

func requiredUser(description string) *discordgo.ApplicationCommandOption {
	opt := userOption(description)
	opt.Required = true
	return opt
}

func toggled(label string, on bool) *discordgo.MessageEmbed {
	state := "desactivado"
	if on {
		state = "activado"
	}
	return discord.SuccessEmbed(fmt.Sprintf("%s %s.", label, state))
}

// guildToggle flips a boolean guild setting
func (c *Cog) guildToggle(name, description, label string, field func(g *models.LevelerGuild) *bool) *discord.Command {
	return discord.NewCommand(name, description, "leveler", func(ctx *discord.CommandContext) error {
		var now bool
		err := c.svc.UpdateGuild(ctx.Interaction.GuildID, func(g *models.LevelerGuild) error {
			f := field(g)
			*f = !*f
			now = *f
			return nil
		})
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
		}
		return ctx.ReplyEmbed(toggled(label, now))
	}).WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase()
}

// globalToggle flips a boolean bot wide setting
func (c *Cog) globalToggle(name, description, label string, field func(g *models.LevelerGlobal) *bool) *discord.Command {
	return discord.NewCommand(name, description, "leveler", func(ctx *discord.CommandContext) error {
		var now bool
		err := c.svc.UpdateGlobal(func(g *models.LevelerGlobal) error {
			f := field(g)
			*f = !*f
			now = *f
			return nil
		})
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
		}
		return ctx.ReplyEmbed(toggled(label, now))
	}).AsOwner().RequiresDatabase()
}

// globalInt sets a numeric bot wide setting
func (c *Cog) globalInt(name, description, label string, min float64, field func(g *models.LevelerGlobal) *int) *discord.Command {
	return discord.NewCommand(name, description, "leveler", func(ctx *discord.CommandContext) error {
		v := int(ctx.GetIntOption("valor"))
		err := c.svc.UpdateGlobal(func(g *models.LevelerGlobal) error {
			*field(g) = v
			return nil
		})
		if err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
		}
		return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("%s: **%d**.", label, v)))
	}).WithOptions(intOption("valor", label, true, min)).AsOwner().RequiresDatabase()
}

func (c *Cog) adminCommands() []*discord.Command {
	return []*discord.Command{
		discord.NewCommand("overview", "Muestra los ajustes de niveles", "leveler", c.overviewHandler).
			WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase(),
		discord.NewCommand("toggle", "Activa o desactiva el sistema en el servidor", "leveler", c.toggleHandler).
			WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase(),
		c.guildToggle("alerts", "Activa los anuncios de subida de nivel", "Anuncios de nivel",
			func(g *models.LevelerGuild) *bool { return &g.LvlMsg }),
		c.guildToggle("textonly", "Usa texto en lugar de imágenes", "Modo solo texto",
			func(g *models.LevelerGuild) *bool { return &g.TextOnly }),
		c.guildToggle("private", "Envía los anuncios por mensaje directo", "Anuncios privados",
			func(g *models.LevelerGuild) *bool { return &g.PrivateLvlMessage }),
		discord.NewCommand("ignorechannel", "Ignora o deja de ignorar un canal", "leveler", c.ignoreChannelHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "canal",
				Description:  "Canal donde no se gana experiencia",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			}).WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase(),
		discord.NewCommand("lock", "Fija el canal de anuncios (vacío para quitarlo)", "leveler", c.lockHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "canal",
				Description:  "Canal de anuncios",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
			}).WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase(),
		discord.NewCommand("msgcredits", "Créditos que da cada mensaje", "leveler", c.msgCreditsHandler).
			WithOptions(intOption("valor", "Créditos por mensaje (0-1000)", true, 0)).
			WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase(),
		discord.NewCommand("xpban", "Impide ganar experiencia durante un tiempo", "leveler", c.xpBanHandler).
			WithOptions(
				textOption("duracion", "Por ejemplo 30m, 12h, 2d", 20),
				requiredUser("Usuario sancionado"),
			).WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase(),
		discord.NewCommand("setlevel", "Fija el nivel de un usuario", "leveler", c.setLevelHandler).
			WithOptions(
				requiredUser("Usuario"),
				intOption("nivel", "Nuevo nivel", true, 0),
			).WithUserPermissions(discordgo.PermissionManageGuild).RequiresDatabase(),
		c.globalToggle("mention", "Menciona a los usuarios al subir de nivel", "Menciones",
			func(g *models.LevelerGlobal) *bool { return &g.Mention }),
		c.globalToggle("reprotation", "Rotación de reputación", "Rotación de reputación",
			func(g *models.LevelerGlobal) *bool { return &g.RepRotation }),
		c.globalToggle("globaltop", "Permite la clasificación global", "Clasificación global",
			func(g *models.LevelerGlobal) *bool { return &g.AllowGlobalTop }),
		c.globalToggle("globallevels", "Muestra niveles globales en el perfil", "Niveles globales",
			func(g *models.LevelerGlobal) *bool { return &g.GlobalLevels }),
		c.globalInt("length", "Longitud mínima de mensaje para ganar experiencia", "Longitud mínima", 0,
			func(g *models.LevelerGlobal) *int { return &g.MessageLength }),
		c.globalInt("setprice", "Precio de los fondos", "Precio de los fondos", 0,
			func(g *models.LevelerGlobal) *int { return &g.BgPrice }),
		discord.NewCommand("xp", "Rango de experiencia por mensaje", "leveler", c.xpRangeHandler).
			WithOptions(
				intOption("min", "Mínimo", true, 0),
				intOption("max", "Máximo", true, 0),
			).AsOwner().RequiresDatabase(),
		discord.NewCommand("resetrep", "Pone a cero la reputación de todos", "leveler", c.resetRepHandler).
			AsOwner().RequiresDatabase(),
	}
}

func (c *Cog) overviewHandler(ctx *discord.CommandContext) error {
	g, err := c.svc.Guild(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	global, _ := c.svc.Global()
	lock := "Ninguno"
	if g.LvlMsgLock != "" {
		lock = "<#" + g.LvlMsgLock + ">"
	}
	ignored := make([]string, len(g.IgnoredChannels))
	for i, ch := range g.IgnoredChannels {
		ignored[i] = "<#" + ch + ">"
	}
	ignoredText := "Ninguno"
	if len(ignored) > 0 {
		ignoredText = discord.Truncate(strings.Join(ignored, " "), discord.MaxFieldLength)
	}
	embed := &discordgo.MessageEmbed{
		Title: "Ajustes de niveles",
		Color: discord.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Activado", Value: discord.YesNo(!g.Disabled), Inline: true},
			{Name: "Anuncios", Value: discord.YesNo(g.LvlMsg), Inline: true},
			{Name: "Solo texto", Value: discord.YesNo(g.TextOnly), Inline: true},
			{Name: "Anuncios privados", Value: discord.YesNo(g.PrivateLvlMessage), Inline: true},
			{Name: "Canal de anuncios", Value: lock, Inline: true},
			{Name: "Créditos por mensaje", Value: strconv.Itoa(g.MsgCredits), Inline: true},
			{Name: "Canales ignorados", Value: ignoredText},
		},
	}
	if ctx.IsOwner() {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Experiencia", Value: fmt.Sprintf("%d-%d", global.XPMin, global.XPMax), Inline: true},
			&discordgo.MessageEmbedField{Name: "Longitud mínima", Value: strconv.Itoa(global.MessageLength), Inline: true},
			&discordgo.MessageEmbedField{Name: "Precio de fondos", Value: strconv.Itoa(global.BgPrice), Inline: true},
			&discordgo.MessageEmbedField{Name: "Menciones", Value: discord.YesNo(global.Mention), Inline: true},
			&discordgo.MessageEmbedField{Name: "Clasificación global", Value: discord.YesNo(global.AllowGlobalTop), Inline: true},
			&discordgo.MessageEmbedField{Name: "Estilo de insignias", Value: global.BadgeType, Inline: true},
		)
	}
	return ctx.ReplyEphemeralEmbed(embed)
}

func (c *Cog) toggleHandler(ctx *discord.CommandContext) error {
	var disabled bool
	err := c.svc.UpdateGuild(ctx.Interaction.GuildID, func(g *models.LevelerGuild) error {
		g.Disabled = !g.Disabled
		disabled = g.Disabled
		return nil
	})
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(toggled("Sistema de niveles", !disabled))
}

func (c *Cog) ignoreChannelHandler(ctx *discord.CommandContext) error {
	ch := ctx.GetChannelOption("canal")
	var ignored bool
	err := c.svc.UpdateGuild(ctx.Interaction.GuildID, func(g *models.LevelerGuild) error {
		for i, id := range g.IgnoredChannels {
			if id == ch.ID {
				g.IgnoredChannels = append(g.IgnoredChannels[:i], g.IgnoredChannels[i+1:]...)
				return nil
			}
		}
		g.IgnoredChannels = append(g.IgnoredChannels, ch.ID)
		ignored = true
		return nil
	})
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	if ignored {
		return ctx.ReplyEmbed(discord.SuccessEmbed(ch.Mention() + " ya no da experiencia."))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(ch.Mention() + " vuelve a dar experiencia."))
}

func (c *Cog) lockHandler(ctx *discord.CommandContext) error {
	ch := ctx.GetChannelOption("canal")
	err := c.svc.UpdateGuild(ctx.Interaction.GuildID, func(g *models.LevelerGuild) error {
		g.LvlMsgLock = ""
		if ch != nil {
			g.LvlMsgLock = ch.ID
		}
		return nil
	})
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	if ch == nil {
		return ctx.ReplyEmbed(discord.SuccessEmbed("Los anuncios vuelven al canal del mensaje."))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed("Los anuncios se enviarán a " + ch.Mention() + "."))
}

func (c *Cog) msgCreditsHandler(ctx *discord.CommandContext) error {
	v := int(ctx.GetIntOption("valor"))
	if v > 1000 {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("El máximo es 1000 créditos."))
	}
	err := c.svc.UpdateGuild(ctx.Interaction.GuildID, func(g *models.LevelerGuild) error {
		g.MsgCredits = v
		return nil
	})
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Cada mensaje dará %d créditos.", v)))
}

func (c *Cog) xpBanHandler(ctx *discord.CommandContext) error {
	d, err := ParseDuration(ctx.GetStringOption("duracion"))
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	user := ctx.GetUserOption("usuario")
	if _, err := c.svc.XPBan(user.ID, user.Username, d); err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("%s no ganará experiencia hasta <t:%d:f>.",
		user.Mention(), time.Now().Add(d).Unix())))
}

func (c *Cog) setLevelHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user.Bot {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed("Los bots no tienen nivel."))
	}
	level := int(ctx.GetIntOption("nivel"))
	if _, err := c.svc.SetLevel(user.ID, user.Username, ctx.Interaction.GuildID, level); err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("%s ahora es nivel %d.", user.Mention(), level)))
}

func (c *Cog) xpRangeHandler(ctx *discord.CommandContext) error {
	lo, hi := int(ctx.GetIntOption("min")), int(ctx.GetIntOption("max"))
	if err := c.svc.SetXPRange(lo, hi); err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Cada mensaje dará entre %d y %d de experiencia.", lo, hi)))
}

func (c *Cog) resetRepHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		n, err := c.svc.ResetRep()
		if err != nil {
			ctx.Fail(err, "Leveler")
			return
		}
		ctx.EditReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Reputación reiniciada para %d usuarios.", n)))
	}()
	return nil
}

// humanMembers counts the non-bot members of a guild. Without a full member
// cache the total count is the best estimate.
func humanMembers(s *discordgo.Session, guildID string) int {
	g, err := s.State.Guild(guildID)
	if err != nil {
		return 0
	}
	if len(g.Members) < g.MemberCount {
		return g.MemberCount
	}
	n := 0
	for _, m := range g.Members {
		if m.User != nil && !m.User.Bot {
			n++
		}
	}
	return n
}

func (c *Cog) badgeAdminCommands() []*discord.Command {
	nameOpt := func() *discordgo.ApplicationCommandOption { return textOption("nombre", "Nombre de la insignia", 100) }
	return []*discord.Command{
		discord.NewCommand("add", "Crea o actualiza una insignia", "leveler", c.badgeAddHandler).
			WithOptions(
				nameOpt(),
				textOption("imagen", "URL de la imagen o color hexadecimal", 500),
				textOption("borde", "Color del borde", 20),
				intOption("precio", "-1 si no se vende", true, -1),
				textOption("descripcion", "Descripción (máx. 40 palabras)", 300),
				globalOption(),
			).WithUserPermissions(discordgo.PermissionManageRoles).RequiresDatabase(),
		discord.NewCommand("type", "Estilo de las insignias en el perfil", "leveler", c.badgeTypeHandler).
			WithOptions(&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "tipo",
				Description: "Estilo",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "circles", Value: lvl.BadgeCircles},
					{Name: "bars", Value: lvl.BadgeBars},
					{Name: "squares", Value: lvl.BadgeSquares},
					{Name: "tags", Value: lvl.BadgeTags},
				},
			}).AsOwner().RequiresDatabase(),
		discord.NewCommand("delete", "Borra una insignia", "leveler", c.badgeDeleteHandler).
			WithOptions(nameOpt(), globalOption()).
			WithUserPermissions(discordgo.PermissionManageRoles).RequiresDatabase(),
		discord.NewCommand("give", "Da una insignia a un usuario", "leveler", c.badgeGiveHandler).
			WithOptions(requiredUser("Usuario"), nameOpt(), globalOption()).
			WithUserPermissions(discordgo.PermissionManageRoles).RequiresDatabase(),
		discord.NewCommand("take", "Quita una insignia a un usuario", "leveler", c.badgeTakeHandler).
			WithOptions(requiredUser("Usuario"), nameOpt(), globalOption()).
			WithUserPermissions(discordgo.PermissionManageRoles).RequiresDatabase(),
		discord.NewCommand("link", "Entrega una insignia al alcanzar un nivel", "leveler", c.badgeLinkHandler).
			WithOptions(nameOpt(), intOption("nivel", "Nivel", true, 0)).
			WithUserPermissions(discordgo.PermissionManageRoles).RequiresDatabase(),
		discord.NewCommand("unlink", "Quita el vínculo de una insignia", "leveler", c.badgeUnlinkHandler).
			WithOptions(nameOpt()).
			WithUserPermissions(discordgo.PermissionManageRoles).RequiresDatabase(),
		discord.NewCommand("listlinks", "Lista las insignias vinculadas a niveles", "leveler", c.badgeListLinksHandler).
			RequiresDatabase().InGuild(),
	}
}

// checkGlobal rejects global badge edits from non owners
func checkGlobal(ctx *discord.CommandContext, server string) error {
	if server == lvl.GlobalServer && !ctx.IsOwner() {
		return lvl.ErrBadgeGlobalOwner
	}
	return nil
}

func (c *Cog) badgeAddHandler(ctx *discord.CommandContext) error {
	server := badgeServer(ctx)
	serverName := "global"
	if g := ctx.Guild(); g != nil && server != lvl.GlobalServer {
		serverName = g.Name
	}
	border, err := lvl.ParseHex(ctx.GetStringOption("borde"))
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	name := ctx.GetStringOption("nombre")
	existed, err := c.svc.AddBadge(lvl.NewBadge{
		Name:         name,
		Description:  ctx.GetStringOption("descripcion"),
		BgImg:        ctx.GetStringOption("imagen"),
		Border:       border,
		Price:        int(ctx.GetIntOption("precio")),
		ServerID:     server,
		ServerName:   serverName,
		HumanMembers: humanMembers(ctx.Session, ctx.Interaction.GuildID),
		IsOwner:      ctx.IsOwner(),
	})
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	if existed {
		return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Insignia **%s** actualizada.", name)))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Insignia **%s** creada.", name)))
}

func (c *Cog) badgeTypeHandler(ctx *discord.CommandContext) error {
	t := ctx.GetStringOption("tipo")
	err := c.svc.UpdateGlobal(func(g *models.LevelerGlobal) error {
		g.BadgeType = t
		return nil
	})
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed("Estilo de insignias: **" + t + "**."))
}

func (c *Cog) badgeDeleteHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errorsx.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}
		server := badgeServer(ctx)
		err := checkGlobal(ctx, server)
		if err == nil {
			err = c.svc.DeleteBadge(server, ctx.GetStringOption("nombre"))
		}
		if err != nil {
			ctx.Fail(err, "Leveler")
			return
		}
		ctx.EditReplyEmbed(discord.SuccessEmbed("Insignia borrada."))
	}()
	return nil
}

func (c *Cog) badgeGiveHandler(ctx *discord.CommandContext) error {
	server := badgeServer(ctx)
	user := ctx.GetUserOption("usuario")
	err := checkGlobal(ctx, server)
	if err == nil {
		err = c.svc.GiveBadge(user.ID, user.Username, server, ctx.GetStringOption("nombre"))
	}
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("%s recibió la insignia **%s**.", user.Mention(), ctx.GetStringOption("nombre"))))
}

func (c *Cog) badgeTakeHandler(ctx *discord.CommandContext) error {
	server := badgeServer(ctx)
	user := ctx.GetUserOption("usuario")
	err := checkGlobal(ctx, server)
	if err == nil {
		err = c.svc.TakeBadge(user.ID, server, ctx.GetStringOption("nombre"))
	}
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Se quitó la insignia **%s** a %s.", ctx.GetStringOption("nombre"), user.Mention())))
}

func (c *Cog) badgeLinkHandler(ctx *discord.CommandContext) error {
	name, level := ctx.GetStringOption("nombre"), int(ctx.GetIntOption("nivel"))
	if err := c.svc.LinkBadge(ctx.Interaction.GuildID, name, level); err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("La insignia **%s** se entregará al llegar al nivel %d.", name, level)))
}

func (c *Cog) badgeUnlinkHandler(ctx *discord.CommandContext) error {
	name := ctx.GetStringOption("nombre")
	level, err := c.svc.UnlinkBadge(ctx.Interaction.GuildID, name)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("La insignia **%s** ya no se entrega en el nivel %d.", name, level)))
}

func (c *Cog) badgeListLinksHandler(ctx *discord.CommandContext) error {
	links, err := c.svc.Store().BadgeLinks(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	var lines []string
	if links != nil {
		for name, level := range links.Badges {
			lines = append(lines, fmt.Sprintf("**%s**: nivel %d", name, level))
		}
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		lines = []string{"No hay insignias vinculadas."}
	}
	return c.pages.Paginate(ctx, discord.TextPages("Insignias por nivel", discord.ColorInfo, lines))
}

func roleOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func (c *Cog) roleAdminCommands() []*discord.Command {
	return []*discord.Command{
		discord.NewCommand("link", "Da un rol al alcanzar un nivel", "leveler", c.roleLinkHandler).
			WithOptions(
				roleOption("rol", "Rol que se entrega", true),
				intOption("nivel", "Nivel", true, 0),
				roleOption("quitar", "Rol que se quita al entregar el anterior", false),
			).WithUserPermissions(discordgo.PermissionManageRoles).RequiresDatabase(),
		discord.NewCommand("unlink", "Quita el vínculo de un rol", "leveler", c.roleUnlinkHandler).
			WithOptions(roleOption("rol", "Rol vinculado", true)).
			WithUserPermissions(discordgo.PermissionManageRoles).RequiresDatabase(),
		discord.NewCommand("listlinks", "Lista los roles vinculados a niveles", "leveler", c.roleListLinksHandler).
			RequiresDatabase().InGuild(),
	}
}

func (c *Cog) roleLinkHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	level := int(ctx.GetIntOption("nivel"))
	remove := ""
	if r := ctx.GetRoleOption("quitar"); r != nil {
		remove = r.Name
	}
	if err := c.svc.LinkRole(ctx.Interaction.GuildID, role.Name, level, remove); err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	msg := fmt.Sprintf("El rol **%s** se entregará en el nivel %d.", role.Name, level)
	if remove != "" {
		msg += fmt.Sprintf(" Se quitará **%s**.", remove)
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(msg))
}

func (c *Cog) roleUnlinkHandler(ctx *discord.CommandContext) error {
	role := ctx.GetRoleOption("rol")
	link, err := c.svc.UnlinkRole(ctx.Interaction.GuildID, role.Name)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("El rol **%s** ya no se entrega en el nivel %d.", role.Name, link.Level)))
}

func (c *Cog) roleListLinksHandler(ctx *discord.CommandContext) error {
	links, err := c.svc.Store().RoleLinks(ctx.Interaction.GuildID)
	if err != nil {
		return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
	}
	var lines []string
	if links != nil {
		for name, link := range links.Roles {
			line := fmt.Sprintf("**%s**: nivel %d", name, link.Level)
			if link.RemoveRole != "" {
				line += ", quita " + link.RemoveRole
			}
			lines = append(lines, line)
		}
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		lines = []string{"No hay roles vinculados."}
	}
	return c.pages.Paginate(ctx, discord.TextPages("Roles por nivel", discord.ColorInfo, lines))
}

func (c *Cog) bgAdminCommands() []*discord.Command {
	add := func(name, card string) *discord.Command {
		return discord.NewCommand(name, "Añade un fondo de "+card, "leveler", func(ctx *discord.CommandContext) error {
			bg := ctx.GetStringOption("nombre")
			if err := c.svc.AddBackground(card, bg, ctx.GetStringOption("url")); err != nil {
				return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
			}
			return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Fondo de %s **%s** añadido.", card, bg)))
		}).WithOptions(textOption("nombre", "Nombre", 50), textOption("url", "URL de la imagen", 500)).AsOwner().RequiresDatabase()
	}
	del := func(name, card string) *discord.Command {
		return discord.NewCommand(name, "Borra un fondo de "+card, "leveler", func(ctx *discord.CommandContext) error {
			bg := ctx.GetStringOption("nombre")
			if err := c.svc.DeleteBackground(card, bg); err != nil {
				return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
			}
			return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Fondo de %s **%s** borrado.", card, bg)))
		}).WithOptions(textOption("nombre", "Nombre", 50)).AsOwner().RequiresDatabase()
	}
	custom := discord.NewCommand("setcustombg", "Pone un fondo propio a un usuario", "leveler", func(ctx *discord.CommandContext) error {
		user := ctx.GetUserOption("usuario")
		card := ctx.GetStringOption("tarjeta")
		if err := c.svc.SetCustomBackground(user.ID, card, ctx.GetStringOption("url")); err != nil {
			return ctx.ReplyEphemeralEmbed(discord.ErrorEmbed(discord.FailureMessage(err, "Leveler")))
		}
		return ctx.ReplyEmbed(discord.SuccessEmbed(fmt.Sprintf("Fondo de %s de %s actualizado.", card, user.Mention())))
	}).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tarjeta",
			Description: "Tarjeta",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "profile", Value: lvl.CardProfile},
				{Name: "rank", Value: lvl.CardRank},
				{Name: "levelup", Value: lvl.CardLevelup},
			},
		},
		requiredUser("Usuario"),
		textOption("url", "URL de la imagen", 500),
	).AsOwner().RequiresDatabase()

	return []*discord.Command{
		add("addprofilebg", lvl.CardProfile),
		add("addrankbg", lvl.CardRank),
		add("addlevelbg", lvl.CardLevelup),
		custom,
		del("delprofilebg", lvl.CardProfile),
		del("delrankbg", lvl.CardRank),
		del("dellevelbg", lvl.CardLevelup),
	}
}
