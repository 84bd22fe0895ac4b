package discord

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	// PaginatorPrefix is the custom ID prefix of pagination buttons
	PaginatorPrefix = "pg"
	// ConfirmPrefix is the custom ID prefix of confirmation buttons
	ConfirmPrefix = "cf"
	// InteractiveTTL is how long buttons keep working
	InteractiveTTL = 3 * time.Minute
)

// Page actions
const (
	PageFirst = "first"
	PagePrev  = "prev"
	PageNext  = "next"
	PageLast  = "last"
	PageClose = "close"
)

const errNotYours = "❌ Solo quien ejecutó el comando puede usar estos botones."

// Paginator holds the state of one paginated message
type Paginator struct {
	ID      string
	OwnerID string
	Pages   []*discordgo.MessageEmbed
	Index   int

	mu sync.Mutex
}

// Move applies a page action and reports whether the paginator stays open
func (p *Paginator) Move(action string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.Pages)
	switch action {
	case PageFirst:
		p.Index = 0
	case PageLast:
		p.Index = n - 1
	case PagePrev:
		p.Index = (p.Index - 1 + n) % n
	case PageNext:
		p.Index = (p.Index + 1) % n
	case PageClose:
		return false
	}
	return true
}

// Current returns the visible page
func (p *Paginator) Current() *discordgo.MessageEmbed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Pages[p.Index]
}

// Components renders the navigation row, nil for single pages
func (p *Paginator) Components() []discordgo.MessageComponent {
	if len(p.Pages) < 2 {
		return nil
	}
	btn := func(action, emoji string) discordgo.Button {
		return discordgo.Button{
			Style:    discordgo.SecondaryButton,
			Emoji:    &discordgo.ComponentEmoji{Name: emoji},
			CustomID: CustomID(PaginatorPrefix, p.ID, action),
		}
	}
	closeBtn := btn(PageClose, "✖️")
	closeBtn.Style = discordgo.DangerButton
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		btn(PageFirst, "⏮️"), btn(PagePrev, "⬅️"), closeBtn, btn(PageNext, "➡️"), btn(PageLast, "⏭️"),
	}}}
}

type confirmation struct {
	ownerID string
	onYes   func(ctx *ComponentContext) error
}

// Interactive keeps paginators and confirmations alive for InteractiveTTL
type Interactive struct {
	store *cache.Cache
}

// NewInteractive creates the store and registers its handlers on the router
func NewInteractive(router *ComponentRouter) *Interactive {
	in := &Interactive{store: cache.New(InteractiveTTL, time.Minute)}
	router.Handle(PaginatorPrefix, in.handlePage)
	router.Handle(ConfirmPrefix, in.handleConfirm)
	return in
}

// NewPaginator registers pages owned by ownerID
func (in *Interactive) NewPaginator(ownerID string, pages []*discordgo.MessageEmbed) *Paginator {
	p := &Paginator{ID: uuid.NewString()[:8], OwnerID: ownerID, Pages: pages}
	if len(pages) > 1 {
		in.store.SetDefault(PaginatorPrefix+p.ID, p)
	}
	return p
}

// Paginator looks up a live paginator
func (in *Interactive) Paginator(id string) (*Paginator, bool) {
	v, ok := in.store.Get(PaginatorPrefix + id)
	if !ok {
		return nil, false
	}
	return v.(*Paginator), true
}

// Paginate answers a command with paged embeds
func (in *Interactive) Paginate(ctx *CommandContext, pages []*discordgo.MessageEmbed) error {
	if len(pages) == 0 {
		return ctx.ReplyEphemeral("No hay nada que mostrar.")
	}
	p := in.NewPaginator(ctx.User().ID, pages)
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{p.Current()},
			Components: p.Components(),
		},
	})
}

// PaginateEdit fills a deferred response with paged embeds
func (in *Interactive) PaginateEdit(ctx *CommandContext, pages []*discordgo.MessageEmbed) error {
	if len(pages) == 0 {
		return ctx.EditReply("No hay nada que mostrar.")
	}
	p := in.NewPaginator(ctx.User().ID, pages)
	components := p.Components()
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{p.Current()},
		Components: &components,
	})
	return err
}

func (in *Interactive) handlePage(ctx *ComponentContext) error {
	if len(ctx.Args) != 2 {
		return nil
	}
	p, ok := in.Paginator(ctx.Args[0])
	if !ok {
		return ctx.Update(&discordgo.InteractionResponseData{Components: []discordgo.MessageComponent{}})
	}
	if ctx.User().ID != p.OwnerID {
		return ctx.ReplyEphemeral(errNotYours)
	}
	if !p.Move(ctx.Args[1]) {
		in.store.Delete(PaginatorPrefix + p.ID)
		return ctx.Update(&discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{p.Current()},
			Components: []discordgo.MessageComponent{},
		})
	}
	in.store.SetDefault(PaginatorPrefix+p.ID, p)
	return ctx.Update(&discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{p.Current()},
		Components: p.Components(),
	})
}

// Confirm fills a deferred response with a yes/no question for the invoking
// user. onYes runs once if accepted.
func (in *Interactive) Confirm(ctx *CommandContext, question string, onYes func(ctx *ComponentContext) error) error {
	id := uuid.NewString()[:8]
	in.store.SetDefault(ConfirmPrefix+id, &confirmation{ownerID: ctx.User().ID, onYes: onYes})
	components := []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Label: "Sí", Style: discordgo.SuccessButton, CustomID: CustomID(ConfirmPrefix, id, "yes")},
		discordgo.Button{Label: "No", Style: discordgo.DangerButton, CustomID: CustomID(ConfirmPrefix, id, "no")},
	}}}
	_, err := ctx.Session.InteractionResponseEdit(ctx.Interaction.Interaction, &discordgo.WebhookEdit{
		Content:    &question,
		Components: &components,
	})
	return err
}

func (in *Interactive) handleConfirm(ctx *ComponentContext) error {
	if len(ctx.Args) != 2 {
		return nil
	}
	v, ok := in.store.Get(ConfirmPrefix + ctx.Args[0])
	if !ok {
		return ctx.Update(&discordgo.InteractionResponseData{
			Content:    "⌛ La confirmación expiró.",
			Components: []discordgo.MessageComponent{},
		})
	}
	c := v.(*confirmation)
	if ctx.User().ID != c.ownerID {
		return ctx.ReplyEphemeral(errNotYours)
	}
	in.store.Delete(ConfirmPrefix + ctx.Args[0])
	if ctx.Args[1] != "yes" {
		return ctx.Update(&discordgo.InteractionResponseData{
			Content:    "Operación cancelada.",
			Components: []discordgo.MessageComponent{},
		})
	}
	return c.onYes(ctx)
}
