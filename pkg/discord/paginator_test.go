package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pages(n int) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, n)
	for i := range out {
		out[i] = &discordgo.MessageEmbed{Title: string(rune('a' + i))}
	}
	return out
}

func TestPaginatorMove(t *testing.T) {
	p := &Paginator{Pages: pages(3)}
	tests := []struct {
		action string
		want   int
	}{
		{PageNext, 1},
		{PageNext, 2},
		{PageNext, 0},
		{PagePrev, 2},
		{PageFirst, 0},
		{PageLast, 2},
	}
	for _, tt := range tests {
		require.True(t, p.Move(tt.action))
		if p.Index != tt.want {
			t.Errorf("after %s Index = %v, want %v", tt.action, p.Index, tt.want)
		}
	}
	assert.False(t, p.Move(PageClose))
	assert.Equal(t, "c", p.Current().Title)
}

func TestPaginatorComponents(t *testing.T) {
	assert.Nil(t, (&Paginator{ID: "x", Pages: pages(1)}).Components())

	rows := (&Paginator{ID: "x", Pages: pages(2)}).Components()
	require.Len(t, rows, 1)
	row := rows[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 5)
	assert.Equal(t, "pg:x:first", row.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, discordgo.DangerButton, row.Components[2].(discordgo.Button).Style)
}

func TestInteractiveStoresOnlyMultiPage(t *testing.T) {
	in := NewInteractive(NewComponentRouter())
	single := in.NewPaginator("u", pages(1))
	_, ok := in.Paginator(single.ID)
	assert.False(t, ok)

	multi := in.NewPaginator("u", pages(2))
	got, ok := in.Paginator(multi.ID)
	require.True(t, ok)
	assert.Same(t, multi, got)
}

func TestComponentRouter(t *testing.T) {
	r := NewComponentRouter()
	r.Handle("sr", func(*ComponentContext) error { return nil })

	_, args, ok := r.Lookup(CustomID("sr", "123", "456"))
	require.True(t, ok)
	assert.Equal(t, []string{"123", "456"}, args)

	_, _, ok = r.Lookup("nope:1")
	assert.False(t, ok)

	prefix, args := ParseCustomID("solo")
	assert.Equal(t, "solo", prefix)
	assert.Empty(t, args)
}
