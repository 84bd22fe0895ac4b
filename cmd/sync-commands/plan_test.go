package main

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func appCmd(name, desc string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: name, Description: desc}
}

func TestPlan(t *testing.T) {
	local := []*discordgo.ApplicationCommand{
		appCmd("profile", "Tarjeta de perfil"),
		appCmd("rank", "Tarjeta de rango"),
		appCmd("weather", "Clima actual"),
	}
	remoteRank := appCmd("rank", "Tarjeta de rango")
	remoteRank.ID = "1"
	remoteRank.Version = "7"
	remote := []*discordgo.ApplicationCommand{
		remoteRank,
		appCmd("weather", "Clima"),
		appCmd("play", "Música"),
	}

	want := []Step{
		{"play", ChangeDelete},
		{"profile", ChangeCreate},
		{"rank", ChangeKeep},
		{"weather", ChangeUpdate},
	}
	got := Plan(local, remote)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, Pending(got))
}

func TestPlanInSync(t *testing.T) {
	local := []*discordgo.ApplicationCommand{appCmd("cogs", "Utilidades")}
	remote := []*discordgo.ApplicationCommand{{ID: "9", Name: "cogs", Description: "Utilidades", Options: []*discordgo.ApplicationCommandOption{}}}
	steps := Plan(local, remote)
	assert.Equal(t, []Step{{"cogs", ChangeKeep}}, steps)
	assert.False(t, Pending(steps))
}

func TestPlanClean(t *testing.T) {
	steps := Plan(nil, []*discordgo.ApplicationCommand{appCmd("a", "x")})
	assert.Equal(t, []Step{{"a", ChangeDelete}}, steps)
}

func TestRenderPlan(t *testing.T) {
	out := RenderPlan([]Step{{"profile", ChangeCreate}})
	assert.Contains(t, out, "/profile")
	assert.Contains(t, out, "crear")
}
