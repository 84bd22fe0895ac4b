package main

import (
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jedib0t/go-pretty/table"
)

// Change is what a sync does to one top level command
type Change string

const (
	ChangeCreate Change = "crear"
	ChangeUpdate Change = "actualizar"
	ChangeDelete Change = "eliminar"
	ChangeKeep   Change = "sin cambios"
)

// Step is one row of a sync plan
type Step struct {
	Name   string
	Change Change
}

// ignoreServerFields drops what Discord fills in on its side
var ignoreServerFields = cmp.Options{
	cmpopts.IgnoreFields(discordgo.ApplicationCommand{}, "ID", "ApplicationID", "GuildID", "Version", "Type"),
	cmpopts.EquateEmpty(),
}

// Plan compares the local definitions with the ones Discord has.
// Steps are sorted by name.
func Plan(local, remote []*discordgo.ApplicationCommand) []Step {
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, cmd := range remote {
		remoteByName[cmd.Name] = cmd
	}

	steps := make([]Step, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(local))
	for _, cmd := range local {
		seen[cmd.Name] = true
		existing, ok := remoteByName[cmd.Name]
		switch {
		case !ok:
			steps = append(steps, Step{cmd.Name, ChangeCreate})
		case !cmp.Equal(*cmd, *existing, ignoreServerFields):
			steps = append(steps, Step{cmd.Name, ChangeUpdate})
		default:
			steps = append(steps, Step{cmd.Name, ChangeKeep})
		}
	}
	for _, cmd := range remote {
		if !seen[cmd.Name] {
			steps = append(steps, Step{cmd.Name, ChangeDelete})
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Name < steps[j].Name })
	return steps
}

// Pending reports whether any step changes something
func Pending(steps []Step) bool {
	for _, s := range steps {
		if s.Change != ChangeKeep {
			return true
		}
	}
	return false
}

// RenderPlan draws the plan as a table
func RenderPlan(steps []Step) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Comando", "Cambio"})
	for _, s := range steps {
		t.AppendRow(table.Row{"/" + s.Name, string(s.Change)})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}

// RenderRemote draws the commands Discord has registered
func RenderRemote(cmds []*discordgo.ApplicationCommand) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Comando", "Descripción", "ID"})
	for i, cmd := range cmds {
		t.AppendRow(table.Row{i + 1, "/" + cmd.Name, cmd.Description, cmd.ID})
	}
	t.SetStyle(table.StyleLight)
	return t.Render()
}
