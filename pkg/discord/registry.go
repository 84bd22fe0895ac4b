package discord

import (
	"maps"
	"slices"
	"sync"
)

// CommandCollection maps registry keys ("name", "group.sub",
// "group.subgroup.sub") to the commands they run.
type CommandCollection struct {
	mu       sync.RWMutex
	commands map[string]*Command
}

func NewCommandCollection() *CommandCollection {
	return &CommandCollection{commands: make(map[string]*Command)}
}

func (cc *CommandCollection) Set(key string, cmd *Command) {
	cc.mu.Lock()
	cc.commands[key] = cmd
	cc.mu.Unlock()
}

func (cc *CommandCollection) Get(key string) (*Command, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	cmd, ok := cc.commands[key]
	return cmd, ok
}

func (cc *CommandCollection) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.commands)
}

// All returns a copy of the registry
func (cc *CommandCollection) All() map[string]*Command {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return maps.Clone(cc.commands)
}

// Keys returns the registry keys in order
func (cc *CommandCollection) Keys() []string {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return slices.Sorted(maps.Keys(cc.commands))
}
