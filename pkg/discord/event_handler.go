package discord

import (
	"fmt"
	"sort"
	"sync"

	"github.com/PancyStudios/CogsBotGo/pkg/logger"
)

// EventHandler keeps track of the gateway handlers each cog adds so they
// can be listed at startup and detached on shutdown.
type EventHandler struct {
	client   *ExtendedClient
	mu       sync.Mutex
	handlers map[string][]func()
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{
		client:   client,
		handlers: make(map[string][]func()),
	}
}

// On attaches a discordgo handler under a readable event name.
// handler must be one of the func(*discordgo.Session, *discordgo.X) shapes discordgo accepts.
func (eh *EventHandler) On(event string, handler interface{}) {
	remove := eh.client.Session.AddHandler(handler)

	eh.mu.Lock()
	eh.handlers[event] = append(eh.handlers[event], remove)
	eh.mu.Unlock()

	logger.Debug(fmt.Sprintf("Evento '%s' registrado", event), "EventHandler")
}

// Counts returns how many handlers are attached per event
func (eh *EventHandler) Counts() map[string]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	out := make(map[string]int, len(eh.handlers))
	for name, list := range eh.handlers {
		out[name] = len(list)
	}
	return out
}

// LoadEvents logs the attached handlers. It fails when no cog registered any.
func (eh *EventHandler) LoadEvents() error {
	counts := eh.Counts()
	if len(counts) == 0 {
		return ErrNoEvents
	}
	names := make([]string, 0, len(counts))
	total := 0
	for name, n := range counts {
		names = append(names, name)
		total += n
	}
	sort.Strings(names)
	logger.System(fmt.Sprintf("%d handlers en %d eventos: %v", total, len(names), names), "EventHandler")
	return nil
}

// RemoveAll detaches every handler
func (eh *EventHandler) RemoveAll() {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	for name, list := range eh.handlers {
		for _, remove := range list {
			remove()
		}
		delete(eh.handlers, name)
	}
}
