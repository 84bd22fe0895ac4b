// Package errors recovers panics from handlers and shuts the bot down
// when they arrive faster than the error budget allows.
package errors

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/PancyStudios/CogsBotGo/pkg/metrics"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// ErrorHandler counts recovered panics against a token bucket. An empty
// bucket means the bot is failing in a loop and should stop.
type ErrorHandler struct {
	budget       *rate.Limiter
	count        int32
	webhook      *httpx.Client
	webhookURL   string
	shutdownFunc func()
	exit         func(code int)
	tripped      sync.Once
}

// ReportErrorOptions contains options for reporting an error
type ReportErrorOptions struct {
	Error   string
	Message string
}

const (
	defaultMaxErrors = 15
	defaultWindow    = 5 * time.Second
)

var (
	handler *ErrorHandler
	once    sync.Once
)

// Init initializes the global error handler
func Init(webhookURL string, shutdownFunc func()) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(webhookURL, shutdownFunc)
	})
	return handler
}

// Get returns the global error handler instance
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler allows 15 errors every 5 seconds before shutting down
func NewErrorHandler(webhookURL string, shutdownFunc func()) *ErrorHandler {
	return newErrorHandler(webhookURL, shutdownFunc, defaultMaxErrors, defaultWindow)
}

func newErrorHandler(webhookURL string, shutdownFunc func(), maxErrors int, window time.Duration) *ErrorHandler {
	h := &ErrorHandler{
		budget:       rate.NewLimiter(rate.Limit(float64(maxErrors)/window.Seconds()), maxErrors),
		webhookURL:   webhookURL,
		shutdownFunc: shutdownFunc,
		exit:         os.Exit,
	}
	if webhookURL != "" {
		h.webhook = httpx.New("error-reports", httpx.WithRetries(1))
	}
	return h
}

// IncrementError spends one unit of the error budget
func (h *ErrorHandler) IncrementError() {
	count := atomic.AddInt32(&h.count, 1)
	logger.Error(fmt.Sprintf("Error count: %d", count), "AntiCrash")
	if !h.budget.Allow() {
		h.tripped.Do(h.shutdown)
	}
}

func (h *ErrorHandler) shutdown() {
	start := time.Now()
	logger.Warn("Se detectó un número demasiado alto de errores", "CRITICAL")
	logger.Warn("Apagando...", "CRITICAL")

	h.Report(ReportErrorOptions{
		Error:   "Critical Error",
		Message: "Número inusual de errores. Apagando...",
	})
	if h.shutdownFunc != nil {
		h.shutdownFunc()
	}

	logger.Warn(fmt.Sprintf("Finalizando proceso... Tiempo total: %v", time.Since(start)), "CRITICAL")
	h.exit(1)
}

// HandlePanic handles a recovered panic
func (h *ErrorHandler) HandlePanic(recovered interface{}) {
	metrics.Get().Panics.Inc()
	logger.Error(fmt.Sprintf("%v\n%s", recovered, debug.Stack()), "SYS")
	h.IncrementError()
}

// Count returns the errors seen since startup
func (h *ErrorHandler) Count() int32 {
	return atomic.LoadInt32(&h.count)
}

// ReportEmbed is the webhook message for an error report
func ReportEmbed(data ReportErrorOptions) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Author:      &discordgo.MessageEmbedAuthor{Name: fmt.Sprintf("Error %s", data.Error)},
		Description: data.Message,
		Color:       0xFF0000,
		Footer:      &discordgo.MessageEmbedFooter{Text: "CogsBot Go"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// Report sends an error report to the Discord webhook
func (h *ErrorHandler) Report(data ReportErrorOptions) {
	if h.webhook == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	params := discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{ReportEmbed(data)}}
	if err := h.webhook.PostJSON(ctx, h.webhookURL, params, nil); err != nil {
		logger.Error(fmt.Sprintf("Failed to send error report: %v", err), "AntiCrash")
		return
	}
	logger.Warn("Reporte de error enviado al webhook", "AntiCrash")
}

// RecoverMiddleware returns a recovery function for use in deferred calls
func RecoverMiddleware() func() {
	return func() {
		if r := recover(); r != nil {
			if handler != nil {
				handler.HandlePanic(r)
			} else {
				logger.Error(fmt.Sprintf("Panic recovered (no handler): %v", r), "AntiCrash")
			}
		}
	}
}

// Go runs fn in a goroutine guarded by RecoverMiddleware
func Go(fn func()) {
	go func() {
		defer RecoverMiddleware()()
		fn()
	}()
}
