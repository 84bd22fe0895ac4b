// Package logger writes the bot's logs to the colored console, to rotating
// files under the logs directory and, when configured, to Discord webhooks.
package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel is the severity of a message. Lower is more severe.
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
)

type levelStyle struct {
	name  string
	ansi  string
	embed int
	file  logrus.Level
}

var styles = [...]levelStyle{
	LevelCritical: {"CRITICAL", "\033[1;31m", 0xFF0000, logrus.ErrorLevel},
	LevelError:    {"ERROR", "\033[31m", 0xFF0000, logrus.ErrorLevel},
	LevelWarn:     {"WARN", "\033[33m", 0xFFFF00, logrus.WarnLevel},
	LevelSuccess:  {"SUCCESS", "\033[32m", 0x00FF00, logrus.InfoLevel},
	LevelInfo:     {"INFO", "\033[36m", 0x0000FF, logrus.InfoLevel},
	LevelDebug:    {"DEBUG", "\033[35m", 0x800080, logrus.DebugLevel},
	LevelSystem:   {"SYSTEM", "\033[34m", 0x808080, logrus.InfoLevel},
}

var unknownStyle = levelStyle{"UNKNOWN", "\033[0m", 0xFFFFFF, logrus.InfoLevel}

func (l LogLevel) style() levelStyle {
	if l < 0 || int(l) >= len(styles) {
		return unknownStyle
	}
	return styles[l]
}

func (l LogLevel) String() string { return l.style().name }

const colorReset = "\033[0m"

// webhookQueue bounds the messages waiting to be posted; extra ones are dropped
const webhookQueue = 256

// Options controls where log files are written and how they rotate
type Options struct {
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	// Console receives the colored lines, os.Stdout when nil
	Console io.Writer
	// WebhookRate is how many webhook posts per second are allowed
	WebhookRate float64
}

// DefaultOptions writes to ./logs with 20MB files and five backups
func DefaultOptions() Options {
	return Options{Dir: "logs", MaxSizeMB: 20, MaxBackups: 5, WebhookRate: 1}
}

type webhookPost struct {
	url   string
	embed *discordgo.MessageEmbed
}

// Logger fans every message out to its outputs
type Logger struct {
	mu      sync.Mutex
	console io.Writer

	combined     *logrus.Logger
	errors       *logrus.Logger
	combinedFile *lumberjack.Logger
	errorFile    *lumberjack.Logger

	errorWebhookURL string
	logsWebhookURL  string
	httpClient      *http.Client
	limiter         *rate.Limiter
	posts           chan webhookPost
	dropped         int
	stop            context.CancelFunc
	done            chan struct{}
	closeOnce       sync.Once
}

var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(errorWebhook, logsWebhook string, opts ...Options) *Logger {
	once.Do(func() {
		logger = NewLogger(errorWebhook, logsWebhook, opts...)
	})
	return logger
}

// Get returns the global logger, creating a console and file one if Init was never called
func Get() *Logger {
	once.Do(func() {
		logger = NewLogger("", "")
	})
	return logger
}

// NewLogger creates a Logger. Webhook posts are sent by a background
// worker that stops on Close.
func NewLogger(errorWebhook, logsWebhook string, opts ...Options) *Logger {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Console == nil {
		o.Console = os.Stdout
	}
	if o.WebhookRate <= 0 {
		o.WebhookRate = 1
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		fmt.Fprintf(o.Console, "No se pudo crear el directorio de logs: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Logger{
		console:         o.Console,
		errorWebhookURL: errorWebhook,
		logsWebhookURL:  logsWebhook,
		httpClient:      &http.Client{Timeout: 5 * time.Second},
		limiter:         rate.NewLimiter(rate.Limit(o.WebhookRate), 5),
		posts:           make(chan webhookPost, webhookQueue),
		stop:            cancel,
		done:            make(chan struct{}),
		combinedFile:    rotating(o, "combined.log"),
		errorFile:       rotating(o, "error.log"),
	}
	l.combined = newFileLogrus(l.combinedFile)
	l.errors = newFileLogrus(l.errorFile)

	go l.postLoop(ctx)
	return l
}

func rotating(o Options, name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(o.Dir, name),
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
	}
}

// newFileLogrus builds a plain text logrus logger on top of a rotating file
func newFileLogrus(out io.Writer) *logrus.Logger {
	lr := logrus.New()
	lr.SetOutput(out)
	lr.SetLevel(logrus.TraceLevel)
	lr.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	return lr
}

func (l *Logger) log(level LogLevel, message string, prefix string) {
	st := level.style()

	l.mu.Lock()
	fmt.Fprintf(l.console, "[%s] [%s%s%s] [%s]: %s\n",
		time.Now().Format("2006-01-02 15:04:05"), st.ansi, st.name, colorReset, prefix, message)

	fields := logrus.Fields{"level_name": st.name, "prefix": prefix}
	l.combined.WithFields(fields).Log(st.file, message)
	if level <= LevelError {
		l.errors.WithFields(fields).Log(st.file, message)
	}
	l.mu.Unlock()

	if url := l.webhookFor(level); url != "" {
		l.enqueue(webhookPost{url: url, embed: logEmbed(level, message, prefix)})
	}
}

// webhookFor picks the error webhook for errors and the logs webhook for the rest
func (l *Logger) webhookFor(level LogLevel) string {
	if level <= LevelError {
		return l.errorWebhookURL
	}
	return l.logsWebhookURL
}

func logEmbed(level LogLevel, message, prefix string) *discordgo.MessageEmbed {
	st := level.style()
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("[%s] %s", st.name, prefix),
		Description: "```" + truncate(message, 4000) + "```",
		Color:       st.embed,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "CogsBot Go"},
	}
}

func (l *Logger) enqueue(p webhookPost) {
	select {
	case l.posts <- p:
	default:
		l.mu.Lock()
		l.dropped++
		l.mu.Unlock()
	}
}

// Dropped returns how many webhook posts were discarded because the queue was full
func (l *Logger) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

func (l *Logger) postLoop(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-l.posts:
			if err := l.limiter.Wait(ctx); err != nil {
				return
			}
			_ = l.post(ctx, p)
		}
	}
}

func (l *Logger) post(ctx context.Context, p webhookPost) error {
	body, err := json.Marshal(discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{p.embed}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// Close stops the webhook worker and closes the log files
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		l.stop()
		<-l.done
		_ = l.combinedFile.Close()
		_ = l.errorFile.Close()
	})
}

// Logging methods

// Critical logs a critical message
func (l *Logger) Critical(message string, prefix string) {
	l.log(LevelCritical, message, prefix)
}

// Error logs an error message
func (l *Logger) Error(message string, prefix string) {
	l.log(LevelError, message, prefix)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, prefix string) {
	l.log(LevelWarn, message, prefix)
}

// Success logs a success message
func (l *Logger) Success(message string, prefix string) {
	l.log(LevelSuccess, message, prefix)
}

// Info logs an info message
func (l *Logger) Info(message string, prefix string) {
	l.log(LevelInfo, message, prefix)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, prefix string) {
	l.log(LevelDebug, message, prefix)
}

// System logs a system message
func (l *Logger) System(message string, prefix string) {
	l.log(LevelSystem, message, prefix)
}

// Package-level functions for convenience

// Critical logs a critical message using the global logger
func Critical(message string, prefix string) {
	Get().Critical(message, prefix)
}

// Error logs an error message using the global logger
func Error(message string, prefix string) {
	Get().Error(message, prefix)
}

// Warn logs a warning message using the global logger
func Warn(message string, prefix string) {
	Get().Warn(message, prefix)
}

// Success logs a success message using the global logger
func Success(message string, prefix string) {
	Get().Success(message, prefix)
}

// Info logs an info message using the global logger
func Info(message string, prefix string) {
	Get().Info(message, prefix)
}

// Debug logs a debug message using the global logger
func Debug(message string, prefix string) {
	Get().Debug(message, prefix)
}

// System logs a system message using the global logger
func System(message string, prefix string) {
	Get().System(message, prefix)
}
