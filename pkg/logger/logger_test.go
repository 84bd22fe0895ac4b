package logger

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T, console io.Writer) Options {
	return Options{Dir: t.TempDir(), MaxSizeMB: 1, MaxBackups: 1, Console: console, WebhookRate: 100}
}

func TestConsoleLine(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger("", "", testOptions(t, &out))
	defer l.Close()

	l.Success("listo", "Leveler")
	line := out.String()
	assert.Contains(t, line, "SUCCESS")
	assert.Contains(t, line, "[Leveler]: listo")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestLevelNames(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelWarn, "WARN"},
		{LevelSystem, "SYSTEM"},
		{LogLevel(42), "UNKNOWN"},
		{LogLevel(-1), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestWebhookFor(t *testing.T) {
	l := &Logger{errorWebhookURL: "err", logsWebhookURL: "logs"}
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelCritical, "err"},
		{LevelError, "err"},
		{LevelWarn, "logs"},
		{LevelDebug, "logs"},
	}
	for _, tt := range tests {
		if got := l.webhookFor(tt.level); got != tt.want {
			t.Errorf("webhookFor(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}

	onlyErrors := &Logger{errorWebhookURL: "err"}
	assert.Empty(t, onlyErrors.webhookFor(LevelInfo))
}

func TestLogEmbed(t *testing.T) {
	e := logEmbed(LevelWarn, strings.Repeat("x", 5000), "Captcha")
	assert.Equal(t, "[WARN] Captcha", e.Title)
	assert.Equal(t, 0xFFFF00, e.Color)
	assert.LessOrEqual(t, len([]rune(e.Description)), 4006)
	require.NotNil(t, e.Footer)
}

func TestFilesSplitBySeverity(t *testing.T) {
	opts := testOptions(t, io.Discard)
	l := NewLogger("", "", opts)

	l.Info("mensaje", "TEST")
	l.Error("fallo", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(opts.Dir, "combined.log"))
	require.NoError(t, err)
	errs, err := os.ReadFile(filepath.Join(opts.Dir, "error.log"))
	require.NoError(t, err)

	assert.Contains(t, string(combined), "mensaje")
	assert.Contains(t, string(combined), "fallo")
	assert.NotContains(t, string(errs), "mensaje")
	assert.Contains(t, string(errs), "prefix=TEST")
}

func TestWebhookDelivery(t *testing.T) {
	var mu sync.Mutex
	var titles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params discordgo.WebhookParams
		if err := json.NewDecoder(r.Body).Decode(&params); err == nil && len(params.Embeds) == 1 {
			mu.Lock()
			titles = append(titles, params.Embeds[0].Title)
			mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	l := NewLogger(srv.URL, "", testOptions(t, io.Discard))
	defer l.Close()

	l.Info("no va al webhook", "DB")
	l.Error("sí va", "DB")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(titles) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"[ERROR] DB"}, titles)
}

func TestFullQueueDrops(t *testing.T) {
	l := &Logger{posts: make(chan webhookPost, 1)}
	l.enqueue(webhookPost{url: "a"})
	l.enqueue(webhookPost{url: "b"})
	l.enqueue(webhookPost{url: "c"})
	assert.Equal(t, 2, l.Dropped())
}

func TestCloseIsIdempotent(t *testing.T) {
	l := NewLogger("", "", testOptions(t, io.Discard))
	l.Close()
	assert.NotPanics(t, l.Close)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hola", truncate("hola", 10))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
}

func TestInitReturnsSameLogger(t *testing.T) {
	logger = nil
	once = sync.Once{}

	l := Init("", "", testOptions(t, io.Discard))
	defer l.Close()
	assert.Same(t, l, Init("otro", "otro"))
	assert.Same(t, l, Get())
}
