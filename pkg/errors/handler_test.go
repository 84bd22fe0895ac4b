package errors

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func install(t *testing.T, h *ErrorHandler) {
	t.Helper()
	handler = h
	t.Cleanup(func() { handler = nil })
}

func TestRecoverMiddlewareCountsPanics(t *testing.T) {
	h := newErrorHandler("", nil, 100, time.Second)
	install(t, h)

	func() {
		defer RecoverMiddleware()()
		panic("boom")
	}()

	if got := h.Count(); got != 1 {
		t.Errorf("Count() = %v, want %v", got, 1)
	}
}

func TestGoRecovers(t *testing.T) {
	h := newErrorHandler("", nil, 100, time.Second)
	install(t, h)

	var wg sync.WaitGroup
	wg.Add(1)
	Go(func() {
		defer wg.Done()
		panic("fallo en goroutine")
	})
	wg.Wait()

	// the deferred recover runs after wg.Done
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestBudgetTripsShutdownOnce(t *testing.T) {
	var shutdowns, exits int32
	h := newErrorHandler("", func() { atomic.AddInt32(&shutdowns, 1) }, 3, time.Hour)
	h.exit = func(code int) {
		assert.Equal(t, 1, code)
		atomic.AddInt32(&exits, 1)
	}

	for i := 0; i < 3; i++ {
		h.IncrementError()
	}
	assert.Zero(t, atomic.LoadInt32(&exits))

	h.IncrementError()
	h.IncrementError()
	assert.Equal(t, int32(1), atomic.LoadInt32(&shutdowns))
	assert.Equal(t, int32(1), atomic.LoadInt32(&exits))
	assert.Equal(t, int32(5), h.Count())
}

func TestReportWithoutWebhookIsNoop(t *testing.T) {
	h := newErrorHandler("", nil, 1, time.Second)
	h.Report(ReportErrorOptions{Error: "x", Message: "y"})
}

func TestReportPostsEmbed(t *testing.T) {
	var got discordgo.WebhookParams
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := newErrorHandler(srv.URL, nil, 1, time.Second)
	h.Report(ReportErrorOptions{Error: "Critical Error", Message: "Apagando"})

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Error Critical Error", got.Embeds[0].Author.Name)
	assert.Equal(t, "Apagando", got.Embeds[0].Description)
}
