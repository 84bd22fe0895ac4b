package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/PancyStudios/CogsBotGo/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, r Routes) *Server {
	t.Helper()
	s := NewServer("", `.*`)
	SetupAPIRoutes(s, r)
	return s
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthBeforeReady(t *testing.T) {
	w := get(testServer(t, Routes{}), "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"starting"}`, w.Body.String())
}

func TestStatusWithoutServices(t *testing.T) {
	w := get(testServer(t, Routes{}), "/api/status")
	require.Equal(t, http.StatusOK, w.Code)

	var st StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.False(t, st.Bot.Online)
	assert.False(t, st.Database.Online)
	assert.Equal(t, "🔴 | Desconectado", st.Database.Detail)
	assert.Zero(t, st.PendingWrites)
}

func TestRejectsUnknownHosts(t *testing.T) {
	s := NewServer("", `^localhost$`)
	SetupAPIRoutes(s, Routes{})
	w := get(s, "/api/health")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLevelerTop(t *testing.T) {
	store := leveler.NewMemoryStore()
	for _, u := range []*models.LevelerUser{
		{UserID: "a", Username: "alice", Servers: map[string]models.ServerStats{"g1": {Level: 3, CurrentExp: 10}}},
		{UserID: "b", Username: "bob", Servers: map[string]models.ServerStats{"g1": {Level: 5}}},
		{UserID: "c", Username: "carol", Servers: map[string]models.ServerStats{"g1": {Level: 1}}},
	} {
		require.NoError(t, store.SaveUser(u))
	}
	s := testServer(t, Routes{Leveler: leveler.NewService(store)})

	w := get(s, "/api/leveler/guilds/g1/top?limit=2")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Total   int `json:"total"`
		Entries []struct {
			Pos    int    `json:"pos"`
			UserID string `json:"userId"`
			Level  int    `json:"level"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "b", body.Entries[0].UserID)
	assert.Equal(t, 5, body.Entries[0].Level)
	assert.Equal(t, "a", body.Entries[1].UserID)
}

func TestTopLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 10},
		{"limit=5", 5},
		{"limit=0", 10},
		{"limit=abc", 10},
		{"limit=500", 100},
	}
	for _, tt := range tests {
		s := NewServer("", `.*`)
		var got int
		s.GET("/x", func(c *gin.Context) { got = topLimit(c) })
		get(s, "/x?"+tt.query)
		if got != tt.want {
			t.Errorf("topLimit(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "cogsbot_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	w := get(testServer(t, Routes{Gatherer: reg}), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cogsbot_test_total 1")

	w = get(testServer(t, Routes{}), "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(testServer(t, Routes{Hub: hub}).Engine())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/events", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Broadcast("leveler/levelup", map[string]int{"level": 4})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		Topic string         `json:"topic"`
		Data  map[string]int `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "leveler/levelup", ev.Topic)
	assert.Equal(t, 4, ev.Data["level"])
}
