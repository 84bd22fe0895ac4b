package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/config"
	"github.com/PancyStudios/CogsBotGo/pkg/database"
	"github.com/PancyStudios/CogsBotGo/pkg/discord"
	"github.com/PancyStudios/CogsBotGo/pkg/leveler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes holds what the API handlers read from
type Routes struct {
	Leveler *leveler.Service
	Hub     *Hub
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, r Routes) {
	api := s.Group("/api")
	{
		api.GET("/status", statusHandler)
		api.GET("/health", healthHandler)
		api.GET("/bot", botInfoHandler)
		if r.Leveler != nil {
			api.GET("/leveler/guilds/:guild/top", r.topHandler)
			api.GET("/leveler/top", r.globalTopHandler)
		}
		if r.Hub != nil {
			api.GET("/events", r.Hub.Handler)
		}
	}
	if r.Gatherer != nil {
		s.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true})))
	}
}

// ServiceStatus is one line of /api/status
type ServiceStatus struct {
	Online bool   `json:"online"`
	Detail string `json:"detail,omitempty"`
}

// StatusResponse is the body of /api/status
type StatusResponse struct {
	Version       string        `json:"version"`
	Uptime        string        `json:"uptime,omitempty"`
	Bot           ServiceStatus `json:"bot"`
	Database      ServiceStatus `json:"database"`
	PendingWrites int           `json:"pendingWrites"`
	Guilds        int           `json:"guilds"`
	Commands      int           `json:"commands"`
}

// currentStatus reads the global client and database, both may be nil
func currentStatus() StatusResponse {
	out := StatusResponse{Version: config.Version}

	db := database.Get()
	out.Database.Detail, out.Database.Online = db.GetStatus()
	if db != nil {
		out.PendingWrites = db.PendingWrites()
	}
	if client := discord.Get(); client != nil {
		out.Bot.Online = client.IsReady()
		out.Guilds = client.GuildCount()
		out.Commands = client.Commands.Size()
		if !client.StartTime.IsZero() {
			out.Uptime = time.Since(client.StartTime).Round(time.Second).String()
		}
	}
	return out
}

func statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, currentStatus())
}

// healthHandler answers 503 until the gateway is ready
func healthHandler(c *gin.Context) {
	if st := currentStatus(); !st.Bot.Online {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// botInfoHandler describes the bot account
func botInfoHandler(c *gin.Context) {
	client := discord.Get()
	if client == nil || !client.IsReady() || client.Session.State.User == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "El bot no está disponible en este momento.",
		})
		return
	}
	user := client.Session.State.User
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.AvatarURL("256"),
		"guilds":   client.GuildCount(),
		"commands": client.Commands.Keys(),
	})
}

// topLimit reads ?limit=, between 1 and 100
func topLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || n < 1 {
		return 10
	}
	if n > 100 {
		return 100
	}
	return n
}

func (r Routes) writeBoard(c *gin.Context, q leveler.BoardQuery) {
	board, err := r.Leveler.Leaderboard(q)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Leveler Unavailable",
			"message": "No se pudo leer la clasificación.",
		})
		return
	}
	entries := board.Entries
	if limit := topLimit(c); len(entries) > limit {
		entries = entries[:limit]
	}
	rows := make([]gin.H, len(entries))
	for i, e := range entries {
		rows[i] = gin.H{"pos": e.Pos, "userId": e.UserID, "name": e.Name, "value": e.Value, "level": e.Level}
	}
	c.JSON(http.StatusOK, gin.H{
		"title":   board.Title,
		"kind":    board.Kind,
		"isLevel": board.IsLevel,
		"total":   len(board.Entries),
		"entries": rows,
	})
}

// topHandler returns the exp or rep (?rep=true) leaderboard of a guild
func (r Routes) topHandler(c *gin.Context) {
	guildID := c.Param("guild")
	name := guildID
	if client := discord.Get(); client != nil {
		if g, err := client.Session.State.Guild(guildID); err == nil {
			name = g.Name
		}
	}
	rep, _ := strconv.ParseBool(c.Query("rep"))
	r.writeBoard(c, leveler.BoardQuery{GuildID: guildID, GuildName: name, Rep: rep})
}

// globalTopHandler returns the leaderboard across every guild
func (r Routes) globalTopHandler(c *gin.Context) {
	rep, _ := strconv.ParseBool(c.Query("rep"))
	r.writeBoard(c, leveler.BoardQuery{Global: true, BotName: "CogsBot", Rep: rep})
}
