// Package web serves the bot's HTTP API: health and status probes,
// leveler leaderboards, the live event stream and prometheus metrics.
package web

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/PancyStudios/CogsBotGo/pkg/httpx"
	"github.com/PancyStudios/CogsBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Server represents the web server
type Server struct {
	engine       *gin.Engine
	webhook      *httpx.Client
	webhookURL   string
	allowedHosts *regexp.Regexp
	limiters     *cache.Cache
	opts         Options
}

// Options tune the per-client rate limit
type Options struct {
	PerMinute int
	Burst     int
}

// DefaultOptions allow 100 requests per minute per IP
func DefaultOptions() Options {
	return Options{PerMinute: 100, Burst: 20}
}

var server *Server

// Init initializes the global web server
func Init(webhookURL, allowedHosts string) *Server {
	server = NewServer(webhookURL, allowedHosts)
	return server
}

// Get returns the global web server
func Get() *Server {
	return server
}

// NewServer creates a web server. Requests whose Host does not match
// allowedHosts are reported to the webhook and rejected.
func NewServer(webhookURL, allowedHosts string, opts ...Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}

	s := &Server{
		engine:       gin.New(),
		allowedHosts: regexp.MustCompile(allowedHosts),
		limiters:     cache.New(10*time.Minute, 15*time.Minute),
		opts:         o,
		webhookURL:   webhookURL,
	}
	if webhookURL != "" {
		s.webhook = httpx.New("web-logs", httpx.WithRetries(1))
	}

	s.engine.Use(gin.Recovery(), s.hostFilter(), s.rateLimit())
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found", "message": "La ruta solicitada no existe.", "status": http.StatusNotFound})
	})
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed", "message": "El método HTTP no está permitido para esta ruta.", "status": http.StatusMethodNotAllowed})
	})
	return s
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) hostFilter() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := requestLog{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			IP:     c.ClientIP(),
			Query:  c.Request.URL.RawQuery,
			Header: c.Request.Header.Clone(),
		}
		if !s.allowedHosts.MatchString(c.Request.Host) {
			logger.Warn(fmt.Sprintf("Solicitud sospechosa: %s %s | %s", req.Method, req.Path, req.IP), "WebServer")
			req.Suspicious = true
			go s.report(req)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		logger.Debug(fmt.Sprintf("Solicitud: %s %s", req.Method, req.Path), "WebServer")
		go s.report(req)
		c.Next()
	}
}

func (s *Server) limiter(ip string) *rate.Limiter {
	if l, ok := s.limiters.Get(ip); ok {
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rate.Limit(float64(s.opts.PerMinute)/60), s.opts.Burst)
	// Add fails when another request stored one first
	if err := s.limiters.Add(ip, l, cache.DefaultExpiration); err != nil {
		if existing, ok := s.limiters.Get(ip); ok {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.opts.PerMinute <= 0 {
			c.Next()
			return
		}
		if !s.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas solicitudes, por favor intente de nuevo más tarde.",
			})
			return
		}
		c.Next()
	}
}

type requestLog struct {
	Method     string
	Path       string
	IP         string
	Query      string
	Header     http.Header
	Suspicious bool
}

func (r requestLog) embed() *discordgo.MessageEmbed {
	headers, _ := json.Marshal(r.Header)
	query := r.Query
	if query == "" {
		query = "{}"
	}
	e := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("💫 | Nueva solicitud al servidor web de tipo %s", r.Method),
		Description: fmt.Sprintf("> **Ruta:** `%s`\n> **IP:** `%s`\n> **Headers:** ```%s```\n> **Query:** ```%s```",
			r.Path, r.IP, headers, query),
		Color:     0x00AE86,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if r.Suspicious {
		e.Title = fmt.Sprintf("💫 | Solicitud Sospechosa Rechazada: %s %s", r.Method, r.Path)
		e.Color = 0xFFA500
	}
	return e
}

func (s *Server) report(r requestLog) {
	if s.webhook == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	params := discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{r.embed()}}
	if err := s.webhook.PostJSON(ctx, s.webhookURL, params, nil); err != nil {
		logger.Debug(fmt.Sprintf("Webhook de solicitudes: %v", err), "WebServer")
	}
}

// Start starts the web server
func (s *Server) Start(port string) error {
	logger.Info(fmt.Sprintf("🚀 Servidor escuchando en http://localhost:%s", port), "WebServer")
	return s.engine.Run(":" + port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(port string) {
	go func() {
		if err := s.Start(port); err != nil {
			logger.Error(fmt.Sprintf("Error starting web server: %v", err), "WebServer")
		}
	}()
}

// GET registers a GET route
func (s *Server) GET(path string, handlers ...gin.HandlerFunc) {
	s.engine.GET(path, handlers...)
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}
