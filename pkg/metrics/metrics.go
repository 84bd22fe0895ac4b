// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the bot updates.
type Metrics struct {
	Commands        *prometheus.CounterVec
	CommandErrors   *prometheus.CounterVec
	XPGranted       prometheus.Counter
	LevelUps        prometheus.Counter
	CaptchaOutcomes *prometheus.CounterVec
	APILatency      *prometheus.HistogramVec
	ImageRender     *prometheus.HistogramVec
	Panics          prometheus.Counter
	CommandRun      *prometheus.HistogramVec
}

// Collectors lists the collectors for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Commands,
		m.CommandErrors,
		m.XPGranted,
		m.LevelUps,
		m.CaptchaOutcomes,
		m.APILatency,
		m.ImageRender,
		m.Panics,
		m.CommandRun,
	}
}

// New builds a fresh set of collectors.
func New() *Metrics {
	return &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cogsbot",
				Subsystem: "commands",
				Name:      "invocations",
				Help:      "Number of slash command invocations.",
			},
			[]string{"command"},
		),
		CommandErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cogsbot",
				Subsystem: "commands",
				Name:      "errors",
				Help:      "Number of slash commands that returned an error.",
			},
			[]string{"command"},
		),
		XPGranted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cogsbot",
				Subsystem: "leveler",
				Name:      "xp_granted",
				Help:      "Total experience points granted for messages.",
			},
		),
		LevelUps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cogsbot",
				Subsystem: "leveler",
				Name:      "levelups",
				Help:      "Number of level-ups.",
			},
		),
		CaptchaOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cogsbot",
				Subsystem: "captcha",
				Name:      "outcomes",
				Help:      "Finished captcha challenges by outcome.",
			},
			[]string{"outcome"},
		),
		APILatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				Namespace: "cogsbot",
				Subsystem: "httpx",
				Name:      "request_seconds",
				Help:      "Latency of outbound API requests in seconds.",
			},
			[]string{"service", "status"},
		),
		ImageRender: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
				Namespace: "cogsbot",
				Subsystem: "images",
				Name:      "render_seconds",
				Help:      "Time spent drawing generated images in seconds.",
			},
			[]string{"kind"},
		),
		Panics: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "cogsbot",
				Name:      "recovered_panics",
				Help:      "Panics recovered in handlers and goroutines.",
			},
		),
		CommandRun: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
				Namespace: "cogsbot",
				Subsystem: "commands",
				Name:      "run_seconds",
				Help:      "Time spent in slash command handlers in seconds.",
			},
			[]string{"command"},
		),
	}
}

var (
	global *Metrics
	once   sync.Once
)

// Init registers the global collectors with reg. Calling it again is a no-op.
func Init(reg prometheus.Registerer) *Metrics {
	once.Do(func() {
		global = New()
		if reg != nil {
			reg.MustRegister(global.Collectors()...)
		}
	})
	return global
}

// Get returns the global metrics, creating unregistered collectors when Init was never called.
func Get() *Metrics {
	once.Do(func() {
		global = New()
	})
	return global
}

// ObserveSince records the seconds elapsed from start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
