package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amalg/go-snake/internal/game"
)

// Recorder turns engine frames into Prometheus metrics.
type Recorder struct {
	started  prometheus.Counter
	finished *prometheus.CounterVec
	eaten    prometheus.Counter
	ticks    prometheus.Counter
	length   prometheus.Gauge
	duration prometheus.Histogram
}

// NewRecorder creates the snake metrics and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snake_games_started_total",
			Help: "Total number of games started",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snake_games_finished_total",
			Help: "Total number of finished games by outcome and cause",
		}, []string{"outcome", "cause"}),
		eaten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snake_food_eaten_total",
			Help: "Total number of food cells eaten",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snake_ticks_total",
			Help: "Total number of ticks that advanced a game",
		}),
		length: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "snake_length",
			Help: "Current snake length",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "snake_tick_duration_seconds",
			Help:    "Histogram of tick processing time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}
	reg.MustRegister(r.started, r.finished, r.eaten, r.ticks, r.length, r.duration)
	return r
}

// ObserveFrame implements game.Observer.
func (r *Recorder) ObserveFrame(f game.Frame, took time.Duration) {
	r.length.Set(float64(f.Length))

	// The engine emits a reset frame once per new session.
	if f.Reset {
		r.started.Inc()
		return
	}

	r.ticks.Inc()
	r.duration.Observe(took.Seconds())
	if f.Ate {
		r.eaten.Inc()
	}
	if f.Status.Terminal() {
		r.finished.WithLabelValues(f.Status.String(), f.Cause.String()).Inc()
	}
}
