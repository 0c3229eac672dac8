package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	simulationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plumesim_simulations_total",
			Help: "Total number of plume simulation passes.",
		},
	)

	simulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plumesim_simulation_duration_seconds",
			Help:    "Duration of one plume simulation pass.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	particlesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plumesim_particles_generated_total",
			Help: "Total number of dust particles generated.",
		},
	)

	rendersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plumesim_renders_total",
			Help: "Total number of images rendered.",
		},
	)

	renderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plumesim_render_duration_seconds",
			Help:    "Duration of one simulate-and-render call.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)
)

func init() {
	prometheus.MustRegister(simulationsTotal)
	prometheus.MustRegister(simulationDuration)
	prometheus.MustRegister(particlesGenerated)
	prometheus.MustRegister(rendersTotal)
	prometheus.MustRegister(renderDuration)
}

// RecordSimulation records one simulation pass.
func RecordSimulation(d time.Duration, particles int) {
	simulationsTotal.Inc()
	simulationDuration.Observe(d.Seconds())
	particlesGenerated.Add(float64(particles))
}

// RecordRender records one full render call.
func RecordRender(d time.Duration) {
	rendersTotal.Inc()
	renderDuration.Observe(d.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
