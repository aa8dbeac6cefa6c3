package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes.
const (
	LoadOK              = "ok"
	LoadFetchError      = "fetch_error"
	LoadInvalidResponse = "invalid_response"
	LoadSuperseded      = "superseded"
	LoadError           = "error"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "tidechart",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	upstreamLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:      "noaa_latency",
			Subsystem: "tidechart",
			Help:      "NOAA prediction request latencies in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0},
		},
	)

	loads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "loads_total",
			Subsystem: "tidechart",
			Help:      "Tide prediction loads by outcome.",
		},
		[]string{"outcome"},
	)

	fallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:      "date_fallbacks_total",
			Subsystem: "tidechart",
			Help:      "Loads for an unavailable day that showed today instead.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		upstreamLatency,
		loads,
		fallbacks,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

func ObserveUpstreamLatency(latency float64) {
	upstreamLatency.Observe(latency)
}

func ObserveLoad(outcome string) {
	loads.WithLabelValues(outcome).Inc()
}

func ObserveFallback() {
	fallbacks.Inc()
}

// LatencyHandler records the latency of every request served by next.
func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}
		rec := &statusRecorder{ResponseWriter: w}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, rec.code(), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) code() string {
	if s.status == 0 {
		// Unset, will be set to 200 by stdlib.
		return "200"
	}
	return strconv.Itoa(s.status)
}
