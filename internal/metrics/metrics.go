package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the web app.
// All Record methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec

	LoginsTotal   *prometheus.CounterVec
	SignupsTotal  prometheus.Counter
	MessagesTotal *prometheus.CounterVec
	LikesTotal    *prometheus.CounterVec
	FollowsTotal  *prometheus.CounterVec

	TimelineCacheTotal *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warbler_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	loginsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warbler_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	signupsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warbler_signups_total",
			Help: "Successful signups",
		},
	)

	messagesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warbler_messages_total",
			Help: "Messages posted and deleted",
		},
		[]string{"action"},
	)

	likesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warbler_likes_total",
			Help: "Like toggles by resulting state",
		},
		[]string{"action"},
	)

	followsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warbler_follows_total",
			Help: "Follow and unfollow requests",
		},
		[]string{"action"},
	)

	timelineCacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warbler_timeline_cache_total",
			Help: "Home timeline cache lookups by result",
		},
		[]string{"result"},
	)

	registry.MustRegister(
		httpRequestDuration,
		loginsTotal,
		signupsTotal,
		messagesTotal,
		likesTotal,
		followsTotal,
		timelineCacheTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:            registry,
		HTTPRequestDuration: httpRequestDuration,
		LoginsTotal:         loginsTotal,
		SignupsTotal:        signupsTotal,
		MessagesTotal:       messagesTotal,
		LikesTotal:          likesTotal,
		FollowsTotal:        followsTotal,
		TimelineCacheTotal:  timelineCacheTotal,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordLogin records a login attempt. result is "success" or a failure reason.
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordSignup() {
	if m == nil {
		return
	}
	m.SignupsTotal.Inc()
}

// RecordMessage records "posted" or "deleted".
func (m *Metrics) RecordMessage(action string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordLike(liked bool) {
	if m == nil {
		return
	}
	action := "unliked"
	if liked {
		action = "liked"
	}
	m.LikesTotal.WithLabelValues(action).Inc()
}

// RecordFollow records "follow" or "unfollow".
func (m *Metrics) RecordFollow(action string) {
	if m == nil {
		return
	}
	m.FollowsTotal.WithLabelValues(action).Inc()
}

// RecordTimelineCache records "hit", "miss" or "error".
func (m *Metrics) RecordTimelineCache(result string) {
	if m == nil {
		return
	}
	m.TimelineCacheTotal.WithLabelValues(result).Inc()
}

type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// InstrumentHandler observes request duration labelled by chi route pattern.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		m.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}
