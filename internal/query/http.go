package query

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dapr/kit/logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logger.NewLogger("flavorspectra.api")

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier  Querier
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewRouter registers the API routes and the metrics endpoint. Request
// metrics are registered in reg and served from it.
func NewRouter(q Querier, reg *prometheus.Registry) (*mux.Router, error) {
	h := &APIHandler{
		querier: q,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flavorspectra_api_requests_total",
			Help: "API requests by route and status code",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flavorspectra_api_request_duration_seconds",
			Help:    "API request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	for _, c := range []prometheus.Collector{h.requests, h.latency} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register api metrics: %w", err)
		}
	}

	r := mux.NewRouter()
	r.Use(h.instrument)
	r.HandleFunc("/api/v1/runs", h.runsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/samples", h.samplesHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r, nil
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *APIHandler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		h.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		log.Debugf("%s %s -> %d", r.Method, r.URL.RequestURI(), rec.code)
	})
}

// runsHandler lists the runs of the dataset.
func (h *APIHandler) runsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := h.querier.Runs(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query runs: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// samplesHandler returns the chart view of the samples matching the query
// parameters.
func (h *APIHandler) samplesHandler(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.querier.Samples(r.Context(), f)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query samples: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
