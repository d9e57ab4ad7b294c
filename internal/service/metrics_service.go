package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// record store.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	batchSize       prometheus.Histogram
	referralTotal   *prometheus.CounterVec
	marksTotal      prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Duration of record store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "collection"})

	batchSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_batch_size",
		Help:    "Number of operations per committed batch",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})

	referralTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "referral_mutations_total",
		Help: "Referral ledger mutations by kind",
	}, []string{"kind"})

	marksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_marks_total",
		Help: "Total attendance entries written",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, batchSize, referralTotal, marksTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeDuration:   storeDuration,
		batchSize:       batchSize,
		referralTotal:   referralTotal,
		marksTotal:      marksTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request duration and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveStoreOp records a record store operation timing.
func (m *MetricsService) ObserveStoreOp(op, collection string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(op, collection).Observe(duration.Seconds())
}

// ObserveBatch records the size of a committed batch.
func (m *MetricsService) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(size))
}

// RecordReferralMutation counts referral ledger mutations (link, unlink, cascade).
func (m *MetricsService) RecordReferralMutation(kind string) {
	if m == nil {
		return
	}
	m.referralTotal.WithLabelValues(kind).Inc()
}

// RecordAttendanceMarks counts written attendance entries.
func (m *MetricsService) RecordAttendanceMarks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.marksTotal.Add(float64(n))
}
