// metrics.go — Prometheus HTTP метрики.
// Регистрирует метрики: ss_http_requests_total, ss_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ss_http_requests_total",
			Help: "Общее количество HTTP-запросов",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ss_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем идентификаторы и токены на плейсхолдеры,
			// иначе кардинальность метрик растёт с каждым объектом)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет динамические сегменты пути на плейсхолдеры.
// /site/a1b2.../materials/c3d4... → /site/{siteId}/materials/{id}
func normalizePath(path string) string {
	// Статические пути — возвращаем как есть
	switch path {
	case "/", "/login", "/signup", "/review", "/manual-entry",
		"/health", "/health/live", "/health/ready", "/metrics",
		"/auth/login", "/auth/signup", "/auth/logout",
		"/sites", "/active-site", "/set-active-site",
		"/upload-invoice-image", "/extract-invoice", "/submit-invoice",
		"/admin/upload-links", "/admin/upload-links-dashboard":
		return path
	}

	segments := strings.Split(path, "/")

	switch {
	case len(segments) >= 3 && segments[1] == "site":
		segments[2] = "{siteId}"
		// /site/{siteId}/materials/{id}[/delete]
		if len(segments) >= 5 && segments[3] == "materials" {
			segments[4] = "{id}"
		}
	case len(segments) >= 3 && segments[1] == "sites":
		segments[2] = "{id}"
	case len(segments) >= 3 && segments[1] == "upload":
		segments[2] = "{token}"
	case len(segments) >= 3 && segments[1] == "upload-link":
		segments[2] = "{token}"
	case len(segments) >= 4 && segments[1] == "admin" && segments[2] == "upload-links":
		segments[3] = "{id}"
	}

	return strings.Join(segments, "/")
}
