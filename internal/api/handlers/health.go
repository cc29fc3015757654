// health.go — обработчики health endpoints.
// /health — проверка хранилища для внешнего мониторинга
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (PostgreSQL + внешние сервисы)
// /metrics — Prometheus метрики
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arturkryukov/stroysklad/internal/config"
)

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status string, message string)
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	pgChecker        ReadinessChecker
	idpChecker       ReadinessChecker
	extractorChecker ReadinessChecker
	promHandler      http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// Любой checker может быть nil (readiness вернёт "fail" для nil зависимостей).
func NewHealthHandler(pgChecker, idpChecker, extractorChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		pgChecker:        pgChecker,
		idpChecker:       idpChecker,
		extractorChecker: extractorChecker,
		promHandler:      promhttp.Handler(),
	}
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse — ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse — ответ readiness probe.
type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		PostgreSQL healthCheckResult `json:"postgresql"`
		Identity   healthCheckResult `json:"identity"`
		Extractor  healthCheckResult `json:"extractor"`
	} `json:"checks"`
}

// Health — GET /health. Проверяет доступность хранилища.
// 200 {"status":"ok"} при доступной БД, 500 при недоступной.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.pgChecker == nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(healthCheckResult{Status: "fail", Message: "хранилище не инициализировано"})
		return
	}

	status, message := h.pgChecker.CheckReady()
	if status == "fail" {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(healthCheckResult{Status: "fail", Message: message})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthCheckResult{Status: "ok"})
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	resp := healthLiveResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "stroysklad",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthReady — readiness probe. Проверяет PostgreSQL, провайдер
// идентификации и сервис распознавания.
// Возвращает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "stroysklad",
	}

	resp.Checks.PostgreSQL = runCheck(h.pgChecker)
	resp.Checks.Identity = runCheck(h.idpChecker)

	// Сервис распознавания не критичен: без него остаётся ручной ввод
	resp.Checks.Extractor = runCheck(h.extractorChecker)
	if resp.Checks.Extractor.Status == "fail" {
		resp.Checks.Extractor.Status = "degraded"
	}

	resp.Status = overallStatus(
		resp.Checks.PostgreSQL.Status,
		resp.Checks.Identity.Status,
		resp.Checks.Extractor.Status,
	)

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == "fail" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// runCheck выполняет проверку одной зависимости.
func runCheck(checker ReadinessChecker) healthCheckResult {
	if checker == nil {
		return healthCheckResult{Status: "fail", Message: "не инициализирован"}
	}
	status, message := checker.CheckReady()
	return healthCheckResult{Status: status, Message: message}
}

// overallStatus определяет итоговый статус из статусов зависимостей.
// Если хотя бы одна зависимость fail — итог fail.
// Если хотя бы одна degraded — итог degraded.
// Иначе — ok.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == "fail" {
			return "fail"
		}
		if s == "degraded" {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return "degraded"
	}
	return "ok"
}
