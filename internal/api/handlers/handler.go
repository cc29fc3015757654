// handler.go — основной обработчик JSON API.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/arturkryukov/stroysklad/internal/service"
	"github.com/arturkryukov/stroysklad/internal/session"
)

// APIHandler — основной обработчик JSON API.
type APIHandler struct {
	health   *HealthHandler
	sessions *session.Manager
	auth     *service.AuthService
	sites    *service.SiteService
	mats     *service.MaterialService
	stock    *service.StockService
	links    *service.UploadLinkService
	invoices *service.InvoiceService
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	sessions *session.Manager,
	auth *service.AuthService,
	sites *service.SiteService,
	mats *service.MaterialService,
	stock *service.StockService,
	links *service.UploadLinkService,
	invoices *service.InvoiceService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:   health,
		sessions: sessions,
		auth:     auth,
		sites:    sites,
		mats:     mats,
		stock:    stock,
		links:    links,
		invoices: invoices,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
