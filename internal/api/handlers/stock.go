// stock.go — ledger-операции и история движений.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/stroysklad/internal/api/errors"
	"github.com/arturkryukov/stroysklad/internal/api/middleware"
	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/service"
)

// stockOpRequest — тело POST /site/{siteId}/stock-op.
// Количество передаётся строкой и разбирается строго.
type stockOpRequest struct {
	MaterialID   string `json:"materialId"`
	Type         string `json:"type"`
	Quantity     string `json:"quantity"`
	Note         string `json:"note"`
	TargetSiteID string `json:"targetSiteId"`
}

// historyRecordResponse — запись истории в ответах API.
type historyRecordResponse struct {
	ID         string `json:"id"`
	SiteID     string `json:"siteId"`
	MaterialID string `json:"materialId"`
	Type       string `json:"type"`
	Quantity   string `json:"quantity"`
	Note       string `json:"note"`
	UserID     string `json:"userId"`
	CreatedAt  string `json:"createdAt"`
}

func mapHistoryRecord(rec *model.StockHistoryRecord) historyRecordResponse {
	return historyRecordResponse{
		ID:         rec.ID,
		SiteID:     rec.SiteID,
		MaterialID: rec.MaterialID,
		Type:       rec.Type,
		Quantity:   rec.Quantity.String(),
		Note:       rec.Note,
		UserID:     rec.UserID,
		CreatedAt:  rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ApplyStockOp — POST /site/{siteId}/stock-op.
// Приход, расход и перемещение выполняются одной транзакцией в штатном режиме.
func (h *APIHandler) ApplyStockOp(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteId")

	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
		return
	}

	var req stockOpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	err := h.stock.Apply(r.Context(), ident.UserID, siteID, service.StockOpInput{
		MaterialID:   req.MaterialID,
		Type:         req.Type,
		Quantity:     req.Quantity,
		Note:         req.Note,
		TargetSiteID: req.TargetSiteID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "Материал не найден")
		case errors.Is(err, service.ErrInsufficientStock):
			apierrors.InsufficientStock(w)
		case errors.Is(err, service.ErrForbidden):
			apierrors.Forbidden(w, "Нет доступа к объекту")
		default:
			h.logger.Error("Ошибка ledger-операции", "site_id", siteID, "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// StockHistory — GET /site/{siteId}/stock-history. Последние движения, новые сверху.
func (h *APIHandler) StockHistory(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteId")

	records, err := h.mats.History(r.Context(), siteID)
	if err != nil {
		h.logger.Error("Ошибка чтения истории движений", "site_id", siteID, "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	resp := make([]historyRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, mapHistoryRecord(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}
