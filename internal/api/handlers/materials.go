// materials.go — обработчики материалов объекта.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/stroysklad/internal/api/errors"
	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/service"
)

// materialRequest — тело создания/обновления материала.
type materialRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
	Cost string `json:"cost"`
}

// materialResponse — материал в ответах API.
// Количество и стоимость сериализуются строками, чтобы не терять точность.
type materialResponse struct {
	ID        string `json:"id"`
	SiteID    string `json:"siteId"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Cost      string `json:"cost"`
	Quantity  string `json:"quantity"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func mapMaterial(m *model.Material) materialResponse {
	return materialResponse{
		ID:        m.ID,
		SiteID:    m.SiteID,
		Name:      m.Name,
		Unit:      m.Unit,
		Cost:      m.Cost.String(),
		Quantity:  m.Quantity.String(),
		CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: m.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListMaterials — GET /site/{siteId}/materials.
func (h *APIHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteId")

	materials, err := h.mats.List(r.Context(), siteID)
	if err != nil {
		h.logger.Error("Ошибка списка материалов", "site_id", siteID, "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	resp := make([]materialResponse, 0, len(materials))
	for _, m := range materials {
		resp = append(resp, mapMaterial(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateMaterial — POST /site/{siteId}/materials.
func (h *APIHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteId")

	var req materialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	mat, err := h.mats.Create(r.Context(), siteID, service.MaterialInput{
		Name: req.Name,
		Unit: req.Unit,
		Cost: req.Cost,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrConflict):
			apierrors.Conflict(w, "Материал с таким наименованием и единицей уже есть на объекте")
		default:
			h.logger.Error("Ошибка создания материала", "site_id", siteID, "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusCreated, mapMaterial(mat))
}

// UpdateMaterial — POST /site/{siteId}/materials/{id}.
// Остаток через этот маршрут не меняется, только ledger-операциями.
func (h *APIHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteId")
	id := chi.URLParam(r, "id")

	var req materialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	mat, err := h.mats.Update(r.Context(), siteID, id, service.MaterialInput{
		Name: req.Name,
		Unit: req.Unit,
		Cost: req.Cost,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "Материал не найден")
		case errors.Is(err, service.ErrConflict):
			apierrors.Conflict(w, "Материал с таким наименованием и единицей уже есть на объекте")
		default:
			h.logger.Error("Ошибка обновления материала", "site_id", siteID, "material_id", id, "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, mapMaterial(mat))
}

// DeleteMaterial — POST /site/{siteId}/materials/{id}/delete.
func (h *APIHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "siteId")
	id := chi.URLParam(r, "id")

	if err := h.mats.Delete(r.Context(), siteID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Материал не найден")
			return
		}
		h.logger.Error("Ошибка удаления материала", "site_id", siteID, "material_id", id, "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
