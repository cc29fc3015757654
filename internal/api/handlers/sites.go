// sites.go — обработчики /sites и активного объекта.
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

// siteRequest — тело создания/обновления объекта.
type siteRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Status  string `json:"status"`
}

// siteResponse — объект в ответах API.
type siteResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func mapSite(s *model.Site) siteResponse {
	return siteResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Status:    s.Status,
		CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: s.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListSites — GET /sites.
func (h *APIHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.List(r.Context())
	if err != nil {
		h.logger.Error("Ошибка списка объектов", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	resp := make([]siteResponse, 0, len(sites))
	for _, s := range sites {
		resp = append(resp, mapSite(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSite — POST /sites. Доступ: admin (гарантируется маршрутом).
func (h *APIHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
		return
	}

	var req siteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	site, err := h.sites.Create(r.Context(), ident.UserID, service.SiteInput{
		Name:    req.Name,
		Address: req.Address,
		Status:  req.Status,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка создания объекта", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusCreated, mapSite(site))
}

// UpdateSite — POST /sites/{id}.
func (h *APIHandler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req siteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	site, err := h.sites.Update(r.Context(), id, service.SiteInput{
		Name:    req.Name,
		Address: req.Address,
		Status:  req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "Объект не найден")
		default:
			h.logger.Error("Ошибка обновления объекта", "site_id", id, "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, mapSite(site))
}

// DeleteSite — POST /sites/{id}/delete. Доступ: admin.
func (h *APIHandler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.sites.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Объект не найден")
			return
		}
		h.logger.Error("Ошибка удаления объекта", "site_id", id, "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// siteAccessRequest — тело грантов доступа к объекту.
type siteAccessRequest struct {
	UserID string `json:"userId"`
}

// GrantSiteAccess — POST /sites/{id}/access/grant. Доступ: admin.
func (h *APIHandler) GrantSiteAccess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req siteAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	if err := h.sites.GrantAccess(r.Context(), req.UserID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "Объект не найден")
		default:
			h.logger.Error("Ошибка выдачи доступа к объекту", "site_id", id, "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// RevokeSiteAccess — POST /sites/{id}/access/revoke. Доступ: admin.
func (h *APIHandler) RevokeSiteAccess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req siteAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	if err := h.sites.RevokeAccess(r.Context(), req.UserID, id); err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка отзыва доступа к объекту", "site_id", id, "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ActiveSite — GET /active-site. Активный объект пользователя.
func (h *APIHandler) ActiveSite(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
		return
	}

	site, err := h.sites.ActiveSite(r.Context(), ident.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Активный объект не выбран")
			return
		}
		h.logger.Error("Ошибка чтения активного объекта", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, mapSite(site))
}

// setActiveSiteRequest — тело POST /set-active-site.
type setActiveSiteRequest struct {
	SiteID string `json:"siteId"`
}

// SetActiveSite — POST /set-active-site.
// Объект должен существовать, а пользователь — иметь к нему доступ.
func (h *APIHandler) SetActiveSite(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
		return
	}

	var req setActiveSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}
	if req.SiteID == "" {
		apierrors.ValidationError(w, "Не указан объект")
		return
	}

	if err := h.sites.SetActiveSite(r.Context(), ident, req.SiteID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "Объект не найден")
		case errors.Is(err, service.ErrForbidden):
			apierrors.Forbidden(w, "Нет доступа к объекту")
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		default:
			h.logger.Error("Ошибка выбора активного объекта", "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
