// upload_links.go — выпуск и погашение ссылок на загрузку накладных.
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

// uploadLinkRequest — тело POST /admin/upload-links.
type uploadLinkRequest struct {
	Type        string `json:"type"`
	ExpiresIn   string `json:"expiresIn"`
	Description string `json:"description"`
}

// uploadLinkResponse — ссылка в ответах API.
type uploadLinkResponse struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	Type        string `json:"type"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	Used        bool   `json:"used"`
	Active      bool   `json:"active"`
	Description string `json:"description"`
}

func mapUploadLink(l *model.UploadLink) uploadLinkResponse {
	resp := uploadLinkResponse{
		ID:          l.ID,
		Token:       l.Token,
		Type:        l.Type,
		CreatedBy:   l.CreatedBy,
		CreatedAt:   l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Used:        l.Used,
		Active:      l.Active,
		Description: l.Description,
	}
	if l.ExpiresAt != nil {
		resp.ExpiresAt = l.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// ListUploadLinks — GET /admin/upload-links. Доступ: admin.
func (h *APIHandler) ListUploadLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.List(r.Context())
	if err != nil {
		h.logger.Error("Ошибка списка ссылок загрузки", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	resp := make([]uploadLinkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, mapUploadLink(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateUploadLink — POST /admin/upload-links. Доступ: admin.
func (h *APIHandler) CreateUploadLink(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
		return
	}

	var req uploadLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	link, err := h.links.Issue(r.Context(), ident.UserID, service.UploadLinkInput{
		Type:        req.Type,
		ExpiresIn:   req.ExpiresIn,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка выпуска ссылки загрузки", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusCreated, mapUploadLink(link))
}

// DeleteUploadLink — POST /admin/upload-links/{id}/delete. Доступ: admin.
func (h *APIHandler) DeleteUploadLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.links.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Ссылка не найдена")
			return
		}
		h.logger.Error("Ошибка удаления ссылки загрузки", "link_id", id, "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ValidateUploadLink — GET /upload-link/{token}. Публичный маршрут:
// гость с токеном проверяет ссылку перед загрузкой.
func (h *APIHandler) ValidateUploadLink(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	link, err := h.links.Validate(r.Context(), token)
	if err != nil {
		writeUploadLinkError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"type":  link.Type,
	})
}

// GuestUploadInvoice — POST /upload-link/{token}/upload. Публичный маршрут:
// гость загружает фото накладной по действующей ссылке. Результат
// распознавания попадает в pending-накладную выпустившего ссылку.
func (h *APIHandler) GuestUploadInvoice(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	link, err := h.links.Validate(r.Context(), token)
	if err != nil {
		writeUploadLinkError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxInvoiceImageSize)
	if err := r.ParseMultipartForm(maxInvoiceImageSize); err != nil {
		apierrors.ValidationError(w, "Не удалось разобрать multipart-форму: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.FieldValidationError(w, "Файл накладной не передан", "file")
		return
	}
	defer file.Close()

	if err := h.invoices.UploadImage(r.Context(), link.CreatedBy, header.Filename, file); err != nil {
		if errors.Is(err, service.ErrExtractorUnavailable) {
			apierrors.ExtractorUnavailable(w, "Сервис распознавания недоступен, попробуйте позже")
			return
		}
		h.logger.Error("Ошибка гостевой загрузки накладной", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// MarkUploadLinkUsed — POST /upload-link/{token}/mark-used. Публичный маршрут:
// временная ссылка гасится после успешной загрузки, постоянная не гасится.
func (h *APIHandler) MarkUploadLinkUsed(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if _, err := h.links.Validate(r.Context(), token); err != nil {
		writeUploadLinkError(w, err)
		return
	}
	if err := h.links.Redeem(r.Context(), token); err != nil {
		// Redeem гасит только одноразовые ссылки: для постоянной
		// строки нет, и это не успех.
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Ссылка не найдена")
			return
		}
		h.logger.Error("Ошибка погашения ссылки загрузки", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeUploadLinkError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Ссылка не найдена")
	case errors.Is(err, service.ErrLinkUsed):
		apierrors.LinkUsed(w)
	case errors.Is(err, service.ErrLinkExpired):
		apierrors.LinkExpired(w)
	case errors.Is(err, service.ErrLinkInactive):
		apierrors.LinkInactive(w)
	default:
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
