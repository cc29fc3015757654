// invoices.go — приём накладных: фото, правка данных, подтверждение.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/arturkryukov/stroysklad/internal/api/errors"
	"github.com/arturkryukov/stroysklad/internal/api/middleware"
	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/service"
)

// maxInvoiceImageSize — предел размера фото накладной.
const maxInvoiceImageSize = 20 << 20

// UploadInvoiceImage — POST /upload-invoice-image (multipart).
// Фото уходит в экстрактор, результат сохраняется как pending-накладная.
func (h *APIHandler) UploadInvoiceImage(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
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

	if err := h.invoices.UploadImage(r.Context(), ident.UserID, header.Filename, file); err != nil {
		if errors.Is(err, service.ErrExtractorUnavailable) {
			apierrors.ExtractorUnavailable(w, "Сервис распознавания недоступен, внесите накладную вручную")
			return
		}
		h.logger.Error("Ошибка загрузки фото накладной", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"redirect": "/review"})
}

// ExtractInvoice — POST /extract-invoice. Повторная нормализация данных накладной.
func (h *APIHandler) ExtractInvoice(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
		return
	}

	var payload model.Invoice
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	result, err := h.invoices.ExtractData(r.Context(), ident.UserID, payload)
	if err != nil {
		if errors.Is(err, service.ErrExtractorUnavailable) {
			apierrors.ExtractorUnavailable(w, "Сервис распознавания недоступен")
			return
		}
		h.logger.Error("Ошибка извлечения данных накладной", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// PendingInvoice — GET /pending-invoice. Накладная, ожидающая ревью.
func (h *APIHandler) PendingInvoice(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
		return
	}

	payload, err := h.invoices.Pending(r.Context(), ident.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Нет накладной на ревью")
			return
		}
		h.logger.Error("Ошибка чтения pending-накладной", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// SubmitInvoice — POST /submit-invoice.
// Подтверждённая накладная уходит в обработку, pending-запись очищается.
func (h *APIHandler) SubmitInvoice(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
		return
	}

	var payload model.Invoice
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	result, err := h.invoices.Submit(r.Context(), ident.UserID, payload)
	if err != nil {
		if errors.Is(err, service.ErrExtractorUnavailable) {
			apierrors.ExtractorUnavailable(w, "Сервис обработки накладных недоступен")
			return
		}
		h.logger.Error("Ошибка отправки накладной", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
