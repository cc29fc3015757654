// Пакет errors — конструкторы стандартных ошибок API.
// Единый формат: {"error": {"code": "...", "message": "...", "field": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Машиночитаемые коды ошибок API.
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeLinkInactive         = "LINK_INACTIVE"
	CodeLinkUsed             = "LINK_USED"
	CodeLinkExpired          = "LINK_EXPIRED"
	CodeIDPUnavailable       = "IDP_UNAVAILABLE"
	CodeExtractorUnavailable = "EXTRACTOR_UNAVAILABLE"
	CodeInternalError        = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки. Field заполняется, когда ошибка
// валидации относится к конкретному полю формы.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	writeError(w, statusCode, code, message, "")
}

func writeError(w http.ResponseWriter, statusCode int, code, message, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// FieldValidationError — 400 с указанием поля формы.
func FieldValidationError(w http.ResponseWriter, message, field string) {
	writeError(w, http.StatusBadRequest, CodeValidationError, message, field)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// Conflict — 409 конфликт (дублирующийся ресурс).
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

// InsufficientStock — 400 на складе недостаточно материала.
func InsufficientStock(w http.ResponseWriter) {
	WriteError(w, http.StatusBadRequest, CodeInsufficientStock, "Not enough stock")
}

// LinkInactive — 410 ссылка деактивирована.
func LinkInactive(w http.ResponseWriter) {
	WriteError(w, http.StatusGone, CodeLinkInactive, "Ссылка деактивирована")
}

// LinkUsed — 410 временная ссылка уже использована.
func LinkUsed(w http.ResponseWriter) {
	WriteError(w, http.StatusGone, CodeLinkUsed, "Ссылка уже использована")
}

// LinkExpired — 410 срок действия ссылки истёк.
func LinkExpired(w http.ResponseWriter) {
	WriteError(w, http.StatusGone, CodeLinkExpired, "Срок действия ссылки истёк")
}

// IDPUnavailable — 502 провайдер идентификации недоступен.
func IDPUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeIDPUnavailable, message)
}

// ExtractorUnavailable — 502 сервис распознавания недоступен.
func ExtractorUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeExtractorUnavailable, message)
}

// InternalError — 500 внутренняя ошибка. Причина логируется на сервере,
// клиенту уходит общее сообщение.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
