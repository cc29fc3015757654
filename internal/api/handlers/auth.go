// auth.go — обработчики /auth endpoints: вход, регистрация, выход.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/arturkryukov/stroysklad/internal/api/errors"
	"github.com/arturkryukov/stroysklad/internal/api/middleware"
	"github.com/arturkryukov/stroysklad/internal/service"
)

// loginRequest — тело POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signupRequest — тело POST /auth/signup.
type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login — POST /auth/login.
// Успех: {"success": true} + session cookie.
// Неверные учётные данные: 400 с указанием поля формы.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apierrors.FieldValidationError(w, "Неверный email или пароль", "password")
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrIDPUnavailable):
			apierrors.IDPUnavailable(w, "Провайдер идентификации недоступен, повторите попытку")
		default:
			h.logger.Error("Ошибка входа", "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	if err := h.sessions.SetCookie(w, sess); err != nil {
		h.logger.Error("Ошибка установки cookie сессии", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Signup — POST /auth/signup.
// Регистрирует пользователя, создаёт профиль с ролью и открывает сессию.
func (h *APIHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	sess, err := h.auth.Signup(r.Context(), req.FullName, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidRole):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrConflict):
			apierrors.Conflict(w, "Пользователь с таким email уже зарегистрирован")
		case errors.Is(err, service.ErrIDPUnavailable):
			apierrors.IDPUnavailable(w, "Провайдер идентификации недоступен, повторите попытку")
		default:
			h.logger.Error("Ошибка регистрации", "error", err)
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
		}
		return
	}

	if err := h.sessions.SetCookie(w, sess); err != nil {
		h.logger.Error("Ошибка установки cookie сессии", "error", err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Logout — POST /auth/logout.
// Аннулирует сессию у провайдера и всегда сбрасывает локальный cookie.
func (h *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, err := h.sessions.FromRequest(r); err == nil && sess != nil {
		h.auth.Logout(r.Context(), sess.AccessToken)
	}

	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Me — GET /auth/me. Профиль текущего пользователя.
func (h *APIHandler) Me(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromContext(r.Context())
	if ident == nil {
		apierrors.Unauthorized(w, "Требуется вход")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":   ident.UserID,
		"email":    ident.Email,
		"role":     ident.Role,
		"fullName": ident.Profile.FullName,
	})
}
