// auth.go — middleware аутентификации и авторизации.
// Сессионный cookie → (обновление токенов при истечении) → проверка
// access token у провайдера → профиль с ролью из БД. Разрешённая
// личность помещается в контекст запроса.
//
// Сессия уничтожается только при окончательном отказе провайдера
// (недействительный или отозванный токен). Недоступность провайдера —
// это 502, сессия сохраняется: временный сбой IdP не должен разлогинивать
// всех пользователей.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/arturkryukov/stroysklad/internal/api/errors"
	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/domain/rbac"
	"github.com/arturkryukov/stroysklad/internal/identity"
	"github.com/arturkryukov/stroysklad/internal/service"
	"github.com/arturkryukov/stroysklad/internal/session"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyIdentity — разрешённая личность пользователя в контексте запроса.
const ContextKeyIdentity contextKey = "identity"

// AuthGuard — middleware аутентификации.
type AuthGuard struct {
	sessions *session.Manager
	idp      *identity.Client
	authSvc  *service.AuthService
	siteSvc  *service.SiteService
	logger   *slog.Logger
}

// NewAuthGuard создаёт middleware аутентификации.
func NewAuthGuard(
	sessions *session.Manager,
	idp *identity.Client,
	authSvc *service.AuthService,
	siteSvc *service.SiteService,
	logger *slog.Logger,
) *AuthGuard {
	return &AuthGuard{
		sessions: sessions,
		idp:      idp,
		authSvc:  authSvc,
		siteSvc:  siteSvc,
		logger:   logger.With(slog.String("component", "auth_guard")),
	}
}

// RequireAPI — middleware для JSON API: отказ — 401 JSON.
func (g *AuthGuard) RequireAPI(next http.Handler) http.Handler {
	return g.require(next, false)
}

// RequirePage — middleware для HTML-страниц: отказ — redirect на /login.
func (g *AuthGuard) RequirePage(next http.Handler) http.Handler {
	return g.require(next, true)
}

// require разрешает личность пользователя по сессии.
func (g *AuthGuard) require(next http.Handler, redirect bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := g.sessions.FromRequest(r)
		if err != nil {
			// Нечитаемый cookie (смена ключа, порча) — сбрасываем
			g.sessions.ClearCookie(w)
			g.deny(w, r, redirect, "Сессия недействительна")
			return
		}
		if sess == nil {
			g.deny(w, r, redirect, "Требуется вход")
			return
		}

		// Истёкший access token обновляем через refresh token
		if sess.IsExpired() {
			token, refreshErr := g.idp.Refresh(r.Context(), sess.RefreshToken)
			switch {
			case refreshErr == nil:
				sess.AccessToken = token.AccessToken
				sess.RefreshToken = token.RefreshToken
				if cookieErr := g.sessions.SetCookie(w, sess); cookieErr != nil {
					g.logger.Error("Не удалось обновить cookie сессии",
						slog.String("error", cookieErr.Error()),
					)
				}
			case errors.Is(refreshErr, identity.ErrUnavailable):
				// Провайдер недоступен — сессию сохраняем
				apierrors.IDPUnavailable(w, "Провайдер идентификации недоступен, повторите попытку")
				return
			default:
				// Refresh token отозван — окончательный отказ
				g.sessions.ClearCookie(w)
				g.deny(w, r, redirect, "Сессия истекла")
				return
			}
		}

		// Проверяем access token у провайдера
		user, err := g.idp.GetUser(r.Context(), sess.AccessToken)
		if err != nil {
			if errors.Is(err, identity.ErrUnavailable) {
				apierrors.IDPUnavailable(w, "Провайдер идентификации недоступен, повторите попытку")
				return
			}
			g.sessions.ClearCookie(w)
			g.deny(w, r, redirect, "Сессия недействительна")
			return
		}

		// Профиль с ролью — источник истины для авторизации
		profile, err := g.authSvc.Profile(r.Context(), user.ID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				g.logger.Warn("Пользователь без профиля, сессия уничтожена",
					slog.String("user_id", user.ID),
				)
				g.sessions.ClearCookie(w)
				g.deny(w, r, redirect, "Профиль пользователя не найден")
				return
			}
			g.logger.Error("Ошибка чтения профиля", slog.String("error", err.Error()))
			apierrors.InternalError(w, "Внутренняя ошибка сервера")
			return
		}
		if !rbac.IsValidRole(profile.Role) {
			g.sessions.ClearCookie(w)
			g.deny(w, r, redirect, "У пользователя нет допустимой роли")
			return
		}

		ident := &model.Identity{
			UserID:  user.ID,
			Email:   user.Email,
			Role:    profile.Role,
			Profile: profile,
		}

		ctx := context.WithValue(r.Context(), ContextKeyIdentity, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// deny отвечает на отказ в аутентификации: 401 JSON для API,
// redirect на /login для страниц.
func (g *AuthGuard) deny(w http.ResponseWriter, r *http.Request, redirect bool, message string) {
	if redirect {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	apierrors.Unauthorized(w, message)
}

// RequireRole возвращает middleware, требующий одну из указанных ролей.
// Должен использоваться ПОСЛЕ RequireAPI/RequirePage.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := IdentityFromContext(r.Context())
			if ident == nil {
				apierrors.Unauthorized(w, "Требуется вход")
				return
			}

			if !rbac.HasAnyRole(ident.Role, roles...) {
				apierrors.Forbidden(w, fmt.Sprintf("Недостаточно прав: требуется роль %s", strings.Join(roles, " или ")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSiteAccess возвращает middleware, проверяющий доступ пользователя
// к объекту из URL-параметра siteId. Администратор проходит всегда;
// для остальных ищется грант, и любой сбой проверки даёт отказ.
// Должен использоваться ПОСЛЕ RequireAPI/RequirePage.
func (g *AuthGuard) RequireSiteAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := IdentityFromContext(r.Context())
		if ident == nil {
			apierrors.Unauthorized(w, "Требуется вход")
			return
		}

		siteID := chi.URLParam(r, "siteId")
		if siteID == "" {
			apierrors.ValidationError(w, "Не указан объект")
			return
		}

		if err := g.siteSvc.CheckAccess(r.Context(), ident, siteID); err != nil {
			if errors.Is(err, service.ErrValidation) {
				apierrors.ValidationError(w, "Не указан объект")
				return
			}
			apierrors.Forbidden(w, "Нет доступа к объекту")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// --- Context helpers ---

// IdentityFromContext извлекает личность пользователя из контекста запроса.
// Возвращает nil, если личность не разрешена.
func IdentityFromContext(ctx context.Context) *model.Identity {
	ident, _ := ctx.Value(ContextKeyIdentity).(*model.Identity)
	return ident
}
