package ui

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arturkryukov/stroysklad/internal/api/middleware"
	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/service"
)

// PageData — базовые данные всех страниц.
type PageData struct {
	Title    string
	Identity *model.Identity
}

// Pages — обработчики HTML-страниц. Данные страницы подгружают
// через JSON API, сервер отдаёт только каркас и серверный контекст.
type Pages struct {
	templates *Templates
	sites     *service.SiteService
	links     *service.UploadLinkService
	logger    *slog.Logger
}

// NewPages создаёт обработчики страниц.
func NewPages(templates *Templates, sites *service.SiteService, links *service.UploadLinkService, logger *slog.Logger) *Pages {
	return &Pages{
		templates: templates,
		sites:     sites,
		links:     links,
		logger:    logger.With("component", "ui_pages"),
	}
}

func (p *Pages) identity(r *http.Request) *model.Identity {
	return middleware.IdentityFromContext(r.Context())
}

// Dashboard — GET /. Главная страница: объекты и материалы.
func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	ident := p.identity(r)

	activeSite, err := p.sites.ActiveSite(r.Context(), ident.UserID)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		p.logger.Error("Ошибка чтения активного объекта для страницы", "error", err)
	}

	p.templates.Render(w, "dashboard.html", &struct {
		PageData
		ActiveSite *model.Site
	}{
		PageData:   PageData{Title: "Стройсклад", Identity: ident},
		ActiveSite: activeSite,
	})
}

// Login — GET /login.
func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	p.templates.Render(w, "login.html", &PageData{Title: "Вход"})
}

// Signup — GET /signup.
func (p *Pages) Signup(w http.ResponseWriter, r *http.Request) {
	p.templates.Render(w, "signup.html", &PageData{Title: "Регистрация"})
}

// Review — GET /review. Ревью распознанной накладной.
func (p *Pages) Review(w http.ResponseWriter, r *http.Request) {
	p.templates.Render(w, "review.html", &PageData{
		Title:    "Проверка накладной",
		Identity: p.identity(r),
	})
}

// ManualEntry — GET /manual-entry. Ручной ввод накладной.
func (p *Pages) ManualEntry(w http.ResponseWriter, r *http.Request) {
	p.templates.Render(w, "manual_entry.html", &PageData{
		Title:    "Ручной ввод накладной",
		Identity: p.identity(r),
	})
}

// UploadLinksDashboard — GET /admin/upload-links-dashboard. Доступ: admin.
func (p *Pages) UploadLinksDashboard(w http.ResponseWriter, r *http.Request) {
	p.templates.Render(w, "upload_links.html", &PageData{
		Title:    "Ссылки загрузки",
		Identity: p.identity(r),
	})
}

// GuestUpload — GET /upload/{token}. Публичная страница загрузки по ссылке.
// Ссылка проверяется на сервере: недействительная даёт страницу ошибки.
func (p *Pages) GuestUpload(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	link, err := p.links.Validate(r.Context(), token)
	if err != nil {
		var reason string
		switch {
		case errors.Is(err, service.ErrNotFound):
			reason = "Ссылка не найдена."
		case errors.Is(err, service.ErrLinkUsed):
			reason = "Ссылка уже использована."
		case errors.Is(err, service.ErrLinkExpired):
			reason = "Срок действия ссылки истёк."
		case errors.Is(err, service.ErrLinkInactive):
			reason = "Ссылка деактивирована."
		default:
			p.logger.Error("Ошибка проверки ссылки загрузки", "error", err)
			reason = "Не удалось проверить ссылку, попробуйте позже."
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusGone)
		p.templates.Render(w, "guest_upload_error.html", &struct {
			PageData
			Reason string
		}{
			PageData: PageData{Title: "Ссылка недействительна"},
			Reason:   reason,
		})
		return
	}

	p.templates.Render(w, "guest_upload.html", &struct {
		PageData
		Token    string
		LinkType string
	}{
		PageData: PageData{Title: "Загрузка накладной"},
		Token:    link.Token,
		LinkType: link.Type,
	})
}
