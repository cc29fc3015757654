package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/domain/rbac"
)

// Templates хранит разобранные шаблоны страниц.
type Templates struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// FuncMap — функции, доступные в шаблонах.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"hasRole": rbac.HasAnyRole,
		"roleName": func(role string) string {
			switch role {
			case rbac.RoleAdmin:
				return "Администратор"
			case rbac.RoleManager:
				return "Прораб"
			case rbac.RoleWorker:
				return "Рабочий"
			default:
				return role
			}
		},
		"statusName": func(status string) string {
			switch status {
			case model.SiteStatusActive:
				return "Активен"
			case model.SiteStatusOnHold:
				return "Приостановлен"
			case model.SiteStatusCompleted:
				return "Завершён"
			default:
				return status
			}
		},
	}
}

// LoadTemplates разбирает все страницы вместе с layout.
func LoadTemplates(logger *slog.Logger) (*Templates, error) {
	tfs := TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("чтение layout-шаблона: %w", err)
	}

	pages := []string{
		"dashboard.html",
		"login.html",
		"signup.html",
		"review.html",
		"manual_entry.html",
		"upload_links.html",
		"guest_upload.html",
		"guest_upload_error.html",
	}

	ts := &Templates{
		templates: make(map[string]*template.Template),
		logger:    logger,
	}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("чтение шаблона %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		if tmpl, err = tmpl.Parse(string(layoutBytes)); err != nil {
			return nil, fmt.Errorf("разбор layout для %s: %w", page, err)
		}
		if tmpl, err = tmpl.Parse(string(pageBytes)); err != nil {
			return nil, fmt.Errorf("разбор шаблона %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render отрисовывает шаблон с данными.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "шаблон не найден", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		ts.logger.Error("Ошибка отрисовки шаблона", "template", name, "error", err)
	}
}
