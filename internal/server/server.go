// Пакет server — HTTP-сервер stroysklad с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на reverse proxy.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arturkryukov/stroysklad/internal/api/handlers"
	"github.com/arturkryukov/stroysklad/internal/api/middleware"
	"github.com/arturkryukov/stroysklad/internal/config"
	"github.com/arturkryukov/stroysklad/internal/domain/rbac"
	"github.com/arturkryukov/stroysklad/internal/ui"
)

// Server — HTTP-сервер stroysklad.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	api *handlers.APIHandler,
	health *handlers.HealthHandler,
	pages *ui.Pages,
	guard *middleware.AuthGuard,
) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// --- Публичные маршруты ---
	// Health и metrics проверяются оркестратором напрямую.
	router.Get("/health", health.Health)
	router.Get("/health/live", health.HealthLive)
	router.Get("/health/ready", health.HealthReady)
	router.Get("/metrics", health.GetMetrics)

	router.Post("/auth/login", api.Login)
	router.Post("/auth/signup", api.Signup)
	router.Post("/auth/logout", api.Logout)

	router.Get("/login", pages.Login)
	router.Get("/signup", pages.Signup)

	// Гостевая загрузка по ссылке: доступ контролирует сам токен.
	router.Get("/upload/{token}", pages.GuestUpload)
	router.Route("/upload-link/{token}", func(r chi.Router) {
		r.Get("/", api.ValidateUploadLink)
		r.Post("/upload", api.GuestUploadInvoice)
		r.Post("/mark-used", api.MarkUploadLinkUsed)
	})

	// Статика (CSS, JS) из embed.
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(ui.StaticFS()))))

	// --- HTML-страницы (требуют сессию, редирект на /login) ---
	router.Group(func(r chi.Router) {
		r.Use(guard.RequirePage)
		r.Get("/", pages.Dashboard)
		r.Get("/review", pages.Review)
		r.Get("/manual-entry", pages.ManualEntry)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(rbac.RoleAdmin))
			r.Get("/admin/upload-links-dashboard", pages.UploadLinksDashboard)
		})
	})

	// --- JSON API (требует сессию, 401 без редиректа) ---
	router.Group(func(r chi.Router) {
		r.Use(guard.RequireAPI)

		r.Get("/auth/me", api.Me)

		// Объекты: список и изменение — admin и manager,
		// удаление и гранты доступа — только admin.
		r.Get("/active-site", api.ActiveSite)
		r.Post("/set-active-site", api.SetActiveSite)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(rbac.RoleAdmin, rbac.RoleManager))
			r.Get("/sites", api.ListSites)
			r.Post("/sites", api.CreateSite)
			r.Post("/sites/{id}", api.UpdateSite)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(rbac.RoleAdmin))
			r.Post("/sites/{id}/delete", api.DeleteSite)
			r.Post("/sites/{id}/access/grant", api.GrantSiteAccess)
			r.Post("/sites/{id}/access/revoke", api.RevokeSiteAccess)
		})

		// Материалы и движения в рамках объекта: нужен доступ к объекту.
		r.Route("/site/{siteId}", func(r chi.Router) {
			r.Use(guard.RequireSiteAccess)

			r.Get("/materials", api.ListMaterials)
			r.Get("/stock-history", api.StockHistory)
			r.Post("/stock-op", api.ApplyStockOp)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(rbac.RoleAdmin, rbac.RoleManager))
				r.Post("/materials", api.CreateMaterial)
				r.Post("/materials/{id}", api.UpdateMaterial)
				r.Post("/materials/{id}/delete", api.DeleteMaterial)
			})
		})

		// Накладные.
		r.Post("/upload-invoice-image", api.UploadInvoiceImage)
		r.Post("/extract-invoice", api.ExtractInvoice)
		r.Get("/pending-invoice", api.PendingInvoice)
		r.Post("/submit-invoice", api.SubmitInvoice)

		// Ссылки загрузки: только админ.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(rbac.RoleAdmin))
			r.Get("/admin/upload-links", api.ListUploadLinks)
			r.Post("/admin/upload-links", api.CreateUploadLink)
			r.Post("/admin/upload-links/{id}/delete", api.DeleteUploadLink)
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
