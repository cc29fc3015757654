// Точка входа stroysklad — учёт материалов на строительных объектах.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт клиентов identity-провайдера и экстрактора накладных,
// сервисный слой и HTTP-обработчики, запускает мониторинг зависимостей
// (topologymetrics) и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/arturkryukov/stroysklad/internal/api/handlers"
	"github.com/arturkryukov/stroysklad/internal/api/middleware"
	"github.com/arturkryukov/stroysklad/internal/config"
	"github.com/arturkryukov/stroysklad/internal/database"
	"github.com/arturkryukov/stroysklad/internal/extractor"
	"github.com/arturkryukov/stroysklad/internal/identity"
	"github.com/arturkryukov/stroysklad/internal/repository"
	"github.com/arturkryukov/stroysklad/internal/server"
	"github.com/arturkryukov/stroysklad/internal/service"
	"github.com/arturkryukov/stroysklad/internal/session"
	"github.com/arturkryukov/stroysklad/internal/ui"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("stroysklad запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД (на managed-хранилище схемой владеет провайдер)
	if cfg.DBMigrate {
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Клиенты внешних систем
	idpClient := identity.New(cfg.IdentityURL, cfg.IdentityAnonKey, cfg.IdentityTimeout, logger)
	logger.Info("Identity-клиент создан", slog.String("url", cfg.IdentityURL))

	extractorClient := extractor.New(cfg.ExtractorImageURL, cfg.ExtractorDataURL, cfg.ExtractorTimeout, logger)
	logger.Info("Клиент экстрактора накладных создан", slog.String("data_url", cfg.ExtractorDataURL))

	// 6. Session Manager — шифрование сессионных cookie (AES-256-GCM)
	sessionMgr, err := session.NewManager(cfg.SessionSecret, cfg.SecureCookie)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("SS_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}

	// 7. Repositories
	siteRepo := repository.NewSiteRepository(pool)
	materialRepo := repository.NewMaterialRepository(pool)
	historyRepo := repository.NewStockHistoryRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)
	accessRepo := repository.NewSiteAccessRepository(pool)
	prefRepo := repository.NewPreferenceRepository(pool)
	linkRepo := repository.NewUploadLinkRepository(pool)
	pendingRepo := repository.NewPendingInvoiceRepository(pool)
	profileRepo := repository.NewUserProfileRepository(pool)

	// 8. Services
	authSvc := service.NewAuthService(idpClient, profileRepo, logger)
	siteSvc := service.NewSiteService(siteRepo, accessRepo, prefRepo, logger)
	materialSvc := service.NewMaterialService(materialRepo, historyRepo, logger)
	stockSvc := service.NewStockService(ledgerRepo, logger)
	linkSvc := service.NewUploadLinkService(linkRepo, cfg.LinkDefaultTTL, logger)
	invoiceSvc := service.NewInvoiceService(extractorClient, pendingRepo, cfg.UploadDir, logger)

	// 9. topologymetrics — мониторинг зависимостей
	// (PostgreSQL + identity-провайдер + экстрактор)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"stroysklad",
		pgDB,
		cfg.DatabaseDSN(),
		cfg.IdentityURL,
		cfg.ExtractorDataURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 10. Readiness checkers и health handler
	pgChecker := database.NewReadinessChecker(pool)
	healthHandler := handlers.NewHealthHandler(pgChecker, idpClient, extractorClient)

	// 11. API handler и auth middleware
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		sessionMgr,
		authSvc,
		siteSvc,
		materialSvc,
		stockSvc,
		linkSvc,
		invoiceSvc,
		logger,
	)
	guard := middleware.NewAuthGuard(sessionMgr, idpClient, authSvc, siteSvc, logger)

	// 12. HTML-страницы
	templates, err := ui.LoadTemplates(logger)
	if err != nil {
		logger.Error("Ошибка загрузки шаблонов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	pages := ui.NewPages(templates, siteSvc, linkSvc, logger)

	// 13. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, healthHandler, pages, guard)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 14. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("stroysklad остановлен")
}
