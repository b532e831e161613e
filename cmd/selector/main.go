// Точка входа сервиса выбора фотографий.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт клиенты Google (OIDC + Drive), сервисный слой и UI handlers,
// запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	apihandlers "github.com/luomphoto/luom-selector/internal/api/handlers"
	"github.com/luomphoto/luom-selector/internal/config"
	"github.com/luomphoto/luom-selector/internal/database"
	"github.com/luomphoto/luom-selector/internal/driveclient"
	"github.com/luomphoto/luom-selector/internal/repository"
	"github.com/luomphoto/luom-selector/internal/route"
	"github.com/luomphoto/luom-selector/internal/server"
	"github.com/luomphoto/luom-selector/internal/service"
	"github.com/luomphoto/luom-selector/internal/ui/auth"
	uihandlers "github.com/luomphoto/luom-selector/internal/ui/handlers"
	"github.com/luomphoto/luom-selector/internal/ui/i18n"
	uimiddleware "github.com/luomphoto/luom-selector/internal/ui/middleware"
	"github.com/luomphoto/luom-selector/internal/ui/templates"
)

// jwksRefreshInterval — интервал фонового обновления ключей Google.
const jwksRefreshInterval = time.Hour

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Сервис запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.Bool("config_valid", cfg.Valid()),
	)

	if !cfg.Valid() {
		logger.Warn("Ключи Google не заполнены, сервис работает в режиме Setup",
			slog.Bool("google_client_id", cfg.GoogleClientID != ""),
			slog.Bool("drive_api_key", cfg.DriveAPIKey != ""),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
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

	// 5. Клиенты Google (только при валидной конфигурации)
	var (
		oidcClient  *auth.OIDCClient
		verifier    *auth.IDTokenVerifier
		driveClient *driveclient.Client
	)
	if cfg.Valid() {
		oidcClient = auth.NewOIDCClient(auth.OIDCConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
		})

		verifier, err = auth.NewIDTokenVerifier(cfg.GoogleClientID, jwksRefreshInterval, logger)
		if err != nil {
			logger.Error("Ошибка создания валидатора ID-токенов", slog.String("error", err.Error()))
			os.Exit(1)
		}

		driveClient = driveclient.New(cfg.DriveAPIKey, cfg.DriveTimeout, logger)

		logger.Info("Клиенты Google созданы",
			slog.String("oidc_client_id", cfg.GoogleClientID),
		)
	}

	// 6. Repositories
	albumRepo := repository.NewAlbumRepository(pool)
	selectionRepo := repository.NewSelectionRepository(pool)

	// 7. Services
	var driveLister service.DriveLister
	if driveClient != nil {
		driveLister = driveClient
	}
	albumSvc := service.NewAlbumService(albumRepo, driveLister, logger)
	selectionSvc := service.NewSelectionService(selectionRepo, logger)

	// 8. Машина состояний навигации
	machine := route.New(cfg.Valid(), cfg.AdminEmails, albumSvc, logger)

	// 9. UI-сессии (AES-256-GCM cookie)
	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SecureCookies)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("LS_SESSION_SECRET не задан, UI-сессии не сохраняются между рестартами")
	}

	// 10. i18n и рендерер страниц
	bundle := i18n.NewBundle(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки каталогов i18n", slog.String("error", err.Error()))
		os.Exit(1)
	}
	renderer, err := templates.NewRenderer(bundle, logger)
	if err != nil {
		logger.Error("Ошибка парсинга шаблонов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. UI handlers
	ui := uihandlers.New(uihandlers.Config{
		Machine:       machine,
		Albums:        albumSvc,
		Selections:    selectionSvc,
		Sessions:      sessionMgr,
		OIDC:          oidcClient,
		Verifier:      verifier,
		Renderer:      renderer,
		BaseURL:       cfg.BaseURL,
		SecureCookies: cfg.SecureCookies,
		Logger:        logger,
	})

	// 12. Readiness checkers (PostgreSQL + Google JWKS)
	pgChecker := database.NewReadinessChecker(pool)
	googleChecker := auth.NewGoogleReadinessChecker("", 3*time.Second)
	healthHandler := apihandlers.NewHealthHandler(pgChecker, googleChecker)

	// 13. topologymetrics — мониторинг зависимостей (PostgreSQL + Google)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"luom-selector",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		auth.GoogleJWKSURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 14. Создание и запуск HTTP-сервера
	identityLoader := uimiddleware.NewIdentityLoader(sessionMgr, logger)
	srv := server.New(cfg, logger, ui, healthHandler, identityLoader)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 15. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Сервис остановлен")
}
