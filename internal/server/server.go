// Пакет server — HTTP-сервер сервиса с graceful shutdown.
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

	apihandlers "github.com/luomphoto/luom-selector/internal/api/handlers"
	apimiddleware "github.com/luomphoto/luom-selector/internal/api/middleware"
	"github.com/luomphoto/luom-selector/internal/config"
	"github.com/luomphoto/luom-selector/internal/ui/handlers"
	"github.com/luomphoto/luom-selector/internal/ui/i18n"
	uimiddleware "github.com/luomphoto/luom-selector/internal/ui/middleware"
	"github.com/luomphoto/luom-selector/internal/ui/static"
)

// Server — HTTP-сервер сервиса.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// identityLoader может быть nil (все запросы анонимны).
func New(
	cfg *config.Config,
	logger *slog.Logger,
	ui *handlers.Handlers,
	health *apihandlers.HealthHandler,
	identityLoader *uimiddleware.IdentityLoader,
) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(apimiddleware.MetricsMiddleware())
	router.Use(apimiddleware.RequestLogger(logger))

	// Служебные endpoints: без identity и i18n, проверяются
	// Kubernetes и Prometheus напрямую.
	router.Get("/health/live", health.HealthLive)
	router.Get("/health/ready", health.HealthReady)
	router.Get("/metrics", health.GetMetrics)

	// Статика: CSS и JS из бинарника.
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	// Страницы и действия UI: язык + identity из сессии.
	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())
		if identityLoader != nil {
			r.Use(identityLoader.Middleware())
		}

		r.Get("/", ui.HandleNavigate)
		r.Get("/admin", ui.HandleNavigate)
		r.Post("/admin/albums", ui.HandleCreateAlbum)
		r.Get("/admin/albums/{albumID}", ui.HandleAlbumDetail)
		r.Get("/admin/albums/{albumID}/filenames", ui.HandleExportFileNames)

		r.Get("/album/{albumID}", ui.HandleNavigate)
		r.Post("/album/{albumID}/toggle", ui.HandleToggle)
		r.Post("/album/{albumID}/submit", ui.HandleSubmit)

		r.Get("/auth/login", ui.HandleLogin)
		r.Get("/auth/callback", ui.HandleCallback)
		r.Get("/auth/logout", ui.HandleLogout)

		r.Get("/lang", ui.HandleSetLanguage)
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
	// Канал для ошибок сервера
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

	// Ожидание сигнала завершения
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

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
