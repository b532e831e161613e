// Пакет handlers — HTTP-обработчики UI выбора фотографий.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/luomphoto/luom-selector/internal/route"
	"github.com/luomphoto/luom-selector/internal/service"
	"github.com/luomphoto/luom-selector/internal/ui/auth"
	"github.com/luomphoto/luom-selector/internal/ui/i18n"
	"github.com/luomphoto/luom-selector/internal/ui/middleware"
	"github.com/luomphoto/luom-selector/internal/ui/templates"
)

// Handlers — обработчики всех страниц и действий UI.
// Все зависимости передаются явно при создании.
type Handlers struct {
	machine    *route.Machine
	albums     *service.AlbumService
	selections *service.SelectionService
	sessions   *auth.SessionManager
	// oidc и verifier nil в режиме Setup (ключи Google не заполнены).
	oidc     *auth.OIDCClient
	verifier *auth.IDTokenVerifier
	renderer *templates.Renderer
	// baseURL — внешний базовый URL сервиса; пустая строка — URL
	// восстанавливается из заголовков запроса.
	baseURL       string
	secureCookies bool
	logger        *slog.Logger
}

// Config — зависимости Handlers.
type Config struct {
	Machine       *route.Machine
	Albums        *service.AlbumService
	Selections    *service.SelectionService
	Sessions      *auth.SessionManager
	OIDC          *auth.OIDCClient
	Verifier      *auth.IDTokenVerifier
	Renderer      *templates.Renderer
	BaseURL       string
	SecureCookies bool
	Logger        *slog.Logger
}

// New создаёт обработчики UI.
func New(cfg Config) *Handlers {
	return &Handlers{
		machine:       cfg.Machine,
		albums:        cfg.Albums,
		selections:    cfg.Selections,
		sessions:      cfg.Sessions,
		oidc:          cfg.OIDC,
		verifier:      cfg.Verifier,
		renderer:      cfg.Renderer,
		baseURL:       cfg.BaseURL,
		secureCookies: cfg.SecureCookies,
		logger:        cfg.Logger.With(slog.String("component", "ui_handlers")),
	}
}

// baseData собирает общие данные страницы: язык, identity, флаг
// администратора и однократное уведомление из flash cookie.
func (h *Handlers) baseData(w http.ResponseWriter, r *http.Request) templates.BaseData {
	identity := middleware.IdentityFromContext(r.Context())
	return templates.BaseData{
		Lang:     i18n.LangFromContext(r.Context()),
		Identity: identity,
		IsAdmin:  h.machine.IsAdmin(identity),
		Notice:   h.popFlash(w, r),
	}
}

// requestBaseURL возвращает внешний базовый URL сервиса.
// Если LS_BASE_URL не задан, URL восстанавливается из запроса
// с учётом X-Forwarded-* заголовков reverse proxy.
func (h *Handlers) requestBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if fwdHost := r.Header.Get("X-Forwarded-Host"); fwdHost != "" {
		host = fwdHost
	}

	return scheme + "://" + host
}

// shareURL возвращает клиентскую ссылку на альбом.
func (h *Handlers) shareURL(r *http.Request, albumID string) string {
	return h.requestBaseURL(r) + "/album/" + albumID
}

// renderError рендерит страницу неожиданной ошибки со статусом 500.
func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request) {
	data := templates.ErrorData{BaseData: h.baseData(w, r)}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	h.renderer.Render(w, templates.PageError, data)
}
