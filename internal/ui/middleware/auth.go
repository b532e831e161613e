// Пакет middleware — HTTP middleware презентационного слоя.
// auth.go — загрузка identity из зашифрованного session cookie.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/luomphoto/luom-selector/internal/domain/model"
	"github.com/luomphoto/luom-selector/internal/ui/auth"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyIdentity — identity пользователя в контексте запроса.
	ContextKeyIdentity contextKey = "identity"
)

// IdentityLoader — middleware загрузки identity из session cookie.
// Не делает redirect: отсутствие identity — валидное состояние,
// экран выбирает машина маршрутизации.
type IdentityLoader struct {
	sessionManager *auth.SessionManager
	logger         *slog.Logger
}

// NewIdentityLoader создаёт новый IdentityLoader middleware.
func NewIdentityLoader(sessionManager *auth.SessionManager, logger *slog.Logger) *IdentityLoader {
	return &IdentityLoader{
		sessionManager: sessionManager,
		logger:         logger.With(slog.String("component", "identity_loader")),
	}
}

// Middleware возвращает HTTP middleware загрузки identity.
// Повреждённый или истёкший cookie трактуется как отсутствие
// аутентификации: cookie очищается, запрос продолжается анонимно.
func (il *IdentityLoader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := il.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				il.logger.Debug("Ошибка чтения сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				il.sessionManager.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			identity := session.Identity()
			if identity == nil {
				if session != nil {
					// Истёкшая сессия — убираем cookie
					il.sessionManager.ClearSessionCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext извлекает identity из контекста запроса.
// Возвращает nil для анонимного запроса.
func IdentityFromContext(ctx context.Context) *model.Identity {
	identity, _ := ctx.Value(ContextKeyIdentity).(*model.Identity)
	return identity
}
