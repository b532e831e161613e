// auth.go — аутентификация через Google OIDC (Authorization Code + PKCE).
package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/luomphoto/luom-selector/internal/ui/auth"
)

// Имя cookie для хранения состояния auth flow (state + code_verifier).
const stateCookieName = "ls_auth_state"

// stateCookieMaxAge — максимальный возраст state cookie (5 минут).
const stateCookieMaxAge = 5 * 60

// stateData — данные, сохраняемые в state cookie на время auth flow.
type stateData struct {
	// State — CSRF state parameter.
	State string `json:"state"`
	// CodeVerifier — PKCE code_verifier для обмена code → tokens.
	CodeVerifier string `json:"code_verifier"`
	// Next — путь возврата после успешного входа.
	Next string `json:"next,omitempty"`
}

// HandleLogin — GET /auth/login
// Генерирует PKCE и state, сохраняет в short-lived cookie,
// redirect на Google authorize endpoint.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.oidc == nil {
		// Режим Setup: вход невозможен до заполнения ключей Google.
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	pkce, err := auth.GeneratePKCE()
	if err != nil {
		h.logger.Error("Ошибка генерации PKCE", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("Ошибка генерации state", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	sd := &stateData{
		State:        state,
		CodeVerifier: pkce.CodeVerifier,
		Next:         sanitizeNext(r.URL.Query().Get("next")),
	}
	sdJSON, _ := json.Marshal(sd)
	sdEncoded := base64.URLEncoding.EncodeToString(sdJSON)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    sdEncoded,
		Path:     "/auth",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	redirectURI := h.requestBaseURL(r) + "/auth/callback"
	authorizeURL := h.oidc.AuthorizeURL(redirectURI, state, pkce.CodeChallenge)

	h.logger.Debug("Redirect на Google login", slog.String("authorize_url", authorizeURL))

	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// HandleCallback — GET /auth/callback
// Обменивает authorization code на tokens, валидирует ID-токен,
// создаёт session cookie и возвращает пользователя на исходный путь.
func (h *Handlers) HandleCallback(w http.ResponseWriter, r *http.Request) {
	if h.oidc == nil || h.verifier == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	// 1. Проверяем ошибку от Google
	if errCode := r.URL.Query().Get("error"); errCode != "" {
		errDesc := r.URL.Query().Get("error_description")
		h.logger.Warn("Google вернул ошибку авторизации",
			slog.String("error", errCode),
			slog.String("description", errDesc),
		)
		h.setFlash(w, "notice.login_failed")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	// 2. Извлекаем authorization code и state
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Отсутствует code или state", http.StatusBadRequest)
		return
	}

	// 3. Извлекаем и валидируем state cookie
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		h.logger.Warn("State cookie отсутствует", slog.String("error", err.Error()))
		http.Error(w, "Сессия авторизации истекла, попробуйте ещё раз", http.StatusBadRequest)
		return
	}

	sdJSON, err := base64.URLEncoding.DecodeString(stateCookie.Value)
	if err != nil {
		h.logger.Warn("Ошибка декодирования state cookie", slog.String("error", err.Error()))
		http.Error(w, "Некорректный state cookie", http.StatusBadRequest)
		return
	}

	var sd stateData
	if err := json.Unmarshal(sdJSON, &sd); err != nil {
		h.logger.Warn("Ошибка парсинга state cookie", slog.String("error", err.Error()))
		http.Error(w, "Некорректный state cookie", http.StatusBadRequest)
		return
	}

	// 4. Валидируем state (CSRF-защита)
	if sd.State != state {
		h.logger.Warn("State mismatch (возможная CSRF атака)",
			slog.String("expected", sd.State),
			slog.String("received", state),
		)
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	// 5. Удаляем state cookie (одноразовый)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	// 6. Обмениваем code на tokens
	redirectURI := h.requestBaseURL(r) + "/auth/callback"
	tokenResp, err := h.oidc.ExchangeCode(r.Context(), code, redirectURI, sd.CodeVerifier)
	if err != nil {
		h.logger.Error("Ошибка обмена code на tokens", slog.String("error", err.Error()))
		http.Error(w, "Ошибка аутентификации", http.StatusInternalServerError)
		return
	}

	// 7. Валидируем подпись и claims ID-токена
	identity, err := h.verifier.Verify(r.Context(), tokenResp.IDToken)
	if err != nil {
		h.logger.Error("Ошибка валидации ID-токена", slog.String("error", err.Error()))
		http.Error(w, "Ошибка обработки токена", http.StatusInternalServerError)
		return
	}

	// 8. Устанавливаем session cookie
	sessionData := &auth.SessionData{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		ExpiresAt:   time.Now().Add(auth.SessionCookieMaxAge * time.Second).Unix(),
	}
	if err := h.sessions.SetSessionCookie(w, sessionData); err != nil {
		h.logger.Error("Ошибка установки session cookie", slog.String("error", err.Error()))
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь аутентифицирован",
		slog.String("uid", identity.UID),
		slog.String("email", identity.Email),
	)

	// 9. Redirect на исходный путь
	next := sd.Next
	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// HandleLogout — GET /auth/logout
// Очищает session cookie и возвращает на главную. Сессия Google
// не затрагивается: выход действует только внутри сервиса.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSessionCookie(w)

	h.logger.Info("Пользователь выполнил logout")

	http.Redirect(w, r, "/", http.StatusFound)
}

// sanitizeNext валидирует путь возврата: только относительные пути
// внутри сервиса, всё остальное заменяется пустой строкой (главная).
func sanitizeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
