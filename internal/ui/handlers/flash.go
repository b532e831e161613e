// flash.go — однократные уведомления через cookie.
// В cookie хранится ключ i18n, а не готовый текст: язык пользователя
// известен только в момент рендеринга следующей страницы.
package handlers

import "net/http"

// Имя cookie однократного уведомления.
const flashCookieName = "ls_flash"

// flashCookieMaxAge — максимальный возраст flash cookie (1 минута:
// уведомление читается первой же страницей после редиректа).
const flashCookieMaxAge = 60

// setFlash сохраняет ключ уведомления для следующей страницы.
func (h *Handlers) setFlash(w http.ResponseWriter, noticeKey string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    noticeKey,
		Path:     "/",
		MaxAge:   flashCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash читает и сразу удаляет уведомление. Возвращает пустую
// строку, если уведомления нет.
func (h *Handlers) popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return cookie.Value
}
