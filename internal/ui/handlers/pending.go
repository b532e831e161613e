// pending.go — неотправленный выбор клиента в cookie.
// Выбор хранится на стороне клиента до отправки: по одному cookie на
// альбом, значение — base64url от JSON-списка файлов.
package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Префикс имени cookie неотправленного выбора.
const pendingCookiePrefix = "ls_pending_"

// pendingCookieMaxAge — максимальный возраст cookie выбора (7 дней,
// как у сессии).
const pendingCookieMaxAge = 7 * 24 * 60 * 60

// pendingItem — один файл в неотправленном выборе.
type pendingItem struct {
	// ID — идентификатор файла Google Drive.
	ID string `json:"id"`
	// Name — имя файла на момент выбора.
	Name string `json:"name"`
}

// readPending возвращает неотправленный выбор альбома.
// Повреждённый cookie считается пустым выбором.
func (h *Handlers) readPending(r *http.Request, albumID string) []pendingItem {
	cookie, err := r.Cookie(pendingCookiePrefix + albumID)
	if err != nil || cookie.Value == "" {
		return nil
	}

	raw, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var items []pendingItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// writePending сохраняет неотправленный выбор альбома.
// Пустой список удаляет cookie.
func (h *Handlers) writePending(w http.ResponseWriter, albumID string, items []pendingItem) {
	if len(items) == 0 {
		h.clearPending(w, albumID)
		return
	}

	raw, _ := json.Marshal(items)
	http.SetCookie(w, &http.Cookie{
		Name:     pendingCookiePrefix + albumID,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Path:     "/album/" + albumID,
		MaxAge:   pendingCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearPending удаляет неотправленный выбор альбома.
func (h *Handlers) clearPending(w http.ResponseWriter, albumID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     pendingCookiePrefix + albumID,
		Value:    "",
		Path:     "/album/" + albumID,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// togglePending добавляет или убирает файл из выбора.
// Возвращает новый список и признак «файл выбран после операции».
func togglePending(items []pendingItem, fileID, fileName string) ([]pendingItem, bool) {
	for i, item := range items {
		if item.ID == fileID {
			return append(items[:i], items[i+1:]...), false
		}
	}
	return append(items, pendingItem{ID: fileID, Name: fileName}), true
}

// pendingSet возвращает множество идентификаторов выбранных файлов.
func pendingSet(items []pendingItem) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item.ID] = true
	}
	return set
}
