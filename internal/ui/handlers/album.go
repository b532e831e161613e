// album.go — действия клиента в галерее: переключение выбора и
// отправка именованного выбора.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/luomphoto/luom-selector/internal/api/errors"
	"github.com/luomphoto/luom-selector/internal/domain/model"
	"github.com/luomphoto/luom-selector/internal/service"
	"github.com/luomphoto/luom-selector/internal/ui/middleware"
	"github.com/luomphoto/luom-selector/internal/ui/templates"
)

// toggleRequest — тело запроса переключения выбора.
type toggleRequest struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// toggleResponse — результат переключения выбора.
type toggleResponse struct {
	// Selected — выбран ли файл после операции.
	Selected bool `json:"selected"`
	// Count — размер неотправленного выбора.
	Count int `json:"count"`
}

// HandleToggle — POST /album/{albumID}/toggle
// Добавляет или убирает файл из неотправленного выбора (cookie).
// Операция идемпотентна относительно текущего состояния cookie.
func (h *Handlers) HandleToggle(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	album, ok := h.resolveAlbumJSON(w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileID == "" {
		apierrors.ValidationError(w, "Требуются file_id и file_name")
		return
	}

	items := h.readPending(r, album.ID)
	items, selected := togglePending(items, req.FileID, req.FileName)
	h.writePending(w, album.ID, items)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toggleResponse{
		Selected: selected,
		Count:    len(items),
	})
}

// HandleSubmit — POST /album/{albumID}/submit
// Отправляет неотправленный выбор с именем клиента. Успех очищает
// cookie выбора и показывает подтверждение; ошибка валидации
// возвращает галерею с сообщением.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	albumID := chi.URLParam(r, "albumID")
	if identity == nil {
		base := h.baseData(w, r)
		h.renderLogin(w, base, "/album/"+albumID)
		return
	}

	album, err := h.albums.Get(r.Context(), albumID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.setFlash(w, "notice.album_missing")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h.logger.Error("Ошибка получения альбома",
			slog.String("album_id", albumID),
			slog.String("error", err.Error()),
		)
		h.renderError(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}
	clientName := r.PostFormValue("client_name")

	items := h.readPending(r, album.ID)
	files := make([]service.SelectedFile, 0, len(items))
	for _, item := range items {
		files = append(files, service.SelectedFile{ID: item.ID, Name: item.Name})
	}

	if err := h.selections.Submit(r.Context(), album, identity, clientName, files); err != nil {
		if errors.Is(err, service.ErrValidation) {
			formError := "error.validation.name"
			if len(files) == 0 {
				formError = "notice.selection_empty"
			}
			base := h.baseData(w, r)
			h.renderGallery(w, r, base, album, formError)
			return
		}
		h.logger.Error("Ошибка отправки выбора",
			slog.String("album_id", album.ID),
			slog.String("error", err.Error()),
		)
		h.renderError(w, r)
		return
	}

	h.clearPending(w, album.ID)

	h.logger.Info("Выбор отправлен",
		slog.String("album_id", album.ID),
		slog.String("client_email", identity.Email),
		slog.Int("count", len(files)),
	)

	h.renderer.Render(w, templates.PageSubmitted, templates.SubmittedData{
		BaseData: h.baseData(w, r),
		Album:    album,
		Count:    len(files),
	})
}

// resolveAlbumJSON извлекает альбом маршрута для JSON-эндпоинтов.
// Ошибки пишутся в стандартном формате API.
func (h *Handlers) resolveAlbumJSON(w http.ResponseWriter, r *http.Request) (*model.Album, bool) {
	albumID := chi.URLParam(r, "albumID")
	album, err := h.albums.Get(r.Context(), albumID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Альбом не найден")
			return nil, false
		}
		h.logger.Error("Ошибка получения альбома",
			slog.String("album_id", albumID),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
		return nil, false
	}
	return album, true
}
