// admin.go — действия администратора: создание альбомов, просмотр
// выборов, выгрузка имён файлов.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/luomphoto/luom-selector/internal/domain/model"
	"github.com/luomphoto/luom-selector/internal/service"
	"github.com/luomphoto/luom-selector/internal/ui/middleware"
	"github.com/luomphoto/luom-selector/internal/ui/templates"
)

// requireAdmin возвращает identity администратора или nil, выполнив
// render-гейт: аноним видит вход, не-администратор — домашний экран.
func (h *Handlers) requireAdmin(w http.ResponseWriter, r *http.Request) *model.Identity {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		base := h.baseData(w, r)
		h.renderLogin(w, base, r.URL.Path)
		return nil
	}
	if !h.machine.IsAdmin(identity) {
		http.Redirect(w, r, "/", http.StatusFound)
		return nil
	}
	return identity
}

// HandleCreateAlbum — POST /admin/albums
// Создаёт альбом из формы дашборда. Ошибка валидации показывается
// на том же дашборде с сохранением введённых значений.
func (h *Handlers) HandleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	identity := h.requireAdmin(w, r)
	if identity == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}
	name := r.PostFormValue("name")
	folder := r.PostFormValue("folder")

	album, err := h.albums.Create(r.Context(), name, folder, identity)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			formError := "error.validation.folder"
			if strings.TrimSpace(name) == "" {
				formError = "error.validation.name"
			}
			base := h.baseData(w, r)
			h.renderDashboard(w, r, base, templates.DashboardData{
				FormError:  formError,
				FormName:   name,
				FormFolder: folder,
			})
			return
		}
		h.logger.Error("Ошибка создания альбома", slog.String("error", err.Error()))
		h.renderError(w, r)
		return
	}

	h.logger.Info("Альбом создан",
		slog.String("album_id", album.ID),
		slog.String("name", album.Name),
		slog.String("created_by", identity.Email),
	)

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// HandleAlbumDetail — GET /admin/albums/{albumID}
// Выборы альбома, сгруппированные по клиентам.
func (h *Handlers) HandleAlbumDetail(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	albumID := chi.URLParam(r, "albumID")
	album, err := h.albums.Get(r.Context(), albumID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.setFlash(w, "notice.album_missing")
			http.Redirect(w, r, "/admin", http.StatusFound)
			return
		}
		h.logger.Error("Ошибка получения альбома",
			slog.String("album_id", albumID),
			slog.String("error", err.Error()),
		)
		h.renderError(w, r)
		return
	}

	groups, err := h.selections.ListForAlbum(r.Context(), album.ID)
	if err != nil {
		h.logger.Error("Ошибка получения выборов альбома",
			slog.String("album_id", album.ID),
			slog.String("error", err.Error()),
		)
		h.renderError(w, r)
		return
	}

	h.renderer.Render(w, templates.PageAlbumDetail, templates.AlbumDetailData{
		BaseData: h.baseData(w, r),
		Album:    album,
		Groups:   groups,
		ShareURL: h.shareURL(r, album.ID),
	})
}

// HandleExportFileNames — GET /admin/albums/{albumID}/filenames?client=...
// Имена выбранных файлов как text/plain, по одному на строку.
// Параметр client ограничивает выгрузку одним клиентом, без него
// выгружаются все выборы альбома.
func (h *Handlers) HandleExportFileNames(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	albumID := chi.URLParam(r, "albumID")
	if _, err := h.albums.Get(r.Context(), albumID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Ошибка получения альбома",
			slog.String("album_id", albumID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	clientEmail := r.URL.Query().Get("client")
	names, err := h.selections.ExportFileNames(r.Context(), albumID, clientEmail)
	if err != nil {
		h.logger.Error("Ошибка выгрузки имён файлов",
			slog.String("album_id", albumID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, name := range names {
		_, _ = w.Write([]byte(name + "\n"))
	}
}
