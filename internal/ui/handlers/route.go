// route.go — граничный адаптер машины состояний навигации.
// Каждый GET страницы превращается в навигационное событие: путь
// отображается во фрагмент, машина возвращает состояние и эффекты,
// адаптер применяет эффекты (редирект, уведомление) и рендерит экран.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/luomphoto/luom-selector/internal/domain/model"
	"github.com/luomphoto/luom-selector/internal/route"
	"github.com/luomphoto/luom-selector/internal/service"
	"github.com/luomphoto/luom-selector/internal/ui/middleware"
	"github.com/luomphoto/luom-selector/internal/ui/templates"
)

// HandleNavigate — GET /, GET /admin, GET /album/{id}.
// Единая точка входа всех страничных маршрутов.
func (h *Handlers) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	fragment := route.FragmentFromPath(r.URL.Path)

	res := h.machine.Evaluate(r.Context(), identity, fragment)

	// Эффект перехода применяется как редирект: новый запрос станет
	// следующим навигационным событием машины.
	if res.Navigate != nil && *res.Navigate != fragment {
		if res.Notice != "" {
			h.setFlash(w, res.Notice)
		}
		http.Redirect(w, r, route.PathFromFragment(*res.Navigate), http.StatusFound)
		return
	}

	h.renderState(w, r, res.State)
}

// renderState рендерит экран состояния машины.
// Авторизация выполняется здесь, на этапе рендеринга: машина возвращает
// AdminDashboard и ClientAlbum без проверок членства и аутентификации,
// а слой представления подменяет содержимое для посторонних.
func (h *Handlers) renderState(w http.ResponseWriter, r *http.Request, state route.State) {
	base := h.baseData(w, r)

	switch state.Screen {
	case route.ScreenSetup:
		h.renderer.Render(w, templates.PageSetup, templates.SetupData{BaseData: base})

	case route.ScreenLogin:
		h.renderLogin(w, base, "")

	case route.ScreenHome:
		h.renderer.Render(w, templates.PageHome, templates.HomeData{BaseData: base})

	case route.ScreenAdminDashboard:
		// Render-гейт: аноним видит вход, не-администратор — домашний экран.
		if base.Identity == nil {
			h.renderLogin(w, base, route.PathFromFragment("admin"))
			return
		}
		if !base.IsAdmin {
			h.renderer.Render(w, templates.PageHome, templates.HomeData{BaseData: base})
			return
		}
		h.renderDashboard(w, r, base, templates.DashboardData{})

	case route.ScreenClientAlbum:
		if base.Identity == nil {
			h.renderLogin(w, base, route.PathFromFragment("album/"+state.Album.ID))
			return
		}
		h.renderGallery(w, r, base, state.Album, "")

	default:
		h.logger.Error("Неожиданный экран навигации", slog.String("screen", state.Screen.String()))
		h.renderError(w, r)
	}
}

// renderLogin рендерит страницу входа. next — путь возврата после
// аутентификации, пустая строка — возврат на главную.
func (h *Handlers) renderLogin(w http.ResponseWriter, base templates.BaseData, next string) {
	authURL := "/auth/login"
	if next != "" {
		authURL += "?next=" + url.QueryEscape(next)
	}
	h.renderer.Render(w, templates.PageLogin, templates.LoginData{
		BaseData: base,
		AuthURL:  authURL,
	})
}

// renderDashboard рендерит список альбомов администратора.
// form переносит значения и ошибку формы создания при повторном показе.
func (h *Handlers) renderDashboard(w http.ResponseWriter, r *http.Request, base templates.BaseData, form templates.DashboardData) {
	albums, err := h.albums.List(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения списка альбомов", slog.String("error", err.Error()))
		h.renderError(w, r)
		return
	}

	counts, err := h.selections.Counts(r.Context())
	if err != nil {
		h.logger.Error("Ошибка подсчёта выборов", slog.String("error", err.Error()))
		h.renderError(w, r)
		return
	}

	summaries := make([]*templates.AlbumSummary, 0, len(albums))
	for _, a := range albums {
		summaries = append(summaries, &templates.AlbumSummary{
			Album:          a,
			SelectionCount: counts[a.ID],
			ShareURL:       h.shareURL(r, a.ID),
		})
	}

	form.BaseData = base
	form.Albums = summaries
	h.renderer.Render(w, templates.PageDashboard, form)
}

// renderGallery рендерит клиентскую галерею альбома.
// formError — ключ i18n ошибки отправки при повторном показе.
func (h *Handlers) renderGallery(w http.ResponseWriter, r *http.Request, base templates.BaseData, album *model.Album, formError string) {
	files, err := h.albums.Photos(r.Context(), album)
	if err != nil {
		if errors.Is(err, service.ErrDriveAccess) {
			h.renderer.Render(w, templates.PageAccess, templates.AccessData{
				BaseData: base,
				Album:    album,
			})
			return
		}
		h.logger.Error("Ошибка получения файлов альбома",
			slog.String("album_id", album.ID),
			slog.String("error", err.Error()),
		)
		h.renderError(w, r)
		return
	}

	pending := h.readPending(r, album.ID)

	previousCount := 0
	if base.Identity != nil {
		previous, err := h.selections.ListForClient(r.Context(), album.ID, base.Identity.Email)
		if err != nil {
			// Счётчик прежних отправок не критичен для галереи.
			h.logger.Warn("Ошибка получения прежних выборов",
				slog.String("album_id", album.ID),
				slog.String("error", err.Error()),
			)
		}
		previousCount = len(previous)
	}

	h.renderer.Render(w, templates.PageGallery, templates.GalleryData{
		BaseData:      base,
		Album:         album,
		Files:         files,
		Pending:       pendingSet(pending),
		PendingCount:  len(pending),
		PreviousCount: previousCount,
		FormError:     formError,
	})
}
