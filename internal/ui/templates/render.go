// render.go — рендерер страниц: парсинг шаблонов и привязка i18n.
package templates

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/luomphoto/luom-selector/internal/domain/model"
	"github.com/luomphoto/luom-selector/internal/ui/i18n"
)

// Имена страниц, известных рендереру.
const (
	PageSetup       = "setup"
	PageLogin       = "login"
	PageHome        = "home"
	PageDashboard   = "dashboard"
	PageAlbumDetail = "album_detail"
	PageGallery     = "gallery"
	PageSubmitted   = "submitted"
	PageAccess      = "access"
	PageError       = "error"
)

// pageFiles — все страницы приложения. Каждая парсится вместе с layout.
var pageFiles = []string{
	PageSetup, PageLogin, PageHome, PageDashboard,
	PageAlbumDetail, PageGallery, PageSubmitted, PageAccess, PageError,
}

// BaseData — общие данные каждой страницы.
type BaseData struct {
	// Lang — язык страницы ("en" или "vi").
	Lang string
	// Identity — текущий пользователь, nil для анонимного.
	Identity *model.Identity
	// IsAdmin — входит ли пользователь в allow-list администраторов.
	IsAdmin bool
	// Notice — однократное уведомление (flash), пустая строка — нет.
	Notice string
}

// SetupData — экран незавершённой конфигурации.
type SetupData struct {
	BaseData
}

// HomeData — экран аутентифицированного клиента без альбома.
type HomeData struct {
	BaseData
}

// LoginData — страница входа.
type LoginData struct {
	BaseData
	// AuthURL — URL перехода на Google login.
	AuthURL string
}

// DashboardData — список альбомов администратора.
type DashboardData struct {
	BaseData
	Albums []*AlbumSummary
	// FormError — ошибка валидации формы создания (ключ i18n).
	FormError string
	// FormName, FormFolder — введённые значения для повторного показа формы.
	FormName   string
	FormFolder string
}

// AlbumSummary — альбом в списке с количеством выборов.
type AlbumSummary struct {
	Album *model.Album
	// SelectionCount — всего записей выборов в альбоме.
	SelectionCount int
	// ShareURL — абсолютная ссылка для клиента.
	ShareURL string
}

// AlbumDetailData — выборы одного альбома для администратора.
type AlbumDetailData struct {
	BaseData
	Album    *model.Album
	Groups   []*model.SelectionGroup
	ShareURL string
}

// GalleryData — клиентская галерея альбома.
type GalleryData struct {
	BaseData
	Album *model.Album
	Files []*model.DriveFile
	// Pending — идентификаторы файлов текущего неотправленного выбора.
	Pending map[string]bool
	// PendingCount — размер неотправленного выбора.
	PendingCount int
	// PreviousCount — сколько файлов клиент уже отправлял в этом альбоме.
	PreviousCount int
	// FormError — ошибка валидации отправки (ключ i18n).
	FormError string
}

// SubmittedData — подтверждение после отправки выбора.
type SubmittedData struct {
	BaseData
	Album *model.Album
	// Count — количество отправленных файлов.
	Count int
}

// AccessData — экран недоступной папки альбома.
type AccessData struct {
	BaseData
	Album *model.Album
}

// ErrorData — страница неожиданной ошибки.
type ErrorData struct {
	BaseData
}

// Renderer — рендерер страниц. Шаблоны парсятся один раз при создании,
// переводы привязываются через функции t/tf с явным языком.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer парсит все страницы и возвращает рендерер.
func NewRenderer(bundle *i18n.Bundle, logger *slog.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"t": func(lang, key string) string {
			return bundle.Translate(lang, key)
		},
		"tf": func(lang, key string, args ...any) string {
			return bundle.Translatef(lang, key, args...)
		},
		"date": func(ts time.Time) string {
			return ts.Format("02.01.2006")
		},
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		tmpl, err := template.New("layout.gohtml").Funcs(funcs).ParseFS(templateFS,
			"pages/layout.gohtml",
			fmt.Sprintf("pages/%s.gohtml", name),
		)
		if err != nil {
			return nil, fmt.Errorf("парсинг шаблона %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{
		pages:  pages,
		logger: logger.With(slog.String("component", "renderer")),
	}, nil
}

// Render рендерит страницу в ResponseWriter.
// Ошибка рендеринга логируется и отдаётся как 500.
func (r *Renderer) Render(w http.ResponseWriter, page string, data any) {
	tmpl, ok := r.pages[page]
	if !ok {
		r.logger.Error("Неизвестная страница", slog.String("page", page))
		http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.gohtml", data); err != nil {
		r.logger.Error("Ошибка рендеринга страницы",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// RenderTo рендерит страницу в произвольный Writer. Используется в тестах.
func (r *Renderer) RenderTo(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("неизвестная страница: %s", page)
	}
	return tmpl.ExecuteTemplate(w, "layout.gohtml", data)
}
