// Пакет route — машина состояний навигации.
// Отображает тройку (состояние аутентификации × фрагмент × членство
// в allow-list администраторов) в один из шести экранов. Машина чистая:
// побочные эффекты (переход, уведомление) возвращаются в Result и
// применяются граничным HTTP-адаптером, который затем подаёт переход
// обратно как новое навигационное событие.
package route

import (
	"context"
	"log/slog"
	"strings"

	"github.com/luomphoto/luom-selector/internal/domain/model"
)

// Screen — экран приложения.
type Screen int

const (
	// ScreenSetup — ключи внешних сервисов не заполнены.
	// Терминальный экран: из него нет переходов до рестарта сервиса.
	ScreenSetup Screen = iota
	// ScreenLogin — пользователь не аутентифицирован.
	ScreenLogin
	// ScreenHome — аутентифицирован, но не администратор и без альбома.
	ScreenHome
	// ScreenAdminDashboard — список альбомов и форма создания.
	ScreenAdminDashboard
	// ScreenAdminAlbumDetail — просмотр выборов одного альбома.
	ScreenAdminAlbumDetail
	// ScreenClientAlbum — клиентская галерея альбома.
	ScreenClientAlbum
)

// String возвращает имя экрана для логов.
func (s Screen) String() string {
	switch s {
	case ScreenSetup:
		return "setup"
	case ScreenLogin:
		return "login"
	case ScreenHome:
		return "home"
	case ScreenAdminDashboard:
		return "admin_dashboard"
	case ScreenAdminAlbumDetail:
		return "admin_album_detail"
	case ScreenClientAlbum:
		return "client_album"
	default:
		return "unknown"
	}
}

// State — результат маршрутизации: экран и альбом в фокусе.
// Album обязателен для ScreenAdminAlbumDetail и ScreenClientAlbum,
// для остальных экранов он nil.
type State struct {
	Screen Screen
	Album  *model.Album
}

// Result — новое состояние плюс эффекты перехода.
type Result struct {
	State State
	// Navigate — целевой фрагмент ("" или "admin"). nil — без перехода.
	// Применяется граничным адаптером как редирект и возвращается
	// в машину новым навигационным событием.
	Navigate *string
	// Notice — ключ i18n однократного уведомления (пустая строка — нет).
	// Ключ, а не готовый текст: язык известен только слою рендеринга.
	Notice string
}

// AlbumResolver — поиск альбома по идентификатору.
// Возвращает (nil, nil), если альбом не найден.
type AlbumResolver interface {
	ResolveAlbum(ctx context.Context, id string) (*model.Album, error)
}

// Machine — машина состояний навигации.
// Создаётся один раз при старте; сигнал валидности конфигурации
// фиксируется в момент создания и не пересматривается.
type Machine struct {
	configValid bool
	adminEmails []string
	resolver    AlbumResolver
	logger      *slog.Logger
}

// New создаёт машину состояний.
func New(configValid bool, adminEmails []string, resolver AlbumResolver, logger *slog.Logger) *Machine {
	return &Machine{
		configValid: configValid,
		adminEmails: adminEmails,
		resolver:    resolver,
		logger:      logger.With(slog.String("component", "route")),
	}
}

// IsAdmin сообщает, входит ли identity в allow-list администраторов.
// Используется и внутри Evaluate, и в render-гейте презентационного слоя.
func (m *Machine) IsAdmin(identity *model.Identity) bool {
	return identity.IsAdmin(m.adminEmails)
}

// Evaluate обрабатывает навигационное событие: по identity и фрагменту
// возвращает новое состояние и эффекты. Порядок проверок фиксирован:
// Setup → album/<id> → admin → default.
func (m *Machine) Evaluate(ctx context.Context, identity *model.Identity, fragment string) Result {
	// 1. Невалидная конфигурация — всегда Setup, независимо от
	// аутентификации и фрагмента.
	if !m.configValid {
		return Result{State: State{Screen: ScreenSetup}}
	}

	// 2. Фрагмент album/<id> с непустым <id>
	if id, ok := albumFragmentID(fragment); ok {
		album, err := m.resolver.ResolveAlbum(ctx, id)
		if err != nil {
			// Ошибка поиска: молча сбрасываем фрагмент. Состояние —
			// синхронная переоценка пустого фрагмента, чтобы машина
			// никогда не оставалась в ClientAlbum без фокуса.
			m.logger.Error("Ошибка поиска альбома",
				slog.String("album_id", id),
				slog.String("error", err.Error()),
			)
			return m.withNavigate(m.evaluateDefault(identity, ""), "")
		}
		if album == nil {
			// Альбом не найден: однократное уведомление и сброс фрагмента.
			m.logger.Warn("Альбом не найден", slog.String("album_id", id))
			res := m.withNavigate(m.evaluateDefault(identity, ""), "")
			res.Notice = "notice.album_missing"
			return res
		}
		return Result{State: State{Screen: ScreenClientAlbum, Album: album}}
	}

	// 3. Фрагмент admin: членство здесь не проверяется — это делает
	// render-гейт презентационного слоя. Машина фиксирует намеренное
	// состояние, чтобы последующая смена identity могла его исправить.
	if fragment == "admin" {
		return Result{State: State{Screen: ScreenAdminDashboard}}
	}

	// 4. Пустой или нераспознанный фрагмент
	return m.evaluateDefault(identity, fragment)
}

// evaluateDefault — шаг 4 алгоритма: выбор экрана по identity.
func (m *Machine) evaluateDefault(identity *model.Identity, fragment string) Result {
	if identity == nil {
		return Result{State: State{Screen: ScreenLogin}}
	}

	if m.IsAdmin(identity) {
		res := Result{State: State{Screen: ScreenAdminDashboard}}
		// Оптимистичный переход: состояние выставляется сразу, чтобы
		// не показывать промежуточный кадр, а фрагмент нормализуется
		// к admin последующим навигационным событием, которое обязано
		// сойтись к тому же состоянию.
		if fragment != "admin" {
			res = m.withNavigate(res, "admin")
		}
		return res
	}

	return Result{State: State{Screen: ScreenHome}}
}

// withNavigate добавляет эффект перехода к результату.
func (m *Machine) withNavigate(res Result, fragment string) Result {
	res.Navigate = &fragment
	return res
}

// albumFragmentID извлекает <id> из фрагмента album/<id>.
// Пустой <id> не распознаётся (фрагмент уходит в default-ветку).
func albumFragmentID(fragment string) (string, bool) {
	rest, ok := strings.CutPrefix(fragment, "album/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// FragmentFromPath нормализует путь запроса в фрагмент машины.
// "/" → "", "/admin" → "admin", "/album/<id>" → "album/<id>".
// Прочие пути возвращаются без ведущего слэша и попадают
// в default-ветку как нераспознанные.
func FragmentFromPath(path string) string {
	return strings.Trim(path, "/")
}

// PathFromFragment — обратное преобразование для редиректов.
func PathFromFragment(fragment string) string {
	if fragment == "" {
		return "/"
	}
	return "/" + fragment
}
