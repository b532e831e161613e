package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/luomphoto/luom-selector/internal/domain/model"
	"github.com/luomphoto/luom-selector/internal/repository"
	"github.com/luomphoto/luom-selector/internal/route"
	"github.com/luomphoto/luom-selector/internal/service"
	"github.com/luomphoto/luom-selector/internal/ui/auth"
	"github.com/luomphoto/luom-selector/internal/ui/i18n"
	"github.com/luomphoto/luom-selector/internal/ui/middleware"
	"github.com/luomphoto/luom-selector/internal/ui/templates"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubAlbumRepo — репозиторий альбомов в памяти, новые первыми.
type stubAlbumRepo struct {
	albums []*model.Album
	nextID int
}

func (s *stubAlbumRepo) Create(_ context.Context, album *model.Album) error {
	if album.ID == "" {
		s.nextID++
		album.ID = fmt.Sprintf("alb-%d", s.nextID)
	}
	if album.CreatedAt.IsZero() {
		album.CreatedAt = time.Now()
	}
	s.albums = append([]*model.Album{album}, s.albums...)
	return nil
}

func (s *stubAlbumRepo) GetByID(_ context.Context, id string) (*model.Album, error) {
	for _, a := range s.albums {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubAlbumRepo) List(_ context.Context) ([]*model.Album, error) {
	return s.albums, nil
}

// stubSelectionRepo — репозиторий выборов в памяти.
type stubSelectionRepo struct {
	selections []*model.Selection
}

func (s *stubSelectionRepo) BatchCreate(_ context.Context, selections []*model.Selection) error {
	s.selections = append(s.selections, selections...)
	return nil
}

func (s *stubSelectionRepo) ListByAlbum(_ context.Context, albumID string) ([]*model.Selection, error) {
	var result []*model.Selection
	for _, sel := range s.selections {
		if sel.AlbumID == albumID {
			result = append(result, sel)
		}
	}
	return result, nil
}

func (s *stubSelectionRepo) ListByAlbumAndClient(_ context.Context, albumID, clientEmail string) ([]*model.Selection, error) {
	var result []*model.Selection
	for _, sel := range s.selections {
		if sel.AlbumID == albumID && sel.ClientEmail == clientEmail {
			result = append(result, sel)
		}
	}
	return result, nil
}

func (s *stubSelectionRepo) CountByAlbum(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, sel := range s.selections {
		counts[sel.AlbumID]++
	}
	return counts, nil
}

// stubDrive — клиент Drive в памяти.
type stubDrive struct {
	files []*model.DriveFile
	err   error
}

func (s *stubDrive) ListImages(_ context.Context, _ string) ([]*model.DriveFile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.files, nil
}

const testAdminEmail = "admin@example.com"

var adminIdentity = &model.Identity{UID: "admin-1", Email: testAdminEmail, DisplayName: "Luom"}

var clientIdentity = &model.Identity{UID: "client-1", Email: "client@example.com", DisplayName: "Anh"}

// testEnv — собранные для теста обработчики с фейковыми хранилищами.
type testEnv struct {
	handlers  *Handlers
	albumRepo *stubAlbumRepo
	selRepo   *stubSelectionRepo
	drive     *stubDrive
	sessions  *auth.SessionManager
	router    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := testLogger()

	albumRepo := &stubAlbumRepo{}
	selRepo := &stubSelectionRepo{}
	drive := &stubDrive{files: []*model.DriveFile{
		{ID: "f1", Name: "IMG_0001.jpg", ThumbnailLink: "https://lh3.example/f1"},
		{ID: "f2", Name: "IMG_0002.jpg", ThumbnailLink: "https://lh3.example/f2"},
	}}

	albumSvc := service.NewAlbumService(albumRepo, drive, logger)
	selSvc := service.NewSelectionService(selRepo, logger)

	machine := route.New(true, []string{testAdminEmail}, albumSvc, logger)

	sessions, err := auth.NewSessionManager("test-session-key", false)
	if err != nil {
		t.Fatalf("NewSessionManager(): %v", err)
	}

	bundle := i18n.NewBundle(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		t.Fatalf("LoadFromEmbedFS(): %v", err)
	}
	renderer, err := templates.NewRenderer(bundle, logger)
	if err != nil {
		t.Fatalf("NewRenderer(): %v", err)
	}

	h := New(Config{
		Machine:    machine,
		Albums:     albumSvc,
		Selections: selSvc,
		Sessions:   sessions,
		Renderer:   renderer,
		BaseURL:    "https://photos.example.com",
		Logger:     logger,
	})

	r := chi.NewRouter()
	r.Use(i18n.Middleware())
	r.Use(middleware.NewIdentityLoader(sessions, logger).Middleware())
	r.Get("/", h.HandleNavigate)
	r.Get("/admin", h.HandleNavigate)
	r.Post("/admin/albums", h.HandleCreateAlbum)
	r.Get("/admin/albums/{albumID}", h.HandleAlbumDetail)
	r.Get("/admin/albums/{albumID}/filenames", h.HandleExportFileNames)
	r.Get("/album/{albumID}", h.HandleNavigate)
	r.Post("/album/{albumID}/toggle", h.HandleToggle)
	r.Post("/album/{albumID}/submit", h.HandleSubmit)
	r.Get("/auth/login", h.HandleLogin)
	r.Get("/auth/logout", h.HandleLogout)
	r.Get("/lang", h.HandleSetLanguage)

	return &testEnv{
		handlers:  h,
		albumRepo: albumRepo,
		selRepo:   selRepo,
		drive:     drive,
		sessions:  sessions,
		router:    r,
	}
}

// withSession добавляет в запрос зашифрованную сессию пользователя.
func (e *testEnv) withSession(t *testing.T, req *http.Request, identity *model.Identity) {
	t.Helper()

	rec := httptest.NewRecorder()
	err := e.sessions.SetSessionCookie(rec, &auth.SessionData{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("SetSessionCookie(): %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
}

func (e *testEnv) addAlbum(t *testing.T, id, name string) *model.Album {
	t.Helper()
	album := &model.Album{ID: id, Name: name, DriveFolderID: "folder-" + id}
	if err := e.albumRepo.Create(context.Background(), album); err != nil {
		t.Fatalf("Create(): %v", err)
	}
	return album
}

// serve выполняет запрос через полный стек middleware и роутер.
func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
