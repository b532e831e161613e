package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/luomphoto/luom-selector/internal/domain/model"
)

// postForm выполняет POST формы от имени пользователя.
func (e *testEnv) postForm(t *testing.T, path string, form url.Values, identity *model.Identity) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if identity != nil {
		e.withSession(t, req, identity)
	}
	return e.serve(req)
}

// TestCreateAlbum проверяет создание альбома из формы дашборда.
func TestCreateAlbum(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"name":   {"  Đám cưới  "},
		"folder": {"https://drive.google.com/drive/folders/1A2b3C4d5E6f7G8h9I0jKlMnOpQrStUv?usp=sharing"},
	}
	rec := env.postForm(t, "/admin/albums", form, adminIdentity)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /admin/albums: want 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin" {
		t.Errorf("Location: want /admin, got %q", loc)
	}

	albums, _ := env.albumRepo.List(context.Background())
	if len(albums) != 1 {
		t.Fatalf("Альбомов сохранено: want 1, got %d", len(albums))
	}
	a := albums[0]
	if a.Name != "Đám cưới" {
		t.Errorf("Name: want обрезанное имя, got %q", a.Name)
	}
	if a.DriveFolderID != "1A2b3C4d5E6f7G8h9I0jKlMnOpQrStUv" {
		t.Errorf("DriveFolderID: want нормализованный ID, got %q", a.DriveFolderID)
	}
	if a.CreatedByEmail != testAdminEmail {
		t.Errorf("CreatedByEmail: want %q, got %q", testAdminEmail, a.CreatedByEmail)
	}
}

// TestCreateAlbumValidation проверяет повторный показ формы с ошибкой.
func TestCreateAlbumValidation(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"name":   {"   "},
		"folder": {"folder-id"},
	}
	rec := env.postForm(t, "/admin/albums", form, adminIdentity)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /admin/albums (ошибка): want 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Name must not be empty.") {
		t.Error("Дашборд должен показывать ошибку валидации имени")
	}
	if !strings.Contains(body, `value="folder-id"`) {
		t.Error("Введённое значение папки должно сохраняться в форме")
	}

	albums, _ := env.albumRepo.List(context.Background())
	if len(albums) != 0 {
		t.Error("Альбом не должен сохраняться при ошибке валидации")
	}
}

// TestCreateAlbumForbidden проверяет гейт: не-администратор не создаёт
// альбомы и возвращается на главную.
func TestCreateAlbumForbidden(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"name": {"Альбом"}, "folder": {"folder-id"}}
	rec := env.postForm(t, "/admin/albums", form, clientIdentity)

	if rec.Code != http.StatusFound {
		t.Fatalf("POST /admin/albums (клиент): want 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: want /, got %q", loc)
	}

	albums, _ := env.albumRepo.List(context.Background())
	if len(albums) != 0 {
		t.Error("Не-администратор не должен создавать альбомы")
	}
}

// TestAlbumDetail проверяет страницу выборов альбома.
func TestAlbumDetail(t *testing.T) {
	env := newTestEnv(t)
	env.addAlbum(t, "a1", "Альбом")
	env.selRepo.selections = []*model.Selection{
		{ID: "s1", AlbumID: "a1", ClientUID: "c1", ClientEmail: "anh@example.com", ClientName: "Anh", FileID: "f1", FileName: "IMG_0001.jpg"},
		{ID: "s2", AlbumID: "a1", ClientUID: "c1", ClientEmail: "anh@example.com", ClientName: "Anh", FileID: "f2", FileName: "IMG_0002.jpg"},
		{ID: "s3", AlbumID: "a1", ClientUID: "c2", ClientEmail: "minh@example.com", ClientName: "Minh", FileID: "f1", FileName: "IMG_0001.jpg"},
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/albums/a1", nil)
	env.withSession(t, req, adminIdentity)
	rec := env.serve(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /admin/albums/a1: want 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "anh@example.com") || !strings.Contains(body, "minh@example.com") {
		t.Error("Детали альбома должны содержать всех клиентов")
	}
	if !strings.Contains(body, "IMG_0001.jpg") {
		t.Error("Детали альбома должны содержать имена файлов")
	}
}

// TestAlbumDetailMissing проверяет возврат на дашборд с уведомлением.
func TestAlbumDetailMissing(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/albums/no-such", nil)
	env.withSession(t, req, adminIdentity)
	rec := env.serve(req)

	if rec.Code != http.StatusFound {
		t.Fatalf("GET /admin/albums/no-such: want 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/admin" {
		t.Errorf("Location: want /admin, got %q", loc)
	}
}

// TestExportFileNames проверяет выгрузку имён файлов как text/plain.
func TestExportFileNames(t *testing.T) {
	env := newTestEnv(t)
	env.addAlbum(t, "a1", "Альбом")
	env.selRepo.selections = []*model.Selection{
		{ID: "s1", AlbumID: "a1", ClientEmail: "anh@example.com", FileID: "f1", FileName: "IMG_0001.jpg"},
		{ID: "s2", AlbumID: "a1", ClientEmail: "minh@example.com", FileID: "f2", FileName: "IMG_0002.jpg"},
	}

	t.Run("все клиенты", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/albums/a1/filenames", nil)
		env.withSession(t, req, adminIdentity)
		rec := env.serve(req)

		if rec.Code != http.StatusOK {
			t.Fatalf("GET filenames: want 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Errorf("Content-Type: want text/plain, got %q", ct)
		}
		if rec.Body.String() != "IMG_0001.jpg\nIMG_0002.jpg\n" {
			t.Errorf("Тело выгрузки: got %q", rec.Body.String())
		}
	})

	t.Run("один клиент", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/albums/a1/filenames?client=minh%40example.com", nil)
		env.withSession(t, req, adminIdentity)
		rec := env.serve(req)

		if rec.Body.String() != "IMG_0002.jpg\n" {
			t.Errorf("Тело выгрузки клиента: got %q", rec.Body.String())
		}
	})
}

// TestAlbumDetailRenderGate проверяет гейт страницы деталей.
func TestAlbumDetailRenderGate(t *testing.T) {
	env := newTestEnv(t)
	env.addAlbum(t, "a1", "Альбом")

	t.Run("аноним видит вход", func(t *testing.T) {
		rec := env.serve(httptest.NewRequest(http.MethodGet, "/admin/albums/a1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("GET (аноним): want 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Sign in with Google") {
			t.Error("Аноним должен видеть страницу входа")
		}
	})

	t.Run("клиент уходит на главную", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/albums/a1", nil)
		env.withSession(t, req, clientIdentity)
		rec := env.serve(req)

		if rec.Code != http.StatusFound {
			t.Fatalf("GET (клиент): want 302, got %d", rec.Code)
		}
	})
}
