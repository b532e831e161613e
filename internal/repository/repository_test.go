package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/luomphoto/luom-selector/internal/config"
	"github.com/luomphoto/luom-selector/internal/database"
	"github.com/luomphoto/luom-selector/internal/domain/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool, очистка через t.Cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("luom_test"),
		postgres.WithUsername("luom"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	os.Setenv("LS_DB_HOST", host)
	os.Setenv("LS_DB_PORT", port.Port())
	os.Setenv("LS_DB_NAME", "luom_test")
	os.Setenv("LS_DB_USER", "luom")
	os.Setenv("LS_DB_PASSWORD", "test-password")
	os.Setenv("LS_DB_SSL_MODE", "disable")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Применяем миграции
	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	// Подключаемся
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// createTestAlbum создаёт альбом для тестов выборов.
func createTestAlbum(t *testing.T, repo AlbumRepository, name string) *model.Album {
	t.Helper()
	album := &model.Album{
		Name:           name,
		DriveFolderID:  "1AbCdEfGhIjKlMnOpQrStUvWx",
		CreatedByUID:   uuid.New().String(),
		CreatedByEmail: "photographer@example.com",
	}
	if err := repo.Create(context.Background(), album); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	return album
}

// --- Тесты AlbumRepository ---

func TestAlbumCreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewAlbumRepository(pool)

	album := createTestAlbum(t, repo, "Wedding John & Jane")

	if album.ID == "" {
		t.Fatal("ID не назначен при создании")
	}
	if album.CreatedAt.IsZero() {
		t.Error("CreatedAt не установлен")
	}

	// GetByID
	got, err := repo.GetByID(ctx, album.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Name != album.Name {
		t.Errorf("Name: want %q, got %q", album.Name, got.Name)
	}
	if got.DriveFolderID != album.DriveFolderID {
		t.Errorf("DriveFolderID: want %q, got %q", album.DriveFolderID, got.DriveFolderID)
	}

	// GetByID несуществующего альбома
	_, err = repo.GetByID(ctx, uuid.New().String())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(несуществующий): want ErrNotFound, got %v", err)
	}
}

func TestAlbumList(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewAlbumRepository(pool)

	createTestAlbum(t, repo, "Album One")
	createTestAlbum(t, repo, "Album Two")

	albums, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(albums) != 2 {
		t.Fatalf("Количество альбомов: want 2, got %d", len(albums))
	}
}

// --- Тесты SelectionRepository ---

func TestSelectionBatchCreateAndList(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	albumRepo := NewAlbumRepository(pool)
	selRepo := NewSelectionRepository(pool)

	album := createTestAlbum(t, albumRepo, "Batch Test")

	batch := []*model.Selection{
		{AlbumID: album.ID, ClientUID: "uid-a", ClientEmail: "a@x.com", ClientName: "Anh", FileID: "f1", FileName: "IMG_001.jpg"},
		{AlbumID: album.ID, ClientUID: "uid-a", ClientEmail: "a@x.com", ClientName: "Anh", FileID: "f2", FileName: "IMG_002.jpg"},
		{AlbumID: album.ID, ClientUID: "uid-b", ClientEmail: "b@x.com", ClientName: "Minh", FileID: "f3", FileName: "IMG_003.jpg"},
	}
	if err := selRepo.BatchCreate(ctx, batch); err != nil {
		t.Fatalf("BatchCreate() ошибка: %v", err)
	}
	for i, s := range batch {
		if s.ID == "" {
			t.Errorf("Запись %d: ID не назначен", i)
		}
		if s.SelectedAt.IsZero() {
			t.Errorf("Запись %d: SelectedAt не установлен", i)
		}
	}

	// ListByAlbum — порядок вставки сохраняется
	got, err := selRepo.ListByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("ListByAlbum() ошибка: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Количество выборов: want 3, got %d", len(got))
	}
	for i, want := range []string{"f1", "f2", "f3"} {
		if got[i].FileID != want {
			t.Errorf("Выбор %d: want %s, got %s", i, want, got[i].FileID)
		}
	}

	// ListByAlbumAndClient
	forA, err := selRepo.ListByAlbumAndClient(ctx, album.ID, "a@x.com")
	if err != nil {
		t.Fatalf("ListByAlbumAndClient() ошибка: %v", err)
	}
	if len(forA) != 2 {
		t.Errorf("Выборов клиента a@x.com: want 2, got %d", len(forA))
	}
	if forA[0].ClientName != "Anh" {
		t.Errorf("ClientName: want Anh, got %q", forA[0].ClientName)
	}

	// CountByAlbum
	counts, err := selRepo.CountByAlbum(ctx)
	if err != nil {
		t.Fatalf("CountByAlbum() ошибка: %v", err)
	}
	if counts[album.ID] != 3 {
		t.Errorf("Счётчик альбома: want 3, got %d", counts[album.ID])
	}
}

// TestSelectionBatchAtomicity проверяет атомарность пакетной записи:
// при ошибке в середине пакета не сохраняется ни одной записи.
func TestSelectionBatchAtomicity(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	albumRepo := NewAlbumRepository(pool)
	selRepo := NewSelectionRepository(pool)

	album := createTestAlbum(t, albumRepo, "Atomicity Test")

	// Вторая запись нарушает FK: ссылается на несуществующий альбом.
	batch := []*model.Selection{
		{AlbumID: album.ID, ClientUID: "uid-a", ClientEmail: "a@x.com", FileID: "f1", FileName: "IMG_001.jpg"},
		{AlbumID: uuid.New().String(), ClientUID: "uid-a", ClientEmail: "a@x.com", FileID: "f2", FileName: "IMG_002.jpg"},
		{AlbumID: album.ID, ClientUID: "uid-a", ClientEmail: "a@x.com", FileID: "f3", FileName: "IMG_003.jpg"},
	}
	if err := selRepo.BatchCreate(ctx, batch); err == nil {
		t.Fatal("BatchCreate() должен вернуть ошибку при нарушении FK")
	}

	got, err := selRepo.ListByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("ListByAlbum() ошибка: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("После неудачного пакета в альбоме должно быть 0 записей, got %d", len(got))
	}
}

// TestSelectionDuplicatesAllowed проверяет, что повторная отправка
// создаёт дубликаты, а не обновляет записи.
func TestSelectionDuplicatesAllowed(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	albumRepo := NewAlbumRepository(pool)
	selRepo := NewSelectionRepository(pool)

	album := createTestAlbum(t, albumRepo, "Duplicates Test")

	sel := func() *model.Selection {
		return &model.Selection{
			AlbumID: album.ID, ClientUID: "uid-a", ClientEmail: "a@x.com",
			FileID: "f1", FileName: "IMG_001.jpg",
		}
	}
	if err := selRepo.BatchCreate(ctx, []*model.Selection{sel()}); err != nil {
		t.Fatalf("Первый BatchCreate() ошибка: %v", err)
	}
	if err := selRepo.BatchCreate(ctx, []*model.Selection{sel()}); err != nil {
		t.Fatalf("Повторный BatchCreate() ошибка: %v", err)
	}

	got, err := selRepo.ListByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("ListByAlbum() ошибка: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("После повторной отправки: want 2 записи, got %d", len(got))
	}
}
