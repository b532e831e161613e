package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/luomphoto/luom-selector/internal/domain/model"
)

// AlbumRepository — интерфейс доступа к таблице albums.
// Методов Update и Delete нет: альбомы неизменяемы.
type AlbumRepository interface {
	// Create создаёт новый альбом и назначает ему ID.
	Create(ctx context.Context, album *model.Album) error
	// GetByID возвращает альбом по UUID.
	GetByID(ctx context.Context, id string) (*model.Album, error)
	// List возвращает все альбомы, новые первыми.
	// Фильтрации по создателю нет: список общий для всех администраторов.
	List(ctx context.Context) ([]*model.Album, error)
}

// albumRepo — реализация AlbumRepository.
type albumRepo struct {
	db DBTX
}

// NewAlbumRepository создаёт репозиторий альбомов.
func NewAlbumRepository(db DBTX) AlbumRepository {
	return &albumRepo{db: db}
}

func (r *albumRepo) Create(ctx context.Context, album *model.Album) error {
	if album.ID == "" {
		album.ID = uuid.New().String()
	}

	query := `
		INSERT INTO albums (id, name, drive_folder_id, created_by_uid, created_by_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		album.ID, album.Name, album.DriveFolderID,
		album.CreatedByUID, album.CreatedByEmail,
	).Scan(&album.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания альбома: %w", err)
	}
	return nil
}

func (r *albumRepo) GetByID(ctx context.Context, id string) (*model.Album, error) {
	query := `
		SELECT id, name, drive_folder_id, created_by_uid, created_by_email, created_at
		FROM albums
		WHERE id = $1`

	album := &model.Album{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&album.ID, &album.Name, &album.DriveFolderID,
		&album.CreatedByUID, &album.CreatedByEmail, &album.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения альбома: %w", err)
	}
	return album, nil
}

func (r *albumRepo) List(ctx context.Context) ([]*model.Album, error) {
	query := `
		SELECT id, name, drive_folder_id, created_by_uid, created_by_email, created_at
		FROM albums
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка альбомов: %w", err)
	}
	defer rows.Close()

	var result []*model.Album
	for rows.Next() {
		album := &model.Album{}
		if err := rows.Scan(
			&album.ID, &album.Name, &album.DriveFolderID,
			&album.CreatedByUID, &album.CreatedByEmail, &album.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования альбома: %w", err)
		}
		result = append(result, album)
	}
	return result, rows.Err()
}
