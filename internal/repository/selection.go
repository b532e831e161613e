package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luomphoto/luom-selector/internal/domain/model"
)

// SelectionRepository — интерфейс доступа к таблице selections.
// Методов Update и Delete нет: записи выборов неизменяемы.
type SelectionRepository interface {
	// BatchCreate создаёт пакет записей атомарно: либо сохраняются
	// все записи, либо ни одной.
	BatchCreate(ctx context.Context, selections []*model.Selection) error
	// ListByAlbum возвращает все выборы альбома в порядке вставки.
	ListByAlbum(ctx context.Context, albumID string) ([]*model.Selection, error)
	// ListByAlbumAndClient возвращает выборы одного клиента в альбоме.
	ListByAlbumAndClient(ctx context.Context, albumID, clientEmail string) ([]*model.Selection, error)
	// CountByAlbum возвращает количество записей по каждому альбому.
	// Альбомы без записей в карту не попадают.
	CountByAlbum(ctx context.Context) (map[string]int, error)
}

// selectionRepo — реализация SelectionRepository.
// Пакетная запись требует транзакции, поэтому репозиторий держит
// TxRunner поверх пула, а не голый DBTX.
type selectionRepo struct {
	db DBTX
	tx *TxRunner
}

// NewSelectionRepository создаёт репозиторий выборов.
func NewSelectionRepository(pool *pgxpool.Pool) SelectionRepository {
	return &selectionRepo{db: pool, tx: NewTxRunner(pool)}
}

func (r *selectionRepo) BatchCreate(ctx context.Context, selections []*model.Selection) error {
	if len(selections) == 0 {
		return nil
	}

	query := `
		INSERT INTO selections (id, album_id, client_uid, client_email, client_name, file_id, file_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING selected_at`

	return r.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		for _, s := range selections {
			if s.ID == "" {
				s.ID = uuid.New().String()
			}
			err := tx.QueryRow(ctx, query,
				s.ID, s.AlbumID, s.ClientUID, s.ClientEmail, s.ClientName, s.FileID, s.FileName,
			).Scan(&s.SelectedAt)
			if err != nil {
				return fmt.Errorf("ошибка записи выбора %s: %w", s.FileID, err)
			}
		}
		return nil
	})
}

func (r *selectionRepo) ListByAlbum(ctx context.Context, albumID string) ([]*model.Selection, error) {
	query := `
		SELECT id, album_id, client_uid, client_email, client_name, file_id, file_name, selected_at
		FROM selections
		WHERE album_id = $1
		ORDER BY seq`

	return r.queryList(ctx, query, albumID)
}

func (r *selectionRepo) ListByAlbumAndClient(ctx context.Context, albumID, clientEmail string) ([]*model.Selection, error) {
	query := `
		SELECT id, album_id, client_uid, client_email, client_name, file_id, file_name, selected_at
		FROM selections
		WHERE album_id = $1 AND client_email = $2
		ORDER BY seq`

	return r.queryList(ctx, query, albumID, clientEmail)
}

func (r *selectionRepo) CountByAlbum(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT album_id, COUNT(*)
		FROM selections
		GROUP BY album_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта выборов: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var albumID string
		var count int
		if err := rows.Scan(&albumID, &count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования счётчика выборов: %w", err)
		}
		counts[albumID] = count
	}
	return counts, rows.Err()
}

// queryList выполняет запрос списка выборов и сканирует результат.
func (r *selectionRepo) queryList(ctx context.Context, query string, args ...any) ([]*model.Selection, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка выборов: %w", err)
	}
	defer rows.Close()

	var result []*model.Selection
	for rows.Next() {
		s := &model.Selection{}
		if err := rows.Scan(
			&s.ID, &s.AlbumID, &s.ClientUID, &s.ClientEmail, &s.ClientName,
			&s.FileID, &s.FileName, &s.SelectedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования выбора: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
