// selections.go — сервис выборов: отправка пакета, списки для админа и клиента.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/luomphoto/luom-selector/internal/domain/model"
	"github.com/luomphoto/luom-selector/internal/repository"
)

// SelectedFile — один файл в отправляемом выборе.
type SelectedFile struct {
	// ID — идентификатор файла Drive
	ID string
	// Name — имя файла
	Name string
}

// SelectionService — сервис выборов клиентов.
type SelectionService struct {
	selectionRepo repository.SelectionRepository
	logger        *slog.Logger
}

// NewSelectionService создаёт сервис выборов.
func NewSelectionService(selectionRepo repository.SelectionRepository, logger *slog.Logger) *SelectionService {
	return &SelectionService{
		selectionRepo: selectionRepo,
		logger:        logger.With(slog.String("component", "selections_service")),
	}
}

// Submit атомарно сохраняет выбор клиента: одна запись на файл.
// Пустой список файлов и пустое имя клиента — ошибки валидации.
// Повторная отправка допустима и создаёт новые записи.
func (s *SelectionService) Submit(
	ctx context.Context,
	album *model.Album,
	client *model.Identity,
	clientName string,
	files []SelectedFile,
) error {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return fmt.Errorf("%w: имя не может быть пустым", ErrValidation)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: выбор не содержит ни одного файла", ErrValidation)
	}
	if client == nil {
		return fmt.Errorf("%w: отправка выбора требует аутентификации", ErrValidation)
	}

	selections := make([]*model.Selection, 0, len(files))
	for _, f := range files {
		if f.ID == "" {
			return fmt.Errorf("%w: файл без идентификатора", ErrValidation)
		}
		selections = append(selections, &model.Selection{
			AlbumID:     album.ID,
			ClientUID:   client.UID,
			ClientEmail: client.Email,
			ClientName:  clientName,
			FileID:      f.ID,
			FileName:    f.Name,
		})
	}

	if err := s.selectionRepo.BatchCreate(ctx, selections); err != nil {
		return fmt.Errorf("сохранение выбора: %w", err)
	}

	s.logger.Info("Выбор отправлен",
		slog.String("album_id", album.ID),
		slog.String("client_email", client.Email),
		slog.Int("files", len(files)),
	)
	return nil
}

// ListForAlbum возвращает выборы альбома, сгруппированные по клиентам.
// Порядок групп — по первому появлению клиента.
func (s *SelectionService) ListForAlbum(ctx context.Context, albumID string) ([]*model.SelectionGroup, error) {
	selections, err := s.selectionRepo.ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("получение выборов альбома: %w", err)
	}
	return model.GroupSelectionsByClient(selections), nil
}

// ListForClient возвращает выборы одного клиента в альбоме в порядке вставки.
func (s *SelectionService) ListForClient(ctx context.Context, albumID, clientEmail string) ([]*model.Selection, error) {
	selections, err := s.selectionRepo.ListByAlbumAndClient(ctx, albumID, clientEmail)
	if err != nil {
		return nil, fmt.Errorf("получение выборов клиента: %w", err)
	}
	return selections, nil
}

// Counts возвращает количество записей выборов по каждому альбому.
// Альбомы без записей в карте отсутствуют.
func (s *SelectionService) Counts(ctx context.Context) (map[string]int, error) {
	counts, err := s.selectionRepo.CountByAlbum(ctx)
	if err != nil {
		return nil, fmt.Errorf("подсчёт выборов: %w", err)
	}
	return counts, nil
}

// ExportFileNames возвращает имена выбранных файлов для копирования.
// Непустой clientEmail ограничивает выгрузку одним клиентом.
// Дубликаты сохраняются: фотографу важно видеть повторные отправки.
func (s *SelectionService) ExportFileNames(ctx context.Context, albumID, clientEmail string) ([]string, error) {
	var (
		selections []*model.Selection
		err        error
	)
	if clientEmail != "" {
		selections, err = s.selectionRepo.ListByAlbumAndClient(ctx, albumID, clientEmail)
	} else {
		selections, err = s.selectionRepo.ListByAlbum(ctx, albumID)
	}
	if err != nil {
		return nil, fmt.Errorf("выгрузка имён файлов: %w", err)
	}

	names := make([]string, 0, len(selections))
	for _, sel := range selections {
		names = append(names, sel.FileName)
	}
	return names, nil
}
