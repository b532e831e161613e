// Пакет service — бизнес-логика сервиса выбора фотографий.
// albums.go — сервис альбомов: создание, список, поиск, галерея Drive.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/luomphoto/luom-selector/internal/domain/model"
	"github.com/luomphoto/luom-selector/internal/driveclient"
	"github.com/luomphoto/luom-selector/internal/repository"
)

// DriveLister — клиент списка файлов папки Google Drive.
// Реализуется driveclient.Client.
type DriveLister interface {
	ListImages(ctx context.Context, folderID string) ([]*model.DriveFile, error)
}

// AlbumService — сервис альбомов.
type AlbumService struct {
	albumRepo repository.AlbumRepository
	drive     DriveLister
	logger    *slog.Logger
}

// NewAlbumService создаёт сервис альбомов.
// drive может быть nil в режиме Setup: тогда Photos возвращает ErrDriveUnavailable.
func NewAlbumService(
	albumRepo repository.AlbumRepository,
	drive DriveLister,
	logger *slog.Logger,
) *AlbumService {
	return &AlbumService{
		albumRepo: albumRepo,
		drive:     drive,
		logger:    logger.With(slog.String("component", "albums_service")),
	}
}

// Create создаёт альбом. folderInput — ссылка на папку Drive или голый ID,
// нормализуется перед сохранением. Доступность папки при создании
// не проверяется: публичность папки — ответственность фотографа.
func (s *AlbumService) Create(ctx context.Context, name, folderInput string, creator *model.Identity) (*model.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: имя альбома не может быть пустым", ErrValidation)
	}

	folderID := driveclient.ExtractFolderID(folderInput)
	if folderID == "" {
		return nil, fmt.Errorf("%w: не удалось распознать ссылку или ID папки Drive", ErrValidation)
	}

	album := &model.Album{
		Name:          name,
		DriveFolderID: folderID,
	}
	if creator != nil {
		album.CreatedByUID = creator.UID
		album.CreatedByEmail = creator.Email
	}

	if err := s.albumRepo.Create(ctx, album); err != nil {
		return nil, fmt.Errorf("создание альбома: %w", err)
	}

	s.logger.Info("Альбом создан",
		slog.String("album_id", album.ID),
		slog.String("name", album.Name),
		slog.String("folder_id", album.DriveFolderID),
	)
	return album, nil
}

// List возвращает все альбомы, новые первыми.
func (s *AlbumService) List(ctx context.Context) ([]*model.Album, error) {
	albums, err := s.albumRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка альбомов: %w", err)
	}
	return albums, nil
}

// Get возвращает альбом по ID.
func (s *AlbumService) Get(ctx context.Context, id string) (*model.Album, error) {
	album, err := s.albumRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение альбома: %w", err)
	}
	return album, nil
}

// ResolveAlbum — адаптер для машины маршрутизации:
// ненайденный альбом кодируется как (nil, nil), а не ошибка.
func (s *AlbumService) ResolveAlbum(ctx context.Context, id string) (*model.Album, error) {
	album, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return album, err
}

// Photos возвращает файлы изображений папки альбома.
// Недоступная папка (удалена или закрыта) — ErrDriveAccess,
// прочие сбои Drive — ErrDriveUnavailable.
func (s *AlbumService) Photos(ctx context.Context, album *model.Album) ([]*model.DriveFile, error) {
	if s.drive == nil {
		return nil, ErrDriveUnavailable
	}

	files, err := s.drive.ListImages(ctx, album.DriveFolderID)
	if err != nil {
		if errors.Is(err, driveclient.ErrAccess) {
			s.logger.Warn("Папка альбома недоступна",
				slog.String("album_id", album.ID),
				slog.String("folder_id", album.DriveFolderID),
			)
			return nil, fmt.Errorf("%w: %w", ErrDriveAccess, err)
		}
		s.logger.Error("Ошибка обращения к Drive",
			slog.String("album_id", album.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrDriveUnavailable, err)
	}
	return files, nil
}
