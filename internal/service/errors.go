// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrDriveUnavailable — Google Drive недоступен или не отвечает.
	ErrDriveUnavailable = errors.New("Google Drive недоступен")
	// ErrDriveAccess — папка Drive не существует или закрыта для публичного доступа.
	ErrDriveAccess = errors.New("папка Drive недоступна")
	// ErrIDPUnavailable — Google OIDC недоступен.
	ErrIDPUnavailable = errors.New("Identity Provider недоступен")
)
