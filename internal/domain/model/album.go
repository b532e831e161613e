package model

import "time"

// Album — альбом, привязанный к публичной папке Google Drive.
// Хранится в таблице albums. Записи неизменяемы: альбом создаётся
// администратором и никогда не обновляется и не удаляется.
type Album struct {
	// ID — UUID записи, назначается хранилищем
	ID string
	// Name — отображаемое имя альбома
	Name string
	// DriveFolderID — идентификатор папки Google Drive (opaque-строка,
	// существование папки не проверяется до первого листинга файлов)
	DriveFolderID string
	// CreatedByUID — идентификатор создавшего администратора
	CreatedByUID string
	// CreatedByEmail — email создавшего администратора
	CreatedByEmail string
	// CreatedAt — время создания записи
	CreatedAt time.Time
}
