package model

// DriveFile — файл из папки Google Drive.
// Не персистентен: список запрашивается заново при каждом просмотре
// альбома, кэширование между сессиями не выполняется.
type DriveFile struct {
	// ID — идентификатор файла в Drive
	ID string
	// Name — имя файла
	Name string
	// MimeType — MIME-тип (image/*)
	MimeType string
	// ThumbnailLink — URL миниатюры (вычисляется из ID)
	ThumbnailLink string
	// DirectLink — URL скачивания оригинала (вычисляется из ID)
	DirectLink string
	// CreatedTime — время создания файла в Drive (RFC 3339, может быть пустым)
	CreatedTime string
}
