// folder.go — нормализация идентификатора папки Google Drive.
package driveclient

import "regexp"

// folderURLRegexp — ссылка на папку Drive вида .../folders/<id>.
var folderURLRegexp = regexp.MustCompile(`drive\.google\.com/.*folders/([a-zA-Z0-9_-]+)`)

// bareFolderIDRegexp — голый идентификатор папки: только буквы, цифры,
// дефис и подчёркивание, не короче 20 символов.
var bareFolderIDRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]{20,}$`)

// ExtractFolderID извлекает идентификатор папки из пользовательского
// ввода: полной ссылки на папку Drive либо голого идентификатора.
// Возвращает пустую строку, если ввод не распознан — в этом случае
// вызывающая сторона обязана отклонить операцию без записи в хранилище.
func ExtractFolderID(input string) string {
	if m := folderURLRegexp.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	if bareFolderIDRegexp.MatchString(input) {
		return input
	}
	return ""
}
