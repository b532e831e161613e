package model

import "strings"

// Identity — аутентифицированный пользователь (Google OIDC).
// Не персистентна: создаётся при входе, очищается при выходе.
// Отсутствие Identity означает неаутентифицированную сессию.
type Identity struct {
	// UID — уникальный идентификатор пользователя (claim sub)
	UID string
	// Email — email пользователя (может быть пустым)
	Email string
	// DisplayName — отображаемое имя (может быть пустым)
	DisplayName string
}

// IsAdmin проверяет, входит ли email пользователя в allow-list
// администраторов. Сравнение регистронезависимое.
func (id *Identity) IsAdmin(adminEmails []string) bool {
	if id == nil || id.Email == "" {
		return false
	}
	email := strings.ToLower(id.Email)
	for _, a := range adminEmails {
		if strings.ToLower(a) == email {
			return true
		}
	}
	return false
}
