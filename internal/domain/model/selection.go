package model

import "time"

// Selection — одна выбранная клиентом фотография.
// Хранится в таблице selections, одна строка на файл на отправку.
// Уникальность не требуется: повторная отправка создаёт дубликаты,
// а не обновляет существующие записи.
type Selection struct {
	// ID — UUID записи, назначается хранилищем
	ID string
	// AlbumID — UUID альбома, к которому относится выбор
	AlbumID string
	// ClientUID — идентификатор клиента
	ClientUID string
	// ClientEmail — email клиента
	ClientEmail string
	// ClientName — имя, введённое клиентом при отправке выбора
	ClientName string
	// FileID — идентификатор файла Google Drive
	FileID string
	// FileName — имя файла на момент выбора
	FileName string
	// SelectedAt — время отправки выбора
	SelectedAt time.Time
}

// SelectionGroup — выборы одного клиента внутри альбома.
// Группы упорядочены по первому появлению клиента в списке записей.
type SelectionGroup struct {
	// ClientEmail — email клиента
	ClientEmail string
	// ClientName — имя клиента из последней отправки
	ClientName string
	// Items — записи клиента в порядке вставки
	Items []*Selection
}

// GroupSelectionsByClient группирует записи по email клиента.
// Порядок групп — по первому появлению клиента, порядок записей
// внутри группы сохраняется.
func GroupSelectionsByClient(selections []*Selection) []*SelectionGroup {
	index := make(map[string]*SelectionGroup)
	var groups []*SelectionGroup

	for _, s := range selections {
		g, ok := index[s.ClientEmail]
		if !ok {
			g = &SelectionGroup{ClientEmail: s.ClientEmail}
			index[s.ClientEmail] = g
			groups = append(groups, g)
		}
		g.Items = append(g.Items, s)
		if s.ClientName != "" {
			g.ClientName = s.ClientName
		}
	}
	return groups
}
