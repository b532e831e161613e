// Пакет templates — серверный рендеринг страниц через html/template.
// Шаблоны встраиваются в бинарник через //go:embed: layout.gohtml плюс
// один файл на страницу.
package templates

import "embed"

// templateFS — встроенная файловая система с шаблонами страниц.
//
//go:embed pages/*.gohtml
var templateFS embed.FS
