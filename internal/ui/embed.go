// Package ui отдаёт HTML-страницы приложения.
package ui

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var content embed.FS

// TemplatesFS возвращает файловую систему шаблонов.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		panic("ui: templates недоступны: " + err.Error())
	}
	return sub
}

// StaticFS возвращает файловую систему статики.
func StaticFS() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic("ui: статика недоступна: " + err.Error())
	}
	return sub
}
