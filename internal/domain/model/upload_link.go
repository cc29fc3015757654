package model

import "time"

// Типы upload-ссылок.
const (
	// LinkTypeTemporary — одноразовая ссылка с истечением.
	LinkTypeTemporary = "temporary"
	// LinkTypePermanent — бессрочная многоразовая ссылка.
	LinkTypePermanent = "permanent"
)

// ValidLinkType проверяет, является ли строка допустимым типом ссылки.
func ValidLinkType(t string) bool {
	return t == LinkTypeTemporary || t == LinkTypePermanent
}

// UploadLink — предавторизованная ссылка на загрузку без аутентификации.
type UploadLink struct {
	// ID — UUID строки
	ID string
	// Token — неугадываемый токен (32 случайных байта, hex)
	Token string
	// Type — тип ссылки (temporary, permanent)
	Type string
	// CreatedBy — администратор, выпустивший ссылку
	CreatedBy string
	// CreatedAt — время выпуска
	CreatedAt time.Time
	// ExpiresAt — срок действия; nil для permanent
	ExpiresAt *time.Time
	// Used — ссылка погашена (только temporary)
	Used bool
	// Active — ссылка активна
	Active bool
	// Description — описание назначения
	Description string
}
