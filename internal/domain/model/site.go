// Пакет model — доменные модели stroysklad.
package model

import "time"

// Статусы строительного объекта.
const (
	SiteStatusActive    = "Active"
	SiteStatusCompleted = "Completed"
	SiteStatusOnHold    = "On Hold"
)

// ValidSiteStatus проверяет, является ли строка допустимым статусом объекта.
func ValidSiteStatus(status string) bool {
	switch status {
	case SiteStatusActive, SiteStatusCompleted, SiteStatusOnHold:
		return true
	}
	return false
}

// Site — строительный объект. Владеет своими материалами и грантами доступа.
type Site struct {
	// ID — UUID объекта
	ID string
	// Name — название объекта
	Name string
	// Address — адрес
	Address string
	// Status — статус (Active, Completed, On Hold)
	Status string
	// CreatedBy — идентификатор создавшего пользователя
	CreatedBy string
	// CreatedAt — время создания
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// SiteAccessGrant — грант доступа пользователя к объекту.
// Наличие строки = доступ разрешён.
type SiteAccessGrant struct {
	UserID string
	SiteID string
}
