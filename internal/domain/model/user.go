package model

import "time"

// UserProfile — профиль пользователя с ролью.
// Создаётся при регистрации, читается на каждом защищённом запросе.
type UserProfile struct {
	// UserID — идентификатор пользователя в identity-провайдере (sub)
	UserID string
	// FullName — полное имя
	FullName string
	// Role — роль (admin, manager, worker)
	Role string
	// Email — адрес электронной почты
	Email string
	// CreatedAt — время создания профиля
	CreatedAt time.Time
}

// Identity — разрешённая личность запроса: результат identity gate.
// Кладётся в контекст запроса для downstream-гейтов и обработчиков.
type Identity struct {
	// UserID — подтверждённый провайдером идентификатор
	UserID string
	// Email — подтверждённый адрес
	Email string
	// Role — роль из профиля
	Role string
	// Profile — сырой профиль
	Profile *UserProfile
}
