package model

import "time"

// Invoice — нормализованный результат извлечения накладной.
// Структура произвольна (внешний workflow не даёт контракта), поэтому
// храним как map. Пустая map = «извлечение не дало пригодных данных».
type Invoice map[string]any

// PendingInvoice — накладная, ожидающая ревью пользователем.
// Привязана к пользователю; перезаписывается при каждой новой загрузке.
type PendingInvoice struct {
	UserID    string
	Payload   Invoice
	UpdatedAt time.Time
}
