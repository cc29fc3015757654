package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material — материал на объекте.
// Идентичность для слияния при перемещении — (site_id, name, unit).
// Количество меняется только ledger-операцией.
type Material struct {
	// ID — UUID материала
	ID string
	// SiteID — объект-владелец
	SiteID string
	// Name — наименование материала
	Name string
	// Unit — единица измерения (bag, m3, kg, ...)
	Unit string
	// Cost — стоимость за единицу
	Cost decimal.Decimal
	// Quantity — остаток на объекте
	Quantity decimal.Decimal
	// CreatedAt — время создания
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// Виды ledger-операций.
const (
	StockOpReceive  = "Receive"
	StockOpIssue    = "Issue"
	StockOpTransfer = "Transfer"
)

// ValidStockOp проверяет, является ли строка допустимым видом операции.
func ValidStockOp(op string) bool {
	switch op {
	case StockOpReceive, StockOpIssue, StockOpTransfer:
		return true
	}
	return false
}

// StockHistoryRecord — запись журнала движения материала.
// Append-only: никогда не изменяется и не удаляется.
type StockHistoryRecord struct {
	// ID — UUID записи
	ID string
	// SiteID — объект, на котором произошло движение
	SiteID string
	// MaterialID — материал
	MaterialID string
	// Type — вид операции (Receive, Issue, Transfer)
	Type string
	// Quantity — количество в операции
	Quantity decimal.Decimal
	// Note — примечание
	Note string
	// UserID — кто выполнил операцию
	UserID string
	// CreatedAt — время операции
	CreatedAt time.Time
}
