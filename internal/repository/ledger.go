package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
)

// StockOperation — параметры одной ledger-операции.
// Quantity уже распарсен и проверен сервисным слоем (> 0).
type StockOperation struct {
	// SiteID — объект-источник
	SiteID string
	// MaterialID — материал на объекте-источнике
	MaterialID string
	// Type — вид операции (Receive, Issue, Transfer)
	Type string
	// Quantity — количество, строго положительное
	Quantity decimal.Decimal
	// Note — примечание пользователя
	Note string
	// UserID — кто выполняет операцию
	UserID string
	// TargetSiteID — объект-получатель (только Transfer)
	TargetSiteID string
}

// LedgerRepository — транзакционное применение ledger-операции.
// Вся мутация (чтение остатка, проверка, запись, журнал) выполняется
// одной транзакцией с блокировкой строк: параллельные операции над
// одним материалом сериализуются, частичное применение невозможно.
type LedgerRepository interface {
	// Apply применяет операцию. Возвращает ErrNotFound если материала нет,
	// ErrInsufficientStock если остатка не хватает для Issue/Transfer.
	Apply(ctx context.Context, op StockOperation) error
}

// ledgerRepo — реализация LedgerRepository поверх TxRunner.
type ledgerRepo struct {
	tx *TxRunner
}

// NewLedgerRepository создаёт ledger-репозиторий.
func NewLedgerRepository(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepo{tx: NewTxRunner(pool)}
}

func (r *ledgerRepo) Apply(ctx context.Context, op StockOperation) error {
	return r.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		material, err := lockMaterial(ctx, tx, op.MaterialID)
		if err != nil {
			return err
		}
		if material.SiteID != op.SiteID {
			// Материал существует, но принадлежит другому объекту
			return ErrNotFound
		}

		history := NewStockHistoryRepository(tx)

		switch op.Type {
		case model.StockOpReceive:
			return r.receive(ctx, tx, history, material, op)
		case model.StockOpIssue:
			return r.issue(ctx, tx, history, material, op)
		case model.StockOpTransfer:
			return r.transfer(ctx, tx, history, material, op)
		default:
			return fmt.Errorf("неизвестный вид операции %q", op.Type)
		}
	})
}

// receive увеличивает остаток и пишет одну запись Receive.
func (r *ledgerRepo) receive(ctx context.Context, tx pgx.Tx, history StockHistoryRepository, material *model.Material, op StockOperation) error {
	if err := setMaterialQuantity(ctx, tx, material.ID, material.Quantity.Add(op.Quantity)); err != nil {
		return err
	}
	return history.Append(ctx, &model.StockHistoryRecord{
		SiteID:     op.SiteID,
		MaterialID: material.ID,
		Type:       model.StockOpReceive,
		Quantity:   op.Quantity,
		Note:       op.Note,
		UserID:     op.UserID,
	})
}

// issue уменьшает остаток после проверки достаточности и пишет одну запись Issue.
func (r *ledgerRepo) issue(ctx context.Context, tx pgx.Tx, history StockHistoryRepository, material *model.Material, op StockOperation) error {
	if material.Quantity.LessThan(op.Quantity) {
		return ErrInsufficientStock
	}
	if err := setMaterialQuantity(ctx, tx, material.ID, material.Quantity.Sub(op.Quantity)); err != nil {
		return err
	}
	return history.Append(ctx, &model.StockHistoryRecord{
		SiteID:     op.SiteID,
		MaterialID: material.ID,
		Type:       model.StockOpIssue,
		Quantity:   op.Quantity,
		Note:       op.Note,
		UserID:     op.UserID,
	})
}

// transfer перемещает количество на другой объект: списание у источника,
// слияние-или-создание материала у получателя, две записи журнала.
func (r *ledgerRepo) transfer(ctx context.Context, tx pgx.Tx, history StockHistoryRepository, material *model.Material, op StockOperation) error {
	if material.Quantity.LessThan(op.Quantity) {
		return ErrInsufficientStock
	}

	// Списание у источника
	if err := setMaterialQuantity(ctx, tx, material.ID, material.Quantity.Sub(op.Quantity)); err != nil {
		return err
	}

	note := op.Note
	if note == "" {
		note = fmt.Sprintf("Transfer to site %s", op.TargetSiteID)
	}
	if err := history.Append(ctx, &model.StockHistoryRecord{
		SiteID:     op.SiteID,
		MaterialID: material.ID,
		Type:       model.StockOpTransfer,
		Quantity:   op.Quantity,
		Note:       note,
		UserID:     op.UserID,
	}); err != nil {
		return err
	}

	// Слияние с материалом получателя по идентичности (site, name, unit)
	// или создание нового с копией name/unit/cost.
	targetID := ""
	target, err := lockMaterialByIdentity(ctx, tx, op.TargetSiteID, material.Name, material.Unit)
	switch {
	case err == nil:
		if err := setMaterialQuantity(ctx, tx, target.ID, target.Quantity.Add(op.Quantity)); err != nil {
			return err
		}
		targetID = target.ID
	case err == ErrNotFound:
		created := &model.Material{
			SiteID:   op.TargetSiteID,
			Name:     material.Name,
			Unit:     material.Unit,
			Cost:     material.Cost,
			Quantity: op.Quantity,
		}
		if err := NewMaterialRepository(tx).Create(ctx, created); err != nil {
			return err
		}
		targetID = created.ID
	default:
		return err
	}

	return history.Append(ctx, &model.StockHistoryRecord{
		SiteID:     op.TargetSiteID,
		MaterialID: targetID,
		Type:       model.StockOpReceive,
		Quantity:   op.Quantity,
		Note:       fmt.Sprintf("Transfer from site %s", op.SiteID),
		UserID:     op.UserID,
	})
}
