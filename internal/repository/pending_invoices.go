package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
)

// PendingInvoiceRepository — транзиентные накладные, ожидающие ревью.
// Одна накладная на пользователя; новая загрузка перезаписывает старую.
type PendingInvoiceRepository interface {
	// Put сохраняет накладную пользователя (upsert).
	Put(ctx context.Context, userID string, payload model.Invoice) error
	// Get возвращает накладную пользователя. ErrNotFound — накладной нет.
	Get(ctx context.Context, userID string) (model.Invoice, error)
	// Clear удаляет накладную пользователя (после отправки или logout).
	Clear(ctx context.Context, userID string) error
}

// pendingInvoiceRepo — реализация PendingInvoiceRepository.
type pendingInvoiceRepo struct {
	db DBTX
}

// NewPendingInvoiceRepository создаёт репозиторий ожидающих накладных.
func NewPendingInvoiceRepository(db DBTX) PendingInvoiceRepository {
	return &pendingInvoiceRepo{db: db}
}

func (r *pendingInvoiceRepo) Put(ctx context.Context, userID string, payload model.Invoice) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации накладной: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO pending_invoices (user_id, payload, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		userID, data,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения накладной: %w", err)
	}
	return nil
}

func (r *pendingInvoiceRepo) Get(ctx context.Context, userID string) (model.Invoice, error) {
	var data []byte
	err := r.db.QueryRow(ctx,
		`SELECT payload FROM pending_invoices WHERE user_id = $1`,
		userID,
	).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения накладной: %w", err)
	}

	var payload model.Invoice
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("ошибка десериализации накладной: %w", err)
	}
	return payload, nil
}

func (r *pendingInvoiceRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM pending_invoices WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("ошибка удаления накладной: %w", err)
	}
	return nil
}
