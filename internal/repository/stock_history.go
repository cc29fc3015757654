package repository

import (
	"context"
	"fmt"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
)

// StockHistoryRepository — доступ к журналу движения материалов.
// Журнал append-only: есть только вставка и чтение.
type StockHistoryRepository interface {
	// Append добавляет запись журнала.
	Append(ctx context.Context, rec *model.StockHistoryRecord) error
	// ListBySite возвращает последние limit записей объекта, новые первыми.
	ListBySite(ctx context.Context, siteID string, limit int) ([]*model.StockHistoryRecord, error)
}

// stockHistoryRepo — реализация StockHistoryRepository.
type stockHistoryRepo struct {
	db DBTX
}

// NewStockHistoryRepository создаёт репозиторий журнала движения.
func NewStockHistoryRepository(db DBTX) StockHistoryRepository {
	return &stockHistoryRepo{db: db}
}

func (r *stockHistoryRepo) Append(ctx context.Context, rec *model.StockHistoryRecord) error {
	query := `
		INSERT INTO stock_history (site_id, material_id, type, quantity, note, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		rec.SiteID, rec.MaterialID, rec.Type, rec.Quantity, rec.Note, rec.UserID,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка записи в журнал движения: %w", err)
	}
	return nil
}

func (r *stockHistoryRepo) ListBySite(ctx context.Context, siteID string, limit int) ([]*model.StockHistoryRecord, error) {
	query := `
		SELECT id, site_id, material_id, type, quantity, note, user_id, created_at
		FROM stock_history
		WHERE site_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, siteID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала движения: %w", err)
	}
	defer rows.Close()

	var result []*model.StockHistoryRecord
	for rows.Next() {
		rec := &model.StockHistoryRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.SiteID, &rec.MaterialID, &rec.Type,
			&rec.Quantity, &rec.Note, &rec.UserID, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
