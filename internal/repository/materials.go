package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
)

// MaterialRepository — интерфейс CRUD для таблицы materials.
// Количество меняется только ledger-операцией (LedgerRepository),
// поэтому Update здесь намеренно не трогает quantity.
type MaterialRepository interface {
	// Create создаёт материал на объекте.
	Create(ctx context.Context, m *model.Material) error
	// GetByID возвращает материал по UUID.
	GetByID(ctx context.Context, id string) (*model.Material, error)
	// ListBySite возвращает материалы объекта, отсортированные по имени.
	ListBySite(ctx context.Context, siteID string) ([]*model.Material, error)
	// Update обновляет наименование, единицу и стоимость материала.
	Update(ctx context.Context, m *model.Material) error
	// Delete удаляет материал.
	Delete(ctx context.Context, id string) error
}

// materialRepo — реализация MaterialRepository.
type materialRepo struct {
	db DBTX
}

// NewMaterialRepository создаёт репозиторий материалов.
func NewMaterialRepository(db DBTX) MaterialRepository {
	return &materialRepo{db: db}
}

func (r *materialRepo) Create(ctx context.Context, m *model.Material) error {
	query := `
		INSERT INTO materials (site_id, name, unit, cost, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		m.SiteID, m.Name, m.Unit, m.Cost, m.Quantity,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: материал с таким именем и единицей уже есть на объекте", ErrConflict)
		}
		return fmt.Errorf("ошибка создания материала: %w", err)
	}
	return nil
}

func (r *materialRepo) GetByID(ctx context.Context, id string) (*model.Material, error) {
	query := `
		SELECT id, site_id, name, unit, cost, quantity, created_at, updated_at
		FROM materials
		WHERE id = $1`

	m := &model.Material{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.SiteID, &m.Name, &m.Unit, &m.Cost, &m.Quantity,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения материала: %w", err)
	}
	return m, nil
}

func (r *materialRepo) ListBySite(ctx context.Context, siteID string) ([]*model.Material, error) {
	query := `
		SELECT id, site_id, name, unit, cost, quantity, created_at, updated_at
		FROM materials
		WHERE site_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка материалов: %w", err)
	}
	defer rows.Close()

	var result []*model.Material
	for rows.Next() {
		m := &model.Material{}
		if err := rows.Scan(
			&m.ID, &m.SiteID, &m.Name, &m.Unit, &m.Cost, &m.Quantity,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования материала: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (r *materialRepo) Update(ctx context.Context, m *model.Material) error {
	query := `
		UPDATE materials
		SET name = $2, unit = $3, cost = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		m.ID, m.Name, m.Unit, m.Cost,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: материал с таким именем и единицей уже есть на объекте", ErrConflict)
		}
		return fmt.Errorf("ошибка обновления материала: %w", err)
	}
	return nil
}

func (r *materialRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления материала: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// lockMaterial читает материал с блокировкой строки (SELECT ... FOR UPDATE).
// Используется только внутри ledger-транзакции.
func lockMaterial(ctx context.Context, tx DBTX, id string) (*model.Material, error) {
	query := `
		SELECT id, site_id, name, unit, cost, quantity, created_at, updated_at
		FROM materials
		WHERE id = $1
		FOR UPDATE`

	m := &model.Material{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.SiteID, &m.Name, &m.Unit, &m.Cost, &m.Quantity,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка блокировки материала: %w", err)
	}
	return m, nil
}

// lockMaterialByIdentity ищет материал по идентичности (site, name, unit)
// с блокировкой строки. ErrNotFound — материала на целевом объекте нет.
func lockMaterialByIdentity(ctx context.Context, tx DBTX, siteID, name, unit string) (*model.Material, error) {
	query := `
		SELECT id, site_id, name, unit, cost, quantity, created_at, updated_at
		FROM materials
		WHERE site_id = $1 AND name = $2 AND unit = $3
		FOR UPDATE`

	m := &model.Material{}
	err := tx.QueryRow(ctx, query, siteID, name, unit).Scan(
		&m.ID, &m.SiteID, &m.Name, &m.Unit, &m.Cost, &m.Quantity,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска материала на целевом объекте: %w", err)
	}
	return m, nil
}

// setMaterialQuantity устанавливает остаток материала внутри ledger-транзакции.
func setMaterialQuantity(ctx context.Context, tx DBTX, id string, quantity decimal.Decimal) error {
	tag, err := tx.Exec(ctx,
		`UPDATE materials SET quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления остатка: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
