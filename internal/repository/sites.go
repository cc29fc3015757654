package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
)

// SiteRepository — интерфейс CRUD для таблицы sites.
type SiteRepository interface {
	// Create создаёт новый объект.
	Create(ctx context.Context, site *model.Site) error
	// GetByID возвращает объект по UUID.
	GetByID(ctx context.Context, id string) (*model.Site, error)
	// List возвращает все объекты, новые первыми.
	List(ctx context.Context) ([]*model.Site, error)
	// Update обновляет название, адрес и статус объекта.
	Update(ctx context.Context, site *model.Site) error
	// Delete удаляет объект.
	Delete(ctx context.Context, id string) error
}

// siteRepo — реализация SiteRepository.
type siteRepo struct {
	db DBTX
}

// NewSiteRepository создаёт репозиторий объектов.
func NewSiteRepository(db DBTX) SiteRepository {
	return &siteRepo{db: db}
}

func (r *siteRepo) Create(ctx context.Context, site *model.Site) error {
	query := `
		INSERT INTO sites (name, address, status, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		site.Name, site.Address, site.Status, site.CreatedBy,
	).Scan(&site.ID, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания объекта: %w", err)
	}
	return nil
}

func (r *siteRepo) GetByID(ctx context.Context, id string) (*model.Site, error) {
	query := `
		SELECT id, name, address, status, COALESCE(created_by::text, ''), created_at, updated_at
		FROM sites
		WHERE id = $1`

	site := &model.Site{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&site.ID, &site.Name, &site.Address, &site.Status,
		&site.CreatedBy, &site.CreatedAt, &site.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения объекта: %w", err)
	}
	return site, nil
}

func (r *siteRepo) List(ctx context.Context) ([]*model.Site, error) {
	query := `
		SELECT id, name, address, status, COALESCE(created_by::text, ''), created_at, updated_at
		FROM sites
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка объектов: %w", err)
	}
	defer rows.Close()

	var result []*model.Site
	for rows.Next() {
		site := &model.Site{}
		if err := rows.Scan(
			&site.ID, &site.Name, &site.Address, &site.Status,
			&site.CreatedBy, &site.CreatedAt, &site.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования объекта: %w", err)
		}
		result = append(result, site)
	}
	return result, rows.Err()
}

func (r *siteRepo) Update(ctx context.Context, site *model.Site) error {
	query := `
		UPDATE sites
		SET name = $2, address = $3, status = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		site.ID, site.Name, site.Address, site.Status,
	).Scan(&site.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления объекта: %w", err)
	}
	return nil
}

func (r *siteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления объекта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
