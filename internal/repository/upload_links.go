package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
)

// UploadLinkRepository — доступ к таблице upload_links.
type UploadLinkRepository interface {
	// Create сохраняет новую ссылку.
	Create(ctx context.Context, link *model.UploadLink) error
	// GetByToken возвращает ссылку по токену.
	GetByToken(ctx context.Context, token string) (*model.UploadLink, error)
	// List возвращает все ссылки, новые первыми.
	List(ctx context.Context) ([]*model.UploadLink, error)
	// MarkUsed гасит temporary-ссылку: used=true, active=false.
	// ErrNotFound — токена нет или ссылка не temporary.
	MarkUsed(ctx context.Context, token string) error
	// Delete физически удаляет ссылку по идентификатору строки.
	Delete(ctx context.Context, id string) error
}

// uploadLinkRepo — реализация UploadLinkRepository.
type uploadLinkRepo struct {
	db DBTX
}

// NewUploadLinkRepository создаёт репозиторий upload-ссылок.
func NewUploadLinkRepository(db DBTX) UploadLinkRepository {
	return &uploadLinkRepo{db: db}
}

const uploadLinkColumns = `id, token, type, created_by, created_at, expires_at, used, active, description`

func (r *uploadLinkRepo) Create(ctx context.Context, link *model.UploadLink) error {
	query := `
		INSERT INTO upload_links (token, type, created_by, expires_at, used, active, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		link.Token, link.Type, link.CreatedBy, link.ExpiresAt,
		link.Used, link.Active, link.Description,
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: токен уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания upload-ссылки: %w", err)
	}
	return nil
}

func (r *uploadLinkRepo) GetByToken(ctx context.Context, token string) (*model.UploadLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM upload_links WHERE token = $1`, uploadLinkColumns)

	link := &model.UploadLink{}
	err := r.db.QueryRow(ctx, query, token).Scan(
		&link.ID, &link.Token, &link.Type, &link.CreatedBy, &link.CreatedAt,
		&link.ExpiresAt, &link.Used, &link.Active, &link.Description,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения upload-ссылки: %w", err)
	}
	return link, nil
}

func (r *uploadLinkRepo) List(ctx context.Context) ([]*model.UploadLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM upload_links ORDER BY created_at DESC`, uploadLinkColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка upload-ссылок: %w", err)
	}
	defer rows.Close()

	var result []*model.UploadLink
	for rows.Next() {
		link := &model.UploadLink{}
		if err := rows.Scan(
			&link.ID, &link.Token, &link.Type, &link.CreatedBy, &link.CreatedAt,
			&link.ExpiresAt, &link.Used, &link.Active, &link.Description,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования upload-ссылки: %w", err)
		}
		result = append(result, link)
	}
	return result, rows.Err()
}

func (r *uploadLinkRepo) MarkUsed(ctx context.Context, token string) error {
	// Фильтр по типу в самом UPDATE: permanent-ссылки этим путём не гасятся.
	tag, err := r.db.Exec(ctx,
		`UPDATE upload_links SET used = TRUE, active = FALSE
		 WHERE token = $1 AND type = $2`,
		token, model.LinkTypeTemporary,
	)
	if err != nil {
		return fmt.Errorf("ошибка гашения upload-ссылки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *uploadLinkRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM upload_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления upload-ссылки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
