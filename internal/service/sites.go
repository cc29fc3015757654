// sites.go — сервис строительных объектов.
// CRUD объектов, выбор активного объекта, контроль доступа к объектам.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/domain/rbac"
	"github.com/arturkryukov/stroysklad/internal/repository"
)

// SiteService — сервис строительных объектов.
type SiteService struct {
	siteRepo   repository.SiteRepository
	accessRepo repository.SiteAccessRepository
	prefRepo   repository.PreferenceRepository
	logger     *slog.Logger
}

// NewSiteService создаёт сервис объектов.
func NewSiteService(
	siteRepo repository.SiteRepository,
	accessRepo repository.SiteAccessRepository,
	prefRepo repository.PreferenceRepository,
	logger *slog.Logger,
) *SiteService {
	return &SiteService{
		siteRepo:   siteRepo,
		accessRepo: accessRepo,
		prefRepo:   prefRepo,
		logger:     logger.With(slog.String("component", "site_service")),
	}
}

// SiteInput — входные данные создания/обновления объекта.
type SiteInput struct {
	Name    string
	Address string
	Status  string
}

// validate проверяет обязательные поля и статус.
func (in *SiteInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name обязательно", ErrValidation)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: address обязательно", ErrValidation)
	}
	if in.Status == "" {
		in.Status = model.SiteStatusActive
	}
	if !model.ValidSiteStatus(in.Status) {
		return fmt.Errorf("%w: недопустимый статус %q", ErrValidation, in.Status)
	}
	return nil
}

// Create создаёт объект.
func (s *SiteService) Create(ctx context.Context, actorID string, in SiteInput) (*model.Site, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	site := &model.Site{
		Name:      strings.TrimSpace(in.Name),
		Address:   strings.TrimSpace(in.Address),
		Status:    in.Status,
		CreatedBy: actorID,
	}

	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, fmt.Errorf("создание объекта: %w", err)
	}

	s.logger.Info("Объект создан",
		slog.String("site_id", site.ID),
		slog.String("name", site.Name),
		slog.String("created_by", actorID),
	)

	return site, nil
}

// Get возвращает объект по ID.
func (s *SiteService) Get(ctx context.Context, id string) (*model.Site, error) {
	site, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("чтение объекта: %w", err)
	}
	return site, nil
}

// List возвращает все объекты, новые первыми.
func (s *SiteService) List(ctx context.Context) ([]*model.Site, error) {
	sites, err := s.siteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("список объектов: %w", err)
	}
	return sites, nil
}

// Update обновляет объект.
func (s *SiteService) Update(ctx context.Context, id string, in SiteInput) (*model.Site, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	site, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	site.Name = strings.TrimSpace(in.Name)
	site.Address = strings.TrimSpace(in.Address)
	site.Status = in.Status

	if err := s.siteRepo.Update(ctx, site); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление объекта: %w", err)
	}

	return site, nil
}

// Delete удаляет объект вместе с материалами и историей (каскад в БД).
func (s *SiteService) Delete(ctx context.Context, id string) error {
	if err := s.siteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление объекта: %w", err)
	}

	s.logger.Info("Объект удалён", slog.String("site_id", id))
	return nil
}

// --- Доступ к объектам ---

// CheckAccess проверяет право пользователя работать с объектом.
// Администратор имеет доступ ко всем объектам. Для остальных ищется
// грант в site_access; отсутствие гранта и любая ошибка хранилища дают
// отказ — при сбое доступ не выдаётся.
func (s *SiteService) CheckAccess(ctx context.Context, identity *model.Identity, siteID string) error {
	if siteID == "" {
		return fmt.Errorf("%w: не указан объект", ErrValidation)
	}
	if rbac.HasAnyRole(identity.Role, rbac.RoleAdmin) {
		return nil
	}

	err := s.accessRepo.HasAccess(ctx, identity.UserID, siteID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrForbidden
	default:
		// Сбой хранилища: отказываем и логируем отдельно от обычного 403
		s.logger.Error("Ошибка проверки доступа к объекту, доступ отклонён",
			slog.String("user_id", identity.UserID),
			slog.String("site_id", siteID),
			slog.String("error", err.Error()),
		)
		return ErrForbidden
	}
}

// GrantAccess выдаёт пользователю доступ к объекту. Идемпотентна.
// Объект должен существовать.
func (s *SiteService) GrantAccess(ctx context.Context, userID, siteID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId обязателен", ErrValidation)
	}
	if _, err := s.Get(ctx, siteID); err != nil {
		return err
	}
	if err := s.accessRepo.Grant(ctx, userID, siteID); err != nil {
		return fmt.Errorf("выдача доступа: %w", err)
	}
	s.logger.Info("Доступ к объекту выдан", "user_id", userID, "site_id", siteID)
	return nil
}

// RevokeAccess отзывает доступ пользователя к объекту. Идемпотентна.
func (s *SiteService) RevokeAccess(ctx context.Context, userID, siteID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId обязателен", ErrValidation)
	}
	if err := s.accessRepo.Revoke(ctx, userID, siteID); err != nil {
		return fmt.Errorf("отзыв доступа: %w", err)
	}
	s.logger.Info("Доступ к объекту отозван", "user_id", userID, "site_id", siteID)
	return nil
}

// --- Активный объект ---

// ActiveSite возвращает активный объект пользователя.
// Если настройка отсутствует — ErrNotFound.
func (s *SiteService) ActiveSite(ctx context.Context, userID string) (*model.Site, error) {
	siteID, err := s.prefRepo.GetActiveSite(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("чтение активного объекта: %w", err)
	}
	return s.Get(ctx, siteID)
}

// SetActiveSite сохраняет активный объект пользователя.
// Объект должен существовать, а пользователь — иметь к нему доступ.
func (s *SiteService) SetActiveSite(ctx context.Context, identity *model.Identity, siteID string) error {
	if _, err := s.Get(ctx, siteID); err != nil {
		return err
	}
	if err := s.CheckAccess(ctx, identity, siteID); err != nil {
		return err
	}
	if err := s.prefRepo.SetActiveSite(ctx, identity.UserID, siteID); err != nil {
		return fmt.Errorf("сохранение активного объекта: %w", err)
	}
	return nil
}
