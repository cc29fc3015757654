// materials.go — сервис материалов объекта.
// CRUD материалов; количество материала меняет только складская операция.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/repository"
)

// MaterialService — сервис материалов.
type MaterialService struct {
	materialRepo repository.MaterialRepository
	historyRepo  repository.StockHistoryRepository
	logger       *slog.Logger
}

// NewMaterialService создаёт сервис материалов.
func NewMaterialService(
	materialRepo repository.MaterialRepository,
	historyRepo repository.StockHistoryRepository,
	logger *slog.Logger,
) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		historyRepo:  historyRepo,
		logger:       logger.With(slog.String("component", "material_service")),
	}
}

// MaterialInput — входные данные создания/обновления материала.
// Cost приходит текстом из формы и разбирается строго.
type MaterialInput struct {
	Name string
	Unit string
	Cost string
}

// parse валидирует входные данные и разбирает стоимость.
func (in *MaterialInput) parse() (decimal.Decimal, error) {
	if strings.TrimSpace(in.Name) == "" {
		return decimal.Zero, fmt.Errorf("%w: name обязательно", ErrValidation)
	}
	if strings.TrimSpace(in.Unit) == "" {
		return decimal.Zero, fmt.Errorf("%w: unit обязательно", ErrValidation)
	}
	if strings.TrimSpace(in.Cost) == "" {
		return decimal.Zero, nil
	}
	cost, err := decimal.NewFromString(strings.TrimSpace(in.Cost))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: cost не является числом", ErrValidation)
	}
	if cost.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: cost не может быть отрицательной", ErrValidation)
	}
	return cost, nil
}

// Create создаёт материал на объекте с нулевым остатком.
// Пара (name, unit) уникальна в пределах объекта.
func (s *MaterialService) Create(ctx context.Context, siteID string, in MaterialInput) (*model.Material, error) {
	cost, err := in.parse()
	if err != nil {
		return nil, err
	}

	m := &model.Material{
		SiteID:   siteID,
		Name:     strings.TrimSpace(in.Name),
		Unit:     strings.TrimSpace(in.Unit),
		Cost:     cost,
		Quantity: decimal.Zero,
	}

	if err := s.materialRepo.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: материал %q (%s) уже есть на объекте", ErrConflict, m.Name, m.Unit)
		}
		return nil, fmt.Errorf("создание материала: %w", err)
	}

	s.logger.Info("Материал создан",
		slog.String("material_id", m.ID),
		slog.String("site_id", siteID),
		slog.String("name", m.Name),
	)

	return m, nil
}

// Get возвращает материал по ID в пределах объекта.
func (s *MaterialService) Get(ctx context.Context, siteID, id string) (*model.Material, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("чтение материала: %w", err)
	}
	// Материал чужого объекта не раскрываем
	if m.SiteID != siteID {
		return nil, ErrNotFound
	}
	return m, nil
}

// List возвращает материалы объекта.
func (s *MaterialService) List(ctx context.Context, siteID string) ([]*model.Material, error) {
	list, err := s.materialRepo.ListBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("список материалов: %w", err)
	}
	return list, nil
}

// Update обновляет карточку материала. Остаток не трогается:
// его меняет только складская операция.
func (s *MaterialService) Update(ctx context.Context, siteID, id string, in MaterialInput) (*model.Material, error) {
	cost, err := in.parse()
	if err != nil {
		return nil, err
	}

	m, err := s.Get(ctx, siteID, id)
	if err != nil {
		return nil, err
	}

	m.Name = strings.TrimSpace(in.Name)
	m.Unit = strings.TrimSpace(in.Unit)
	m.Cost = cost

	if err := s.materialRepo.Update(ctx, m); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: материал %q (%s) уже есть на объекте", ErrConflict, m.Name, m.Unit)
		}
		return nil, fmt.Errorf("обновление материала: %w", err)
	}

	return m, nil
}

// Delete удаляет материал объекта.
func (s *MaterialService) Delete(ctx context.Context, siteID, id string) error {
	if _, err := s.Get(ctx, siteID, id); err != nil {
		return err
	}
	if err := s.materialRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление материала: %w", err)
	}

	s.logger.Info("Материал удалён",
		slog.String("material_id", id),
		slog.String("site_id", siteID),
	)
	return nil
}

// History возвращает последние записи журнала операций объекта,
// новые первыми.
func (s *MaterialService) History(ctx context.Context, siteID string) ([]*model.StockHistoryRecord, error) {
	const historyLimit = 100

	recs, err := s.historyRepo.ListBySite(ctx, siteID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("журнал операций: %w", err)
	}
	return recs, nil
}
