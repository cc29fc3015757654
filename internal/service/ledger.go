// ledger.go — сервис складских операций.
// Разбирает и валидирует входные данные операции, после чего передаёт её
// в repository.LedgerRepository, где вся мутация выполняется одной
// транзакцией с блокировкой строк материалов.
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

// StockService — сервис складских операций.
type StockService struct {
	ledgerRepo repository.LedgerRepository
	logger     *slog.Logger
}

// NewStockService создаёт сервис складских операций.
func NewStockService(ledgerRepo repository.LedgerRepository, logger *slog.Logger) *StockService {
	return &StockService{
		ledgerRepo: ledgerRepo,
		logger:     logger.With(slog.String("component", "stock_service")),
	}
}

// StockOpInput — входные данные складской операции.
// Quantity приходит текстом из формы и разбирается строго:
// нечисловое значение или значение <= 0 отклоняются.
type StockOpInput struct {
	MaterialID   string
	Type         string
	Quantity     string
	Note         string
	TargetSiteID string
}

// Apply выполняет складскую операцию на объекте от имени пользователя.
func (s *StockService) Apply(ctx context.Context, actorID, siteID string, in StockOpInput) error {
	if in.MaterialID == "" {
		return fmt.Errorf("%w: не указан материал", ErrValidation)
	}
	if !model.ValidStockOp(in.Type) {
		return fmt.Errorf("%w: неизвестный тип операции %q", ErrValidation, in.Type)
	}

	qty, err := parseQuantity(in.Quantity)
	if err != nil {
		return err
	}

	if in.Type == model.StockOpTransfer {
		if in.TargetSiteID == "" {
			return fmt.Errorf("%w: для перемещения не указан целевой объект", ErrValidation)
		}
		if in.TargetSiteID == siteID {
			return fmt.Errorf("%w: перемещение на тот же объект", ErrValidation)
		}
	}

	err = s.ledgerRepo.Apply(ctx, repository.StockOperation{
		SiteID:       siteID,
		MaterialID:   in.MaterialID,
		Type:         in.Type,
		Quantity:     qty,
		Note:         strings.TrimSpace(in.Note),
		UserID:       actorID,
		TargetSiteID: in.TargetSiteID,
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInsufficientStock):
		return ErrInsufficientStock
	default:
		return fmt.Errorf("складская операция: %w", err)
	}

	s.logger.Info("Складская операция выполнена",
		slog.String("site_id", siteID),
		slog.String("material_id", in.MaterialID),
		slog.String("type", in.Type),
		slog.String("quantity", qty.String()),
		slog.String("user_id", actorID),
	)

	return nil
}

// parseQuantity строго разбирает количество из текста формы.
func parseQuantity(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: не указано количество", ErrValidation)
	}

	qty, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: количество %q не является числом", ErrValidation, raw)
	}
	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: количество должно быть больше нуля", ErrValidation)
	}

	return qty, nil
}
