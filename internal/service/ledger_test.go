package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/arturkryukov/stroysklad/internal/domain/model"
	"github.com/arturkryukov/stroysklad/internal/repository"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeLedgerRepo — заглушка LedgerRepository, запоминающая последнюю операцию.
type fakeLedgerRepo struct {
	last *repository.StockOperation
	err  error
}

func (f *fakeLedgerRepo) Apply(ctx context.Context, op repository.StockOperation) error {
	f.last = &op
	return f.err
}

// TestStockServiceApply проверяет разбор и передачу корректной операции.
func TestStockServiceApply(t *testing.T) {
	repo := &fakeLedgerRepo{}
	svc := NewStockService(repo, testLogger())

	err := svc.Apply(context.Background(), "user-1", "site-1", StockOpInput{
		MaterialID: "mat-1",
		Type:       model.StockOpReceive,
		Quantity:   " 12.5 ",
		Note:       "  поставка  ",
	})
	if err != nil {
		t.Fatalf("Apply() ошибка: %v", err)
	}

	if repo.last == nil {
		t.Fatal("операция не дошла до репозитория")
	}
	if !repo.last.Quantity.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Quantity = %s, хотели 12.5", repo.last.Quantity)
	}
	if repo.last.Note != "поставка" {
		t.Errorf("Note = %q", repo.last.Note)
	}
	if repo.last.UserID != "user-1" || repo.last.SiteID != "site-1" {
		t.Errorf("операция: %+v", repo.last)
	}
}

// TestStockServiceValidation проверяет строгий разбор входных данных.
func TestStockServiceValidation(t *testing.T) {
	tests := []struct {
		name string
		in   StockOpInput
	}{
		{"пустой материал", StockOpInput{Type: model.StockOpReceive, Quantity: "1"}},
		{"неизвестный тип", StockOpInput{MaterialID: "m", Type: "Adjust", Quantity: "1"}},
		{"пустое количество", StockOpInput{MaterialID: "m", Type: model.StockOpReceive, Quantity: ""}},
		{"нечисловое количество", StockOpInput{MaterialID: "m", Type: model.StockOpReceive, Quantity: "abc"}},
		{"ноль", StockOpInput{MaterialID: "m", Type: model.StockOpIssue, Quantity: "0"}},
		{"отрицательное", StockOpInput{MaterialID: "m", Type: model.StockOpIssue, Quantity: "-5"}},
		{"число с мусором", StockOpInput{MaterialID: "m", Type: model.StockOpReceive, Quantity: "10 мешков"}},
		{"перемещение без целевого объекта", StockOpInput{MaterialID: "m", Type: model.StockOpTransfer, Quantity: "1"}},
		{"перемещение на тот же объект", StockOpInput{MaterialID: "m", Type: model.StockOpTransfer, Quantity: "1", TargetSiteID: "site-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeLedgerRepo{}
			svc := NewStockService(repo, testLogger())

			err := svc.Apply(context.Background(), "user-1", "site-1", tt.in)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Apply() = %v, ожидали ErrValidation", err)
			}
			if repo.last != nil {
				t.Error("невалидная операция дошла до репозитория")
			}
		})
	}
}

// TestStockServiceErrorMapping проверяет перевод ошибок репозитория
// в ошибки сервисного слоя.
func TestStockServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		want    error
	}{
		{"материал не найден", repository.ErrNotFound, ErrNotFound},
		{"недостаточно остатка", repository.ErrInsufficientStock, ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewStockService(&fakeLedgerRepo{err: tt.repoErr}, testLogger())

			err := svc.Apply(context.Background(), "user-1", "site-1", StockOpInput{
				MaterialID: "mat-1",
				Type:       model.StockOpIssue,
				Quantity:   "5",
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("Apply() = %v, ожидали %v", err, tt.want)
			}
		})
	}
}
