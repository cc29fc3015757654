package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/arturkryukov/stroysklad/internal/config"
	"github.com/arturkryukov/stroysklad/internal/database"
	"github.com/arturkryukov/stroysklad/internal/domain/model"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool; очистка через t.Cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("stroysklad_test"),
		postgres.WithUsername("stroysklad"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	t.Setenv("SS_DB_HOST", host)
	t.Setenv("SS_DB_PORT", port.Port())
	t.Setenv("SS_DB_NAME", "stroysklad_test")
	t.Setenv("SS_DB_USER", "stroysklad")
	t.Setenv("SS_DB_PASSWORD", "test-password")
	t.Setenv("SS_DB_SSL_MODE", "disable")
	t.Setenv("SS_IDENTITY_URL", "http://localhost:9999")
	t.Setenv("SS_IDENTITY_ANON_KEY", "test")
	t.Setenv("SS_EXTRACTOR_IMAGE_URL", "http://localhost:9999/image")
	t.Setenv("SS_EXTRACTOR_DATA_URL", "http://localhost:9999/data")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Применяем миграции
	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	// Подключаемся
	pool, err := database.Connect(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// createTestSite — вспомогательная вставка объекта.
func createTestSite(t *testing.T, pool *pgxpool.Pool, name string) *model.Site {
	t.Helper()
	site := &model.Site{
		Name:      name,
		Address:   "ул. Строителей, 1",
		Status:    model.SiteStatusActive,
		CreatedBy: uuid.New().String(),
	}
	if err := NewSiteRepository(pool).Create(context.Background(), site); err != nil {
		t.Fatalf("Create(site) ошибка: %v", err)
	}
	return site
}

// createTestMaterial — вспомогательная вставка материала.
func createTestMaterial(t *testing.T, pool *pgxpool.Pool, siteID, name, unit string, qty string) *model.Material {
	t.Helper()
	m := &model.Material{
		SiteID:   siteID,
		Name:     name,
		Unit:     unit,
		Cost:     decimal.NewFromInt(10),
		Quantity: decimal.RequireFromString(qty),
	}
	if err := NewMaterialRepository(pool).Create(context.Background(), m); err != nil {
		t.Fatalf("Create(material) ошибка: %v", err)
	}
	return m
}

// --- Тесты SiteRepository ---

func TestSiteCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewSiteRepository(pool)

	site := createTestSite(t, pool, "Главный объект")
	if site.ID == "" || site.CreatedAt.IsZero() {
		t.Error("ID/CreatedAt не установлены после Create")
	}

	// GetByID
	got, err := repo.GetByID(ctx, site.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Name != "Главный объект" || got.Status != model.SiteStatusActive {
		t.Errorf("GetByID() = %+v", got)
	}

	// Update
	site.Status = model.SiteStatusOnHold
	site.Address = "ул. Строителей, 2"
	if err := repo.Update(ctx, site); err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	got2, _ := repo.GetByID(ctx, site.ID)
	if got2.Status != model.SiteStatusOnHold || got2.Address != "ул. Строителей, 2" {
		t.Errorf("После Update: Status=%q, Address=%q", got2.Status, got2.Address)
	}

	// List
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() вернул %d записей, хотели 1", len(list))
	}

	// Delete
	if err := repo.Delete(ctx, site.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := repo.GetByID(ctx, site.ID); err != ErrNotFound {
		t.Errorf("После Delete ожидали ErrNotFound, получили: %v", err)
	}
}

// --- Тесты MaterialRepository ---

func TestMaterialCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewMaterialRepository(pool)

	site := createTestSite(t, pool, "Объект с материалами")
	m := createTestMaterial(t, pool, site.ID, "Цемент", "bag", "0")

	got, err := repo.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if !got.Quantity.Equal(decimal.Zero) {
		t.Errorf("Quantity = %s, хотели 0", got.Quantity)
	}

	// Дубликат (site, name, unit) — конфликт
	dup := &model.Material{
		SiteID: site.ID, Name: "Цемент", Unit: "bag",
		Cost: decimal.NewFromInt(12), Quantity: decimal.Zero,
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Create(дубликат) = %v, ожидали ErrConflict", err)
	}

	// Update не трогает количество
	m.Cost = decimal.NewFromInt(15)
	m.Name = "Цемент М500"
	if err := repo.Update(ctx, m); err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	got2, _ := repo.GetByID(ctx, m.ID)
	if got2.Name != "Цемент М500" || !got2.Quantity.Equal(decimal.Zero) {
		t.Errorf("После Update: Name=%q, Quantity=%s", got2.Name, got2.Quantity)
	}

	// ListBySite
	list, err := repo.ListBySite(ctx, site.ID)
	if err != nil {
		t.Fatalf("ListBySite() ошибка: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListBySite() вернул %d записей, хотели 1", len(list))
	}

	// Delete
	if err := repo.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := repo.GetByID(ctx, m.ID); err != ErrNotFound {
		t.Errorf("После Delete ожидали ErrNotFound, получили: %v", err)
	}
}

// --- Тесты LedgerRepository ---

func TestLedgerReceive(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	ledger := NewLedgerRepository(pool)
	history := NewStockHistoryRepository(pool)

	site := createTestSite(t, pool, "Приёмка")
	m := createTestMaterial(t, pool, site.ID, "Цемент", "bag", "0")
	userID := uuid.New().String()

	err := ledger.Apply(ctx, StockOperation{
		SiteID:     site.ID,
		MaterialID: m.ID,
		Type:       model.StockOpReceive,
		Quantity:   decimal.NewFromInt(50),
		Note:       "первая поставка",
		UserID:     userID,
	})
	if err != nil {
		t.Fatalf("Apply(Receive) ошибка: %v", err)
	}

	got, _ := NewMaterialRepository(pool).GetByID(ctx, m.ID)
	if !got.Quantity.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Quantity = %s, хотели 50", got.Quantity)
	}

	recs, err := history.ListBySite(ctx, site.ID, 100)
	if err != nil {
		t.Fatalf("ListBySite(history) ошибка: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("журнал содержит %d записей, хотели 1", len(recs))
	}
	if recs[0].Type != model.StockOpReceive || !recs[0].Quantity.Equal(decimal.NewFromInt(50)) {
		t.Errorf("запись журнала: Type=%q, Quantity=%s", recs[0].Type, recs[0].Quantity)
	}
}

func TestLedgerIssue(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	ledger := NewLedgerRepository(pool)

	site := createTestSite(t, pool, "Выдача")
	m := createTestMaterial(t, pool, site.ID, "Арматура", "kg", "30")
	userID := uuid.New().String()

	// Выдача больше остатка — доменная ошибка, состояние не меняется
	err := ledger.Apply(ctx, StockOperation{
		SiteID:     site.ID,
		MaterialID: m.ID,
		Type:       model.StockOpIssue,
		Quantity:   decimal.NewFromInt(100),
		UserID:     userID,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Apply(Issue 100 при остатке 30) = %v, ожидали ErrInsufficientStock", err)
	}

	got, _ := NewMaterialRepository(pool).GetByID(ctx, m.ID)
	if !got.Quantity.Equal(decimal.NewFromInt(30)) {
		t.Errorf("после отказа Quantity = %s, хотели 30 (без изменений)", got.Quantity)
	}
	recs, _ := NewStockHistoryRepository(pool).ListBySite(ctx, site.ID, 100)
	if len(recs) != 0 {
		t.Errorf("после отказа журнал содержит %d записей, хотели 0", len(recs))
	}

	// Корректная выдача
	err = ledger.Apply(ctx, StockOperation{
		SiteID:     site.ID,
		MaterialID: m.ID,
		Type:       model.StockOpIssue,
		Quantity:   decimal.NewFromInt(10),
		UserID:     userID,
	})
	if err != nil {
		t.Fatalf("Apply(Issue 10) ошибка: %v", err)
	}
	got2, _ := NewMaterialRepository(pool).GetByID(ctx, m.ID)
	if !got2.Quantity.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Quantity = %s, хотели 20", got2.Quantity)
	}
	recs2, _ := NewStockHistoryRepository(pool).ListBySite(ctx, site.ID, 100)
	if len(recs2) != 1 || recs2[0].Type != model.StockOpIssue {
		t.Errorf("журнал: %d записей, первая %q", len(recs2), recs2[0].Type)
	}
}

func TestLedgerTransferCreatesTargetMaterial(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	ledger := NewLedgerRepository(pool)

	src := createTestSite(t, pool, "Объект A")
	dst := createTestSite(t, pool, "Объект B")
	m := createTestMaterial(t, pool, src.ID, "Цемент", "bag", "50")
	userID := uuid.New().String()

	err := ledger.Apply(ctx, StockOperation{
		SiteID:       src.ID,
		MaterialID:   m.ID,
		Type:         model.StockOpTransfer,
		Quantity:     decimal.NewFromInt(20),
		UserID:       userID,
		TargetSiteID: dst.ID,
	})
	if err != nil {
		t.Fatalf("Apply(Transfer) ошибка: %v", err)
	}

	// Источник уменьшился
	srcMat, _ := NewMaterialRepository(pool).GetByID(ctx, m.ID)
	if !srcMat.Quantity.Equal(decimal.NewFromInt(30)) {
		t.Errorf("источник: Quantity = %s, хотели 30", srcMat.Quantity)
	}

	// На целевом объекте создан новый материал с копией name/unit/cost
	dstList, _ := NewMaterialRepository(pool).ListBySite(ctx, dst.ID)
	if len(dstList) != 1 {
		t.Fatalf("на целевом объекте %d материалов, хотели 1", len(dstList))
	}
	dstMat := dstList[0]
	if dstMat.Name != "Цемент" || dstMat.Unit != "bag" || !dstMat.Quantity.Equal(decimal.NewFromInt(20)) {
		t.Errorf("целевой материал: %+v", dstMat)
	}
	if !dstMat.Cost.Equal(m.Cost) {
		t.Errorf("стоимость не скопирована: %s != %s", dstMat.Cost, m.Cost)
	}

	// Ровно две записи журнала: Transfer у источника, Receive у получателя
	srcRecs, _ := NewStockHistoryRepository(pool).ListBySite(ctx, src.ID, 100)
	dstRecs, _ := NewStockHistoryRepository(pool).ListBySite(ctx, dst.ID, 100)
	if len(srcRecs) != 1 || srcRecs[0].Type != model.StockOpTransfer {
		t.Errorf("журнал источника: %d записей", len(srcRecs))
	}
	if len(dstRecs) != 1 || dstRecs[0].Type != model.StockOpReceive {
		t.Errorf("журнал получателя: %d записей", len(dstRecs))
	}
	if dstRecs[0].MaterialID != dstMat.ID {
		t.Errorf("запись получателя ссылается на %s, хотели %s (новый материал)", dstRecs[0].MaterialID, dstMat.ID)
	}
}

func TestLedgerTransferMergesExistingMaterial(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	ledger := NewLedgerRepository(pool)

	src := createTestSite(t, pool, "Объект A")
	dst := createTestSite(t, pool, "Объект B")
	srcMat := createTestMaterial(t, pool, src.ID, "Песок", "m3", "40")
	dstMat := createTestMaterial(t, pool, dst.ID, "Песок", "m3", "5")
	userID := uuid.New().String()

	err := ledger.Apply(ctx, StockOperation{
		SiteID:       src.ID,
		MaterialID:   srcMat.ID,
		Type:         model.StockOpTransfer,
		Quantity:     decimal.RequireFromString("12.5"),
		UserID:       userID,
		TargetSiteID: dst.ID,
	})
	if err != nil {
		t.Fatalf("Apply(Transfer) ошибка: %v", err)
	}

	gotSrc, _ := NewMaterialRepository(pool).GetByID(ctx, srcMat.ID)
	if !gotSrc.Quantity.Equal(decimal.RequireFromString("27.5")) {
		t.Errorf("источник: Quantity = %s, хотели 27.5", gotSrc.Quantity)
	}
	gotDst, _ := NewMaterialRepository(pool).GetByID(ctx, dstMat.ID)
	if !gotDst.Quantity.Equal(decimal.RequireFromString("17.5")) {
		t.Errorf("получатель: Quantity = %s, хотели 17.5", gotDst.Quantity)
	}

	// Новый материал не создан — произошло слияние
	dstList, _ := NewMaterialRepository(pool).ListBySite(ctx, dst.ID)
	if len(dstList) != 1 {
		t.Errorf("на целевом объекте %d материалов, хотели 1 (слияние)", len(dstList))
	}
}

func TestLedgerTransferInsufficientStockRollsBack(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	ledger := NewLedgerRepository(pool)

	src := createTestSite(t, pool, "Объект A")
	dst := createTestSite(t, pool, "Объект B")
	m := createTestMaterial(t, pool, src.ID, "Кирпич", "pcs", "30")

	err := ledger.Apply(ctx, StockOperation{
		SiteID:       src.ID,
		MaterialID:   m.ID,
		Type:         model.StockOpTransfer,
		Quantity:     decimal.NewFromInt(100),
		UserID:       uuid.New().String(),
		TargetSiteID: dst.ID,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Apply(Transfer 100 при остатке 30) = %v, ожидали ErrInsufficientStock", err)
	}

	got, _ := NewMaterialRepository(pool).GetByID(ctx, m.ID)
	if !got.Quantity.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Quantity = %s, хотели 30 (без изменений)", got.Quantity)
	}
	dstList, _ := NewMaterialRepository(pool).ListBySite(ctx, dst.ID)
	if len(dstList) != 0 {
		t.Errorf("на целевом объекте появился материал после отказа")
	}
}

func TestLedgerUnknownMaterial(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	ledger := NewLedgerRepository(pool)

	site := createTestSite(t, pool, "Объект")

	err := ledger.Apply(ctx, StockOperation{
		SiteID:     site.ID,
		MaterialID: uuid.New().String(),
		Type:       model.StockOpReceive,
		Quantity:   decimal.NewFromInt(1),
		UserID:     uuid.New().String(),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Apply(несуществующий материал) = %v, ожидали ErrNotFound", err)
	}
}

// --- Тесты SiteAccessRepository и PreferenceRepository ---

func TestSiteAccessGrantRevoke(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewSiteAccessRepository(pool)

	site := createTestSite(t, pool, "Объект")
	userID := uuid.New().String()

	if err := repo.HasAccess(ctx, userID, site.ID); err != ErrNotFound {
		t.Errorf("HasAccess(без гранта) = %v, ожидали ErrNotFound", err)
	}

	if err := repo.Grant(ctx, userID, site.ID); err != nil {
		t.Fatalf("Grant() ошибка: %v", err)
	}
	// Повторный Grant идемпотентен
	if err := repo.Grant(ctx, userID, site.ID); err != nil {
		t.Fatalf("повторный Grant() ошибка: %v", err)
	}
	if err := repo.HasAccess(ctx, userID, site.ID); err != nil {
		t.Errorf("HasAccess(с грантом) = %v, ожидали nil", err)
	}

	if err := repo.Revoke(ctx, userID, site.ID); err != nil {
		t.Fatalf("Revoke() ошибка: %v", err)
	}
	if err := repo.HasAccess(ctx, userID, site.ID); err != ErrNotFound {
		t.Errorf("HasAccess(после отзыва) = %v, ожидали ErrNotFound", err)
	}
}

func TestPreferences(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPreferenceRepository(pool)

	site1 := createTestSite(t, pool, "Объект 1")
	site2 := createTestSite(t, pool, "Объект 2")
	userID := uuid.New().String()

	if _, err := repo.GetActiveSite(ctx, userID); err != ErrNotFound {
		t.Errorf("GetActiveSite(нет настройки) = %v, ожидали ErrNotFound", err)
	}

	if err := repo.SetActiveSite(ctx, userID, site1.ID); err != nil {
		t.Fatalf("SetActiveSite() ошибка: %v", err)
	}
	got, err := repo.GetActiveSite(ctx, userID)
	if err != nil || got != site1.ID {
		t.Errorf("GetActiveSite() = %q, %v; хотели %q", got, err, site1.ID)
	}

	// Upsert: смена активного объекта
	if err := repo.SetActiveSite(ctx, userID, site2.ID); err != nil {
		t.Fatalf("SetActiveSite(upsert) ошибка: %v", err)
	}
	got2, _ := repo.GetActiveSite(ctx, userID)
	if got2 != site2.ID {
		t.Errorf("GetActiveSite() = %q, хотели %q", got2, site2.ID)
	}
}

// --- Тесты UploadLinkRepository ---

func TestUploadLinkLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewUploadLinkRepository(pool)

	expires := time.Now().Add(30 * time.Minute).UTC()
	temp := &model.UploadLink{
		Token:       "tok-temporary-1",
		Type:        model.LinkTypeTemporary,
		CreatedBy:   uuid.New().String(),
		ExpiresAt:   &expires,
		Active:      true,
		Description: "для подрядчика",
	}
	if err := repo.Create(ctx, temp); err != nil {
		t.Fatalf("Create(temporary) ошибка: %v", err)
	}

	perm := &model.UploadLink{
		Token:     "tok-permanent-1",
		Type:      model.LinkTypePermanent,
		CreatedBy: uuid.New().String(),
		Active:    true,
	}
	if err := repo.Create(ctx, perm); err != nil {
		t.Fatalf("Create(permanent) ошибка: %v", err)
	}

	// Дубликат токена — конфликт
	dup := &model.UploadLink{Token: "tok-temporary-1", Type: model.LinkTypeTemporary, CreatedBy: uuid.New().String(), Active: true}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Create(дубликат токена) = %v, ожидали ErrConflict", err)
	}

	// MarkUsed гасит temporary
	if err := repo.MarkUsed(ctx, "tok-temporary-1"); err != nil {
		t.Fatalf("MarkUsed(temporary) ошибка: %v", err)
	}
	got, _ := repo.GetByToken(ctx, "tok-temporary-1")
	if !got.Used || got.Active {
		t.Errorf("после MarkUsed: Used=%v, Active=%v", got.Used, got.Active)
	}

	// MarkUsed не трогает permanent
	if err := repo.MarkUsed(ctx, "tok-permanent-1"); err != ErrNotFound {
		t.Errorf("MarkUsed(permanent) = %v, ожидали ErrNotFound", err)
	}
	gotPerm, _ := repo.GetByToken(ctx, "tok-permanent-1")
	if gotPerm.Used || !gotPerm.Active {
		t.Errorf("permanent после MarkUsed: Used=%v, Active=%v", gotPerm.Used, gotPerm.Active)
	}

	// List — новые первыми
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() ошибка: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("List() вернул %d записей, хотели 2", len(list))
	}

	// Delete
	if err := repo.Delete(ctx, temp.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if _, err := repo.GetByToken(ctx, "tok-temporary-1"); err != ErrNotFound {
		t.Errorf("после Delete ожидали ErrNotFound, получили: %v", err)
	}
}

// --- Тесты PendingInvoiceRepository ---

func TestPendingInvoice(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewPendingInvoiceRepository(pool)

	userID := uuid.New().String()

	if _, err := repo.Get(ctx, userID); err != ErrNotFound {
		t.Errorf("Get(нет накладной) = %v, ожидали ErrNotFound", err)
	}

	payload := model.Invoice{"supplier": "ООО Бетон", "total": "12500.50"}
	if err := repo.Put(ctx, userID, payload); err != nil {
		t.Fatalf("Put() ошибка: %v", err)
	}

	got, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if got["supplier"] != "ООО Бетон" {
		t.Errorf("Get() = %+v", got)
	}

	// Upsert перезаписывает
	if err := repo.Put(ctx, userID, model.Invoice{"supplier": "ООО Кирпич"}); err != nil {
		t.Fatalf("Put(upsert) ошибка: %v", err)
	}
	got2, _ := repo.Get(ctx, userID)
	if got2["supplier"] != "ООО Кирпич" {
		t.Errorf("после upsert Get() = %+v", got2)
	}

	if err := repo.Clear(ctx, userID); err != nil {
		t.Fatalf("Clear() ошибка: %v", err)
	}
	if _, err := repo.Get(ctx, userID); err != ErrNotFound {
		t.Errorf("после Clear ожидали ErrNotFound, получили: %v", err)
	}
}

// --- Тесты UserProfileRepository ---

func TestUserProfile(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserProfileRepository(pool)

	userID := uuid.New().String()
	p := &model.UserProfile{
		UserID:   userID,
		FullName: "Иван Петров",
		Role:     "manager",
		Email:    "ivan@example.com",
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	got, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUserID() ошибка: %v", err)
	}
	if got.Role != "manager" || got.FullName != "Иван Петров" {
		t.Errorf("GetByUserID() = %+v", got)
	}

	// Повторное создание — конфликт
	if err := repo.Create(ctx, p); !errors.Is(err, ErrConflict) {
		t.Errorf("Create(дубликат) = %v, ожидали ErrConflict", err)
	}

	if _, err := repo.GetByUserID(ctx, uuid.New().String()); err != ErrNotFound {
		t.Errorf("GetByUserID(чужой id) = %v, ожидали ErrNotFound", err)
	}
}
