package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voltio/panelquote/internal/apperr"
	"github.com/voltio/panelquote/internal/cache"
	"github.com/voltio/panelquote/internal/models"
	"github.com/voltio/panelquote/internal/platform/logger"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbi.AutoMigrate(&models.Client{}, &models.Component{}, &models.Quotation{}, &models.QuotationItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbi
}

func TestGormRepositoryCRUD(t *testing.T) {
	dbi := setupRepoTestDB(t)
	repo := NewGormRepository[models.Component](dbi, "component")
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Component{Name: "MCCB 250A", Category: "MCCB", UnitPrice: 50000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Name != "MCCB 250A" {
		t.Fatalf("unexpected name: %s", found.Name)
	}

	updated, err := repo.Update(ctx, created.ID, map[string]any{"unit_price": 55000.0})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.UnitPrice != 55000 {
		t.Fatalf("expected updated price, got %v", updated.UnitPrice)
	}

	all, err := repo.FindAll(ctx, Filters{"category": "MCCB"})
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 component, got %d", len(all))
	}

	n, err := repo.Count(ctx, Filters{})
	if err != nil || n != 1 {
		t.Fatalf("count: %v n=%d", err, n)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGormRepositoryNotFound(t *testing.T) {
	dbi := setupRepoTestDB(t)
	repo := NewGormRepository[models.Component](dbi, "component")
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, "missing"); !apperr.IsNotFound(err) {
		t.Fatalf("find: expected not found, got %v", err)
	}
	if _, err := repo.Update(ctx, "missing", map[string]any{"name": "x"}); !apperr.IsNotFound(err) {
		t.Fatalf("update: expected not found, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !apperr.IsNotFound(err) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
}

func TestCacheDecoratorReadThrough(t *testing.T) {
	dbi := setupRepoTestDB(t)
	store := cache.NewManager(time.Minute)
	defer store.Stop()
	repo := NewCacheDecorator[models.Component](
		NewGormRepository[models.Component](dbi, "component"),
		store, "component", time.Minute, logger.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Component{Name: "ACB 1600A", UnitPrice: 900000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// First read populates, second read is served from cache even after the
	// row is changed behind the decorator's back.
	if _, err := repo.FindByID(ctx, created.ID); err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := dbi.Model(&models.Component{}).Where("id = ?", created.ID).Update("name", "changed directly").Error; err != nil {
		t.Fatalf("raw update: %v", err)
	}
	cached, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("cached find: %v", err)
	}
	if cached.Name != "ACB 1600A" {
		t.Fatalf("expected cached value, got %s", cached.Name)
	}
}

func TestCacheDecoratorWriteInvalidatesLists(t *testing.T) {
	dbi := setupRepoTestDB(t)
	store := cache.NewManager(time.Minute)
	defer store.Stop()
	repo := NewCacheDecorator[models.Component](
		NewGormRepository[models.Component](dbi, "component"),
		store, "component", time.Minute, logger.NewNop())
	ctx := context.Background()

	if _, err := repo.Create(ctx, &models.Component{Name: "MCB 32A"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := repo.FindAll(ctx, Filters{})
	if err != nil || len(all) != 1 {
		t.Fatalf("find all: %v len=%d", err, len(all))
	}
	n, err := repo.Count(ctx, Filters{})
	if err != nil || n != 1 {
		t.Fatalf("count: %v n=%d", err, n)
	}

	// Any write evicts every cached list and count for the prefix.
	if _, err := repo.Create(ctx, &models.Component{Name: "MCB 63A"}); err != nil {
		t.Fatalf("second create: %v", err)
	}
	all, err = repo.FindAll(ctx, Filters{})
	if err != nil || len(all) != 2 {
		t.Fatalf("find all after write: %v len=%d", err, len(all))
	}
	n, err = repo.Count(ctx, Filters{})
	if err != nil || n != 2 {
		t.Fatalf("count after write: %v n=%d", err, n)
	}
}

func TestCacheDecoratorDeleteEvictsIDKey(t *testing.T) {
	dbi := setupRepoTestDB(t)
	store := cache.NewManager(time.Minute)
	defer store.Stop()
	repo := NewCacheDecorator[models.Component](
		NewGormRepository[models.Component](dbi, "component"),
		store, "component", time.Minute, logger.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Component{Name: "Busbar"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestQuotationRepositoryQueries(t *testing.T) {
	dbi := setupRepoTestDB(t)
	repo := NewQuotationRepository(dbi)
	ctx := context.Background()

	quotes := []models.Quotation{
		{ClientID: "c-1", QuoteTitle: "first", Status: models.StatusDraft},
		{ClientID: "c-1", QuoteTitle: "second", Status: models.StatusApproved},
		{ClientID: "c-2", QuoteTitle: "third", Status: models.StatusDraft},
	}
	for i := range quotes {
		if err := dbi.Create(&quotes[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	item := models.QuotationItem{QuotationID: quotes[0].ID, ComponentID: "comp-1", Quantity: 2, UnitPrice: 100, TotalPrice: 200}
	if err := dbi.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	byClient, err := repo.FindByClient(ctx, "c-1")
	if err != nil || len(byClient) != 2 {
		t.Fatalf("by client: %v len=%d", err, len(byClient))
	}
	byStatus, err := repo.FindByStatus(ctx, models.StatusDraft)
	if err != nil || len(byStatus) != 2 {
		t.Fatalf("by status: %v len=%d", err, len(byStatus))
	}
	withItems, err := repo.FindWithItems(ctx, quotes[0].ID)
	if err != nil {
		t.Fatalf("with items: %v", err)
	}
	if len(withItems.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(withItems.Items))
	}
	if _, err := repo.FindWithItems(ctx, "missing"); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
