package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/foodtruck-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate category/product failed: %v", err)
	}
	return NewProductRepository(db), db
}

func createCatalogFixture(t *testing.T, db *gorm.DB) (models.Category, models.Category) {
	t.Helper()
	food := models.Category{Name: "Food", IsActive: true}
	drinks := models.Category{Name: "Drinks", IsActive: true}
	if err := db.Create(&food).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if err := db.Create(&drinks).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return food, drinks
}

func TestProductRepositoryListFilters(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	food, drinks := createCatalogFixture(t, db)

	products := []*models.Product{
		{CategoryID: food.ID, Name: "Taco al Pastor", Description: "pork", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), IsActive: true},
		{CategoryID: food.ID, Name: "Quesadilla", Description: "cheese TACO style", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(6)), IsActive: true},
		{CategoryID: drinks.ID, Name: "Horchata", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(3)), IsActive: true},
	}
	for _, product := range products {
		if err := repo.Create(product); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}
	products[2].IsActive = false
	if err := repo.Update(products[2]); err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	rows, total, err := repo.List(ProductListFilter{Search: "taco", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("search products failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("search want 2 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(ProductListFilter{OnlyActive: true, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("active list want 2 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(ProductListFilter{CategoryID: drinks.ID, WithCategory: true, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by category failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("category list want 1 got total=%d len=%d", total, len(rows))
	}
	if rows[0].Category == nil || rows[0].Category.Name != "Drinks" {
		t.Fatalf("category should be preloaded: %+v", rows[0].Category)
	}
}

func TestProductRepositoryListByIDs(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	food, _ := createCatalogFixture(t, db)

	first := &models.Product{CategoryID: food.ID, Name: "Taco", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), IsActive: true}
	second := &models.Product{CategoryID: food.ID, Name: "Nachos", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(7)), IsActive: true}
	for _, product := range []*models.Product{first, second} {
		if err := repo.Create(product); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}

	rows, err := repo.ListByIDs([]uint{second.ID, 999})
	if err != nil {
		t.Fatalf("list by ids failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != second.ID {
		t.Fatalf("list by ids want [%d] got %+v", second.ID, rows)
	}

	rows, err = repo.ListByIDs(nil)
	if err != nil {
		t.Fatalf("list by empty ids failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("empty ids should return nothing, got %d", len(rows))
	}

	if err := repo.Delete(first.ID); err != nil {
		t.Fatalf("delete product failed: %v", err)
	}
	deleted, err := repo.GetByID(first.ID)
	if err != nil {
		t.Fatalf("get deleted product failed: %v", err)
	}
	if deleted != nil {
		t.Fatalf("deleted product should not be found")
	}
}
