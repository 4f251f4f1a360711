//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.PromotionWeeklyRule{},
		"promotion_products",
		&models.Promotion{},
		&models.Product{},
		&models.Category{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Promotion{},
		&models.PromotionWeeklyRule{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCaseInsensitiveSearchRepositories(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	category := &models.Category{Name: "Postgres Food", IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	productRepo := NewProductRepository(db)
	product := &models.Product{
		CategoryID:  category.ID,
		Name:        "Choripán",
		Description: "Grilled CHORIZO sandwich",
		Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(8)),
		IsActive:    true,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	productRows, productTotal, err := productRepo.List(ProductListFilter{Page: 1, Search: "chorizo"})
	if err != nil {
		t.Fatalf("product list search failed: %v", err)
	}
	if productTotal != 1 || len(productRows) != 1 {
		t.Fatalf("product list search want 1 got total=%d len=%d", productTotal, len(productRows))
	}

	promotionRepo := NewPromotionRepository(db)
	promotion := &models.Promotion{
		Name:     "Noche de Choris",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
		Type:     constants.PromotionTypeRecurring,
		IsActive: true,
		WeeklyRules: []models.PromotionWeeklyRule{
			{DayOfWeek: constants.DayFriday, StartTime: "20:00:00", EndTime: "23:30:00"},
		},
		Products: []models.Product{*product},
	}
	if err := promotionRepo.Create(promotion); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}

	found, err := promotionRepo.SearchActiveByName("NOCHE")
	if err != nil {
		t.Fatalf("promotion search failed: %v", err)
	}
	if len(found) != 1 || len(found[0].WeeklyRules) != 1 || len(found[0].Products) != 1 {
		t.Fatalf("promotion search should preload associations: %+v", found)
	}
}

func TestPostgresOrderRowLockAndStats(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewOrderRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	user := &models.User{Name: "PG", Username: "pg_user", Email: "pg_user@example.com", PasswordHash: "hash", Role: constants.RoleUser}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	productID := uint(1)
	order := &models.Order{
		UserID:    user.ID,
		Status:    constants.OrderStatusReady,
		Subtotal:  models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		Total:     models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		CreatedAt: now,
	}
	items := []models.OrderItem{{
		ItemType:  constants.OrderItemTypeProduct,
		ProductID: &productID,
		ItemName:  "Choripán",
		UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Quantity:  2,
		LineTotal: models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
	}}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	err := repo.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetByIDForUpdate(order.ID)
		if err != nil {
			return err
		}
		deliveredAt := now.Add(10 * time.Minute)
		locked.Status = constants.OrderStatusDelivered
		locked.DeliveredAt = &deliveredAt
		return repo.WithTx(tx).Update(locked)
	})
	if err != nil {
		t.Fatalf("locked update failed: %v", err)
	}

	revenue, err := repo.SumDeliveredRevenue(nil, nil)
	if err != nil {
		t.Fatalf("sum revenue failed: %v", err)
	}
	if !revenue.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("revenue want 20 got %s", revenue.String())
	}

	top, err := repo.TopSellingItems(constants.OrderItemTypeProduct, 5)
	if err != nil {
		t.Fatalf("top selling failed: %v", err)
	}
	if len(top) != 1 || top[0].TotalSold != 2 {
		t.Fatalf("unexpected top selling rows: %+v", top)
	}
}
