package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPromotionRepositoryTest(t *testing.T) (*GormPromotionRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promotion_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Promotion{},
		&models.PromotionWeeklyRule{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := db.Create(&models.Category{ID: 1, Name: "Food", IsActive: true}).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return NewPromotionRepository(db), db
}

func createPromotionTestProduct(t *testing.T, db *gorm.DB, name string) models.Product {
	t.Helper()
	product := models.Product{
		CategoryID: 1,
		Name:       name,
		Price:      models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		IsActive:   true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func civilDay(year int, month time.Month, day int) *time.Time {
	value := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &value
}

func TestPromotionRepositoryCreateWithRulesAndProducts(t *testing.T) {
	repo, db := setupPromotionRepositoryTest(t)
	taco := createPromotionTestProduct(t, db, "Taco")
	soda := createPromotionTestProduct(t, db, "Soda")

	promotion := &models.Promotion{
		Name:     "Happy Hour",
		Price:    models.NewMoneyFromDecimal(decimal.RequireFromString("15.00")),
		Type:     constants.PromotionTypeRecurring,
		IsActive: true,
		WeeklyRules: []models.PromotionWeeklyRule{
			{DayOfWeek: constants.DayMonday, StartTime: "18:00:00", EndTime: "20:00:00"},
		},
		Products: []models.Product{taco, soda},
	}
	if err := repo.Create(promotion); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}

	loaded, err := repo.GetByID(promotion.ID)
	if err != nil {
		t.Fatalf("get promotion failed: %v", err)
	}
	if loaded == nil {
		t.Fatalf("promotion should exist")
	}
	if len(loaded.WeeklyRules) != 1 || loaded.WeeklyRules[0].PromotionID != promotion.ID {
		t.Fatalf("unexpected weekly rules: %+v", loaded.WeeklyRules)
	}
	ids := loaded.ProductIDs()
	if len(ids) != 2 || ids[0] != taco.ID || ids[1] != soda.ID {
		t.Fatalf("unexpected product ids: %v", ids)
	}
}

func TestPromotionRepositoryGetByIDMissingReturnsNil(t *testing.T) {
	repo, _ := setupPromotionRepositoryTest(t)
	promotion, err := repo.GetByID(999)
	if err != nil {
		t.Fatalf("get missing promotion failed: %v", err)
	}
	if promotion != nil {
		t.Fatalf("missing promotion should be nil")
	}
}

func TestPromotionRepositoryReplaceWeeklyRules(t *testing.T) {
	repo, db := setupPromotionRepositoryTest(t)
	promotion := &models.Promotion{
		Name:     "Lunch",
		Price:    models.NewMoneyFromDecimal(decimal.RequireFromString("8.50")),
		Type:     constants.PromotionTypeRecurring,
		IsActive: true,
		WeeklyRules: []models.PromotionWeeklyRule{
			{DayOfWeek: constants.DayMonday, StartTime: "12:00:00", EndTime: "14:00:00"},
			{DayOfWeek: constants.DayTuesday, StartTime: "12:00:00", EndTime: "14:00:00"},
		},
	}
	if err := repo.Create(promotion); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}

	replacement := []models.PromotionWeeklyRule{
		{ID: 77, DayOfWeek: constants.DayFriday, StartTime: "11:00:00", EndTime: "15:00:00"},
	}
	if err := repo.ReplaceWeeklyRules(promotion.ID, replacement); err != nil {
		t.Fatalf("replace weekly rules failed: %v", err)
	}

	var rules []models.PromotionWeeklyRule
	if err := db.Where("promotion_id = ?", promotion.ID).Find(&rules).Error; err != nil {
		t.Fatalf("load rules failed: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("rules len want 1 got %d", len(rules))
	}
	if rules[0].DayOfWeek != constants.DayFriday || rules[0].PromotionID != promotion.ID {
		t.Fatalf("unexpected replaced rule: %+v", rules[0])
	}

	if err := repo.ReplaceWeeklyRules(promotion.ID, nil); err != nil {
		t.Fatalf("clear weekly rules failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.PromotionWeeklyRule{}).Where("promotion_id = ?", promotion.ID).Count(&count).Error; err != nil {
		t.Fatalf("count rules failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("rules should be cleared, got %d", count)
	}
}

func TestPromotionRepositoryExistsActiveByName(t *testing.T) {
	repo, _ := setupPromotionRepositoryTest(t)
	active := &models.Promotion{Name: "Combo Familiar", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(20)), Type: constants.PromotionTypeRecurring, IsActive: true}
	if err := repo.Create(active); err != nil {
		t.Fatalf("create active promotion failed: %v", err)
	}
	inactive := &models.Promotion{Name: "Combo Noche", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(20)), Type: constants.PromotionTypeRecurring, IsActive: true}
	if err := repo.Create(inactive); err != nil {
		t.Fatalf("create inactive promotion failed: %v", err)
	}
	inactive.IsActive = false
	if err := repo.Update(inactive); err != nil {
		t.Fatalf("deactivate promotion failed: %v", err)
	}

	exists, err := repo.ExistsActiveByName("  combo familiar ", 0)
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if !exists {
		t.Fatalf("case-insensitive active name should exist")
	}
	exists, err = repo.ExistsActiveByName("Combo Familiar", active.ID)
	if err != nil {
		t.Fatalf("exists check with exclude failed: %v", err)
	}
	if exists {
		t.Fatalf("excluded promotion should not count")
	}
	exists, err = repo.ExistsActiveByName("combo noche", 0)
	if err != nil {
		t.Fatalf("exists check inactive failed: %v", err)
	}
	if exists {
		t.Fatalf("inactive promotion name should be free")
	}
}

func TestPromotionRepositoryExpiryQueries(t *testing.T) {
	repo, _ := setupPromotionRepositoryTest(t)
	today := *civilDay(2026, 3, 10)

	expired := &models.Promotion{Name: "Expired", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), Type: constants.PromotionTypeTemporary, IsActive: true, StartsAt: civilDay(2026, 3, 1), EndsAt: civilDay(2026, 3, 9)}
	endsToday := &models.Promotion{Name: "Ends Today", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), Type: constants.PromotionTypeTemporary, IsActive: true, StartsAt: civilDay(2026, 3, 1), EndsAt: civilDay(2026, 3, 10)}
	expiredInactive := &models.Promotion{Name: "Expired Inactive", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), Type: constants.PromotionTypeTemporary, IsActive: true, StartsAt: civilDay(2026, 2, 1), EndsAt: civilDay(2026, 2, 2)}
	for _, promotion := range []*models.Promotion{expired, endsToday, expiredInactive} {
		if err := repo.Create(promotion); err != nil {
			t.Fatalf("create promotion failed: %v", err)
		}
	}
	expiredInactive.IsActive = false
	if err := repo.Update(expiredInactive); err != nil {
		t.Fatalf("deactivate promotion failed: %v", err)
	}

	rows, err := repo.ListExpiredActive(today)
	if err != nil {
		t.Fatalf("list expired active failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != expired.ID {
		t.Fatalf("expired active want [%d] got %+v", expired.ID, rows)
	}

	rows, err = repo.ListExpired(today)
	if err != nil {
		t.Fatalf("list expired failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expired want 2 got %d", len(rows))
	}

	rows, err = repo.ListExpiringBetween(today, *civilDay(2026, 3, 12))
	if err != nil {
		t.Fatalf("list expiring failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != endsToday.ID {
		t.Fatalf("expiring want [%d] got %+v", endsToday.ID, rows)
	}

	affected, err := repo.DeactivateByIDs([]uint{expired.ID, expiredInactive.ID})
	if err != nil {
		t.Fatalf("deactivate by ids failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("deactivate affected want 1 got %d", affected)
	}
}

func TestPromotionRepositoryDeleteClearsAssociations(t *testing.T) {
	repo, db := setupPromotionRepositoryTest(t)
	product := createPromotionTestProduct(t, db, "Burrito")
	promotion := &models.Promotion{
		Name:        "Burrito Tuesday",
		Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(9)),
		Type:        constants.PromotionTypeRecurring,
		IsActive:    true,
		WeeklyRules: []models.PromotionWeeklyRule{{DayOfWeek: constants.DayTuesday, StartTime: "10:00:00", EndTime: "22:00:00"}},
		Products:    []models.Product{product},
	}
	if err := repo.Create(promotion); err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	count, err := repo.CountByProduct(product.ID)
	if err != nil {
		t.Fatalf("count by product failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count by product want 1 got %d", count)
	}

	if err := repo.Delete(promotion.ID); err != nil {
		t.Fatalf("delete promotion failed: %v", err)
	}
	loaded, err := repo.GetByID(promotion.ID)
	if err != nil {
		t.Fatalf("get deleted promotion failed: %v", err)
	}
	if loaded != nil {
		t.Fatalf("deleted promotion should not be found")
	}
	count, err = repo.CountByProduct(product.ID)
	if err != nil {
		t.Fatalf("count by product after delete failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("product links should be cleared, got %d", count)
	}
	var ruleCount int64
	if err := db.Model(&models.PromotionWeeklyRule{}).Where("promotion_id = ?", promotion.ID).Count(&ruleCount).Error; err != nil {
		t.Fatalf("count rules failed: %v", err)
	}
	if ruleCount != 0 {
		t.Fatalf("weekly rules should be deleted, got %d", ruleCount)
	}
}

func TestPromotionRepositoryListFilters(t *testing.T) {
	repo, _ := setupPromotionRepositoryTest(t)
	rows := []*models.Promotion{
		{Name: "Taco Tuesday", Description: "tacos", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(7)), Type: constants.PromotionTypeRecurring, IsActive: true},
		{Name: "Summer Fest", Description: "TACO combo", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(12)), Type: constants.PromotionTypeTemporary, IsActive: true, StartsAt: civilDay(2026, 1, 1), EndsAt: civilDay(2026, 1, 31)},
		{Name: "Burger Night", Price: models.NewMoneyFromDecimal(decimal.NewFromInt(11)), Type: constants.PromotionTypeRecurring, IsActive: true},
	}
	for _, row := range rows {
		if err := repo.Create(row); err != nil {
			t.Fatalf("create promotion failed: %v", err)
		}
	}

	list, total, err := repo.List(PromotionListFilter{Keyword: "taco", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by keyword failed: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("keyword list want 2 got total=%d len=%d", total, len(list))
	}

	list, total, err = repo.List(PromotionListFilter{Type: constants.PromotionTypeRecurring, Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("list by type failed: %v", err)
	}
	if total != 2 || len(list) != 1 {
		t.Fatalf("type list want total=2 len=1 got total=%d len=%d", total, len(list))
	}
	if list[0].Name != "Burger Night" {
		t.Fatalf("list should be newest first, got %s", list[0].Name)
	}

	found, err := repo.SearchActiveByName("TUESDAY")
	if err != nil {
		t.Fatalf("search active by name failed: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Taco Tuesday" {
		t.Fatalf("unexpected search result: %+v", found)
	}

	count, err := repo.CountByType(constants.PromotionTypeTemporary)
	if err != nil {
		t.Fatalf("count by type failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("temporary count want 1 got %d", count)
	}
}
