package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.RevokedToken{},
		&models.Category{},
		&models.Product{},
		&models.Promotion{},
		&models.PromotionWeeklyRule{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	if err := db.Create(&models.Category{ID: 1, Name: "Comidas", IsActive: true}).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return db
}

// manualClock 测试用可调时钟
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// recordingNotifier 记录订单通知类型
type recordingNotifier struct {
	mu    sync.Mutex
	types []string
}

func (n *recordingNotifier) NotifyOrder(order *models.Order, notifyType string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.types = append(n.types, notifyType)
}

func (n *recordingNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.types) == 0 {
		return ""
	}
	return n.types[len(n.types)-1]
}

func mustMoney(t *testing.T, raw string) models.Money {
	t.Helper()
	value, err := models.NewMoneyFromString(raw)
	if err != nil {
		t.Fatalf("parse money %s failed: %v", raw, err)
	}
	return value
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         constants.RoleUser,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, id uint, name, price string, active bool) models.Product {
	t.Helper()
	product := models.Product{
		ID:         id,
		CategoryID: 1,
		Name:       name,
		Price:      mustMoney(t, price),
		IsActive:   active,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestTemporaryPromotion(t *testing.T, db *gorm.DB, id uint, name, price string, startsAt, endsAt time.Time, active bool) models.Promotion {
	t.Helper()
	start := CivilDate(startsAt)
	end := CivilDate(endsAt)
	promotion := models.Promotion{
		ID:       id,
		Name:     name,
		Price:    mustMoney(t, price),
		Type:     constants.PromotionTypeTemporary,
		IsActive: active,
		StartsAt: &start,
		EndsAt:   &end,
	}
	if err := db.Create(&promotion).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	return promotion
}
