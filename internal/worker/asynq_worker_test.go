package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/provider"
	"github.com/foodtruck-next/internal/queue"
	"github.com/foodtruck-next/internal/realtime"
	"github.com/foodtruck-next/internal/repository"
	"github.com/foodtruck-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

var workerTestNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func setupWorkerTestContainer(t *testing.T) (*gorm.DB, *provider.Container) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Promotion{}, &models.PromotionWeeklyRule{}, &models.RevokedToken{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	queueClient, _ := queue.NewClient(nil)
	broker := realtime.NewMemoryBroker(8)
	t.Cleanup(func() { _ = broker.Close() })

	promotionRepo := repository.NewPromotionRepository(db)
	revokedRepo := repository.NewRevokedTokenRepository(db)
	clock := service.FixedClock(workerTestNow)
	dbBlacklist := service.NewDBTokenBlacklist(revokedRepo, clock)

	c := &provider.Container{
		Config: &config.Config{
			Promotion: config.PromotionConfig{ExpirySweepEnabled: true, Timezone: "UTC"},
		},
		QueueClient:              queueClient,
		Broker:                   broker,
		TokenBlacklist:           dbBlacklist,
		DBTokenBlacklist:         dbBlacklist,
		PromotionRepo:            promotionRepo,
		PromotionExpiryService:   service.NewPromotionExpiryService(promotionRepo, clock, time.UTC),
		OrderNotificationService: service.NewOrderNotificationService(broker, nil, nil, constants.LocaleEnUS),
	}
	return db, c
}

func createWorkerTestPromotion(t *testing.T, db *gorm.DB, name string, endsAt time.Time) models.Promotion {
	t.Helper()
	start := service.CivilDate(endsAt.AddDate(0, 0, -7))
	end := service.CivilDate(endsAt)
	price, _ := models.NewMoneyFromString("100")
	promotion := models.Promotion{
		Name:     name,
		Price:    price,
		Type:     constants.PromotionTypeTemporary,
		IsActive: true,
		StartsAt: &start,
		EndsAt:   &end,
	}
	if err := db.Create(&promotion).Error; err != nil {
		t.Fatalf("create promotion failed: %v", err)
	}
	return promotion
}

func TestHandlePromotionExpireSweep(t *testing.T) {
	db, c := setupWorkerTestContainer(t)
	expired := createWorkerTestPromotion(t, db, "Ayer", workerTestNow.AddDate(0, 0, -1))
	current := createWorkerTestPromotion(t, db, "Hoy", workerTestNow)

	task, err := queue.NewPromotionExpireSweepTask(queue.PromotionExpireSweepPayload{Trigger: "test"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := NewConsumer(c).handlePromotionExpireSweep(context.Background(), task); err != nil {
		t.Fatalf("handle sweep failed: %v", err)
	}

	var reloaded models.Promotion
	if err := db.First(&reloaded, expired.ID).Error; err != nil {
		t.Fatalf("reload expired failed: %v", err)
	}
	if reloaded.IsActive {
		t.Fatalf("expected expired promotion deactivated")
	}
	var reloadedCurrent models.Promotion
	if err := db.First(&reloadedCurrent, current.ID).Error; err != nil {
		t.Fatalf("reload current failed: %v", err)
	}
	if !reloadedCurrent.IsActive {
		t.Fatalf("promotion ending today must stay active")
	}
}

func TestHandleOrderNotifyPublishesToEmployees(t *testing.T) {
	_, c := setupWorkerTestContainer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := c.Broker.Subscribe(ctx, realtime.EmployeesChannel())
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	task, err := queue.NewOrderNotifyTask(queue.OrderNotifyPayload{
		OrderID:  7,
		UserID:   3,
		UserName: "Lucía",
		Status:   constants.OrderStatusPending,
		Total:    "30.00",
		Type:     constants.NotificationOrderCreated,
		Message:  "new order",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := NewConsumer(c).handleOrderNotify(ctx, task); err != nil {
		t.Fatalf("handle notify failed: %v", err)
	}

	select {
	case msg := <-sub.C:
		if msg.Event != constants.NotificationOrderCreated {
			t.Fatalf("unexpected event: %s", msg.Event)
		}
		var payload queue.OrderNotifyPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			t.Fatalf("decode payload failed: %v", err)
		}
		if payload.OrderID != 7 || payload.Total != "30.00" {
			t.Fatalf("unexpected payload: %+v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected employee notification")
	}
}

func TestHandleOrderNotifySkipsInvalidPayload(t *testing.T) {
	_, c := setupWorkerTestContainer(t)
	task := asynq.NewTask(queue.TaskOrderNotify, []byte(`{"order_id":0}`))
	if err := NewConsumer(c).handleOrderNotify(context.Background(), task); err != nil {
		t.Fatalf("invalid payload should be skipped, got %v", err)
	}
	bad := asynq.NewTask(queue.TaskOrderNotify, []byte(`not-json`))
	if err := NewConsumer(c).handleOrderNotify(context.Background(), bad); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestSchedulerRunsSweepInlineWithoutQueue(t *testing.T) {
	db, c := setupWorkerTestContainer(t)
	expired := createWorkerTestPromotion(t, db, "Vencida", workerTestNow.AddDate(0, 0, -3))

	scheduler, err := NewScheduler(c)
	if err != nil {
		t.Fatalf("new scheduler failed: %v", err)
	}
	if scheduler.Entries() != 2 {
		t.Fatalf("expected sweep and purge entries, got %d", scheduler.Entries())
	}
	scheduler.RunPromotionSweep()

	var reloaded models.Promotion
	if err := db.First(&reloaded, expired.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.IsActive {
		t.Fatalf("expected inline sweep to deactivate promotion")
	}
}

func TestSchedulerRejectsInvalidCron(t *testing.T) {
	_, c := setupWorkerTestContainer(t)
	c.Config.Promotion.ExpirySweepCron = "not a cron"
	if _, err := NewScheduler(c); err == nil {
		t.Fatalf("expected invalid cron spec error")
	}
}

func TestSchedulerPurgesRevokedTokens(t *testing.T) {
	db, c := setupWorkerTestContainer(t)
	rows := []models.RevokedToken{
		{TokenHash: "old", ExpiresAt: workerTestNow.Add(-time.Hour)},
		{TokenHash: "live", ExpiresAt: workerTestNow.Add(time.Hour)},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed revoked tokens failed: %v", err)
	}

	scheduler, err := NewScheduler(c)
	if err != nil {
		t.Fatalf("new scheduler failed: %v", err)
	}
	scheduler.RunRevokedTokenPurge()

	var count int64
	if err := db.Model(&models.RevokedToken{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 remaining token, got %d", count)
	}
}
