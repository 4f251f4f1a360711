package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSetDefaultsFillsOrderAndPromotionSections(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Order.MaxActiveOrders != 3 {
		t.Fatalf("unexpected max active orders: %d", cfg.Order.MaxActiveOrders)
	}
	if cfg.Order.GracePeriod() != 5*time.Minute {
		t.Fatalf("unexpected grace period: %s", cfg.Order.GracePeriod())
	}
	if cfg.Promotion.ExpirySweepCron != "0 0 * * *" {
		t.Fatalf("unexpected sweep cron: %s", cfg.Promotion.ExpirySweepCron)
	}
	if cfg.Notify.Telegram.Enabled {
		t.Fatalf("telegram notify should be disabled by default")
	}
	if cfg.Captcha.Provider != "none" {
		t.Fatalf("unexpected captcha provider: %s", cfg.Captcha.Provider)
	}
}

func TestOrderConfigFallbacks(t *testing.T) {
	cfg := OrderConfig{}
	if cfg.GracePeriod() != 5*time.Minute {
		t.Fatalf("zero grace should fall back to 5m, got %s", cfg.GracePeriod())
	}
	if cfg.ActiveOrderLimit() != 3 {
		t.Fatalf("zero limit should fall back to 3, got %d", cfg.ActiveOrderLimit())
	}
	cfg = OrderConfig{MaxActiveOrders: 5, ModifyGraceMinutes: 10}
	if cfg.GracePeriod() != 10*time.Minute || cfg.ActiveOrderLimit() != 5 {
		t.Fatalf("explicit values should win: %+v", cfg)
	}
}

func TestPromotionLocation(t *testing.T) {
	if loc := (PromotionConfig{Timezone: "local"}).Location(); loc != time.Local {
		t.Fatalf("expected local timezone, got %v", loc)
	}
	if loc := (PromotionConfig{Timezone: "no/such-zone"}).Location(); loc != time.Local {
		t.Fatalf("invalid timezone should fall back to local, got %v", loc)
	}
	loc := (PromotionConfig{Timezone: "UTC"}).Location()
	if loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v", loc)
	}
}
