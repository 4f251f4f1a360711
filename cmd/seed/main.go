package main

import (
	"time"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "Foodtruck#2024"

type seedProduct struct {
	Category    string
	Name        string
	Description string
	Price       string
	SortOrder   int
}

type seedPromotion struct {
	Name        string
	Description string
	Price       string
	Type        string
	Days        int
	Rules       []models.PromotionWeeklyRule
	Products    []string
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Server.Mode); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}

	// 演示账号
	users := []models.User{
		{Name: "Administración", Username: "admin", Email: "admin@foodtruck.local", Role: constants.RoleAdmin},
		{Name: "Cocina", Username: "cocina", Email: "cocina@foodtruck.local", Role: constants.RoleEmployee},
		{Name: "Lucía Gómez", Username: "lucia", Email: "lucia@example.com", Role: constants.RoleUser},
	}
	for _, user := range users {
		var existing models.User
		if err := models.DB.Where("username = ?", user.Username).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", user.Username)
			continue
		}
		user.PasswordHash = string(hash)
		user.Status = constants.UserStatusActive
		user.Locale = constants.LocaleEsAR
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", user.Username, err)
			continue
		}
		stdLog.Printf("Created user: %s (%s)", user.Username, user.Role)
	}

	// 添加分类
	categories := []models.Category{
		{Name: "Tacos", Description: "Tortillas de maíz recién hechas", SortOrder: 30},
		{Name: "Bebidas", Description: "Frías y sin alcohol", SortOrder: 20},
		{Name: "Postres", Description: "Para cerrar", SortOrder: 10},
	}
	categoryIDs := map[string]uint{}
	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("name = ?", cat.Name).First(&existing).Error; err == nil {
			categoryIDs[cat.Name] = existing.ID
			stdLog.Printf("Category already exists: %s", cat.Name)
			continue
		}
		cat.IsActive = true
		if err := models.DB.Create(&cat).Error; err != nil {
			stdLog.Printf("Failed to create category %s: %v", cat.Name, err)
			continue
		}
		categoryIDs[cat.Name] = cat.ID
		stdLog.Printf("Created category: %s", cat.Name)
	}

	// 添加菜品
	products := []seedProduct{
		{Category: "Tacos", Name: "Taco al pastor", Description: "Cerdo marinado, piña y cilantro", Price: "3.50", SortOrder: 50},
		{Category: "Tacos", Name: "Taco de carnitas", Description: "Cerdo confitado con salsa verde", Price: "3.80", SortOrder: 40},
		{Category: "Tacos", Name: "Taco de hongos", Description: "Hongos salteados y queso fresco", Price: "3.20", SortOrder: 30},
		{Category: "Bebidas", Name: "Agua de jamaica", Description: "500 ml", Price: "2.00", SortOrder: 20},
		{Category: "Bebidas", Name: "Limonada", Description: "500 ml", Price: "2.20", SortOrder: 10},
		{Category: "Postres", Name: "Churros", Description: "Con dulce de leche", Price: "2.80", SortOrder: 10},
	}
	productIDs := map[string]uint{}
	for _, item := range products {
		categoryID, ok := categoryIDs[item.Category]
		if !ok {
			stdLog.Printf("Category not found for product %s: %s", item.Name, item.Category)
			continue
		}
		var existing models.Product
		if err := models.DB.Where("name = ?", item.Name).First(&existing).Error; err == nil {
			productIDs[item.Name] = existing.ID
			stdLog.Printf("Product already exists: %s", item.Name)
			continue
		}
		product := models.Product{
			CategoryID:  categoryID,
			Name:        item.Name,
			Description: item.Description,
			Price:       models.NewMoneyFromDecimal(decimal.RequireFromString(item.Price)),
			IsActive:    true,
			SortOrder:   item.SortOrder,
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", item.Name, err)
			continue
		}
		productIDs[item.Name] = product.ID
		stdLog.Printf("Created product: %s", item.Name)
	}

	// 添加促销
	loc := cfg.Promotion.Location()
	today := time.Now().In(loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	promotions := []seedPromotion{
		{
			Name:        "Combo tres tacos",
			Description: "Pastor, carnitas y hongos",
			Price:       "9.00",
			Type:        constants.PromotionTypeTemporary,
			Days:        30,
			Products:    []string{"Taco al pastor", "Taco de carnitas", "Taco de hongos"},
		},
		{
			Name:        "Happy hour de bebidas",
			Description: "Jamaica y limonada",
			Price:       "3.50",
			Type:        constants.PromotionTypeRecurring,
			Rules: []models.PromotionWeeklyRule{
				{DayOfWeek: constants.DayFriday, StartTime: "17:00:00", EndTime: "19:00:00"},
				{DayOfWeek: constants.DaySaturday, StartTime: "17:00:00", EndTime: "19:00:00"},
			},
			Products: []string{"Agua de jamaica", "Limonada"},
		},
	}
	for _, item := range promotions {
		var existing models.Promotion
		if err := models.DB.Where("name = ?", item.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Promotion already exists: %s", item.Name)
			continue
		}
		promotion := models.Promotion{
			Name:        item.Name,
			Description: item.Description,
			Price:       models.NewMoneyFromDecimal(decimal.RequireFromString(item.Price)),
			Type:        item.Type,
			IsActive:    true,
			WeeklyRules: item.Rules,
		}
		if item.Type == constants.PromotionTypeTemporary {
			startsAt := today
			endsAt := today.AddDate(0, 0, item.Days)
			promotion.StartsAt = &startsAt
			promotion.EndsAt = &endsAt
		}
		for _, name := range item.Products {
			if id, ok := productIDs[name]; ok {
				promotion.Products = append(promotion.Products, models.Product{ID: id})
			}
		}
		if err := models.DB.Create(&promotion).Error; err != nil {
			stdLog.Printf("Failed to create promotion %s: %v", item.Name, err)
			continue
		}
		stdLog.Printf("Created promotion: %s", item.Name)
	}

	stdLog.Printf("Seed completed, demo password: %s", demoPassword)
}
