package repository

import (
	"errors"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	Update(order *models.Order) error
	ReplaceItems(orderID uint, items []models.OrderItem) error
	List(filter OrderListFilter) ([]models.Order, int64, error)
	ListRecentByUser(userID uint, limit int) ([]models.Order, error)
	GetLastByUser(userID uint) (*models.Order, error)
	ListByUserAndStatus(userID uint, status string) ([]models.Order, error)
	CountByUserAndStatuses(userID uint, statuses []string) (int64, error)
	CountByStatus(status string, from, to *time.Time) (int64, error)
	Count(from, to *time.Time) (int64, error)
	SumDeliveredRevenue(from, to *time.Time) (decimal.Decimal, error)
	TopSellingItems(itemType string, limit int) ([]TopSellingItemRow, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository
}

// TopSellingItemRow 销量排行行
type TopSellingItemRow struct {
	ItemID    uint
	ItemName  string
	TotalSold int64
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (r *GormOrderRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("User")
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items", "User").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails(r.db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 行锁读取订单，需在事务中调用
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.db.Where("order_id = ?", order.ID).Order("id asc").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Update 保存订单主表字段
func (r *GormOrderRepository) Update(order *models.Order) error {
	return r.db.Omit("Items", "User").Save(order).Error
}

// ReplaceItems 整体替换订单项（先删后插）
func (r *GormOrderRepository) ReplaceItems(orderID uint, items []models.OrderItem) error {
	if orderID == 0 {
		return nil
	}
	if err := r.db.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].OrderID = orderID
	}
	return r.db.Create(&items).Error
}

// List 订单分页列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.ExcludeStatuses) > 0 {
		query = query.Where("status NOT IN ?", filter.ExcludeStatuses)
	}
	query = whereCreatedBetween(query, filter.CreatedFrom, filter.CreatedTo)

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "id desc"
	if filter.OldestFirst {
		orderBy = "id asc"
	}
	var orders []models.Order
	if err := r.withDetails(query).Order(orderBy).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListRecentByUser 用户最近的订单
func (r *GormOrderRepository) ListRecentByUser(userID uint, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.withDetails(r.db).Where("user_id = ?", userID).Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetLastByUser 用户最后一笔订单
func (r *GormOrderRepository) GetLastByUser(userID uint) (*models.Order, error) {
	var order models.Order
	err := r.withDetails(r.db).Where("user_id = ?", userID).Order("created_at desc, id desc").First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUserAndStatus 用户指定状态的订单（新到旧）
func (r *GormOrderRepository) ListByUserAndStatus(userID uint, status string) ([]models.Order, error) {
	var orders []models.Order
	err := r.withDetails(r.db).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByUserAndStatuses 统计用户处于指定状态的订单数
func (r *GormOrderRepository) CountByUserAndStatuses(userID uint, statuses []string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND status IN ?", userID, statuses).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus 按状态统计，可选创建时间范围
func (r *GormOrderRepository) CountByStatus(status string, from, to *time.Time) (int64, error) {
	var count int64
	query := applyCreatedRange(r.db.Model(&models.Order{}).Where("status = ?", status), from, to)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Count 订单总数，可选创建时间范围
func (r *GormOrderRepository) Count(from, to *time.Time) (int64, error) {
	var count int64
	if err := applyCreatedRange(r.db.Model(&models.Order{}), from, to).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumDeliveredRevenue 已交付订单的营收合计（按交付时间过滤）
func (r *GormOrderRepository) SumDeliveredRevenue(from, to *time.Time) (decimal.Decimal, error) {
	query := r.db.Model(&models.Order{}).Where("status = ?", constants.OrderStatusDelivered)
	if from != nil {
		query = query.Where("delivered_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("delivered_at <= ?", *to)
	}
	var row struct {
		Revenue decimal.NullDecimal
	}
	if err := query.Select("COALESCE(SUM(total), 0) AS revenue").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	if !row.Revenue.Valid {
		return decimal.Zero, nil
	}
	return row.Revenue.Decimal.Round(2), nil
}

// TopSellingItems 已交付订单中按数量排序的销量排行
func (r *GormOrderRepository) TopSellingItems(itemType string, limit int) ([]TopSellingItemRow, error) {
	refColumn := "order_items.product_id"
	if itemType == constants.OrderItemTypePromotion {
		refColumn = "order_items.promotion_id"
	}
	query := r.db.Table("order_items").
		Select(refColumn+" AS item_id, MAX(order_items.item_name) AS item_name, SUM(order_items.quantity) AS total_sold").
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("order_items.item_type = ? AND orders.status = ? AND "+refColumn+" IS NOT NULL", itemType, constants.OrderStatusDelivered).
		Group(refColumn).
		Order("total_sold desc, item_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []TopSellingItemRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applyCreatedRange(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	return query
}
