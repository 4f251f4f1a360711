package repository

import "time"

// ProductListFilter 查询菜品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	Search       string
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page            int
	PageSize        int
	UserID          uint
	Status          string
	Statuses        []string
	ExcludeStatuses []string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	OldestFirst     bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
