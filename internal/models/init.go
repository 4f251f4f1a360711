package models

import (
	"strings"

	"github.com/foodtruck-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const defaultAdminPassword = "admin123"

// InitDefaultAdmin 初始化默认管理员账号（仅当不存在任何员工账号时）
func InitDefaultAdmin(username, password string) error {
	var count int64
	if err := DB.Model(&User{}).Where("role IN ?", []string{"ROLE_ADMIN", "ROLE_EMPLOYEE"}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Name:         "Administrador",
		Username:     username,
		Email:        username + "@foodtruck.local",
		PasswordHash: string(hash),
		Role:         "ROLE_ADMIN",
		Status:       "active",
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}
	return nil
}
