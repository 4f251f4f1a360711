package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"

	"gorm.io/gorm"
)

func newAuthTestConfig() *config.Config {
	return &config.Config{
		JWT:     config.JWTConfig{SecretKey: "staff-secret", ExpireHours: 12},
		UserJWT: config.JWTConfig{SecretKey: "user-secret", ExpireHours: 24, RememberMeExpireHours: 720},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true},
		},
	}
}

func createAuthTestUser(t *testing.T, db *gorm.DB, username, password, role, status string) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := &models.User{
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func newAuthTestServices(t *testing.T) (*gorm.DB, *AuthService, *UserAuthService) {
	t.Helper()
	db := setupServiceTestDB(t)
	cfg := newAuthTestConfig()
	userRepo := repository.NewUserRepository(db)
	blacklist := NewDBTokenBlacklist(repository.NewRevokedTokenRepository(db), nil)
	return db, NewAuthService(cfg, userRepo, blacklist), NewUserAuthService(cfg, userRepo, blacklist)
}

func TestStaffLogin(t *testing.T) {
	db, authSvc, _ := newAuthTestServices(t)
	createAuthTestUser(t, db, "cocina", "Secret123", constants.RoleEmployee, constants.UserStatusActive)
	createAuthTestUser(t, db, "cliente", "Secret123", constants.RoleUser, constants.UserStatusActive)
	createAuthTestUser(t, db, "baja", "Secret123", constants.RoleAdmin, constants.UserStatusDisabled)

	user, token, _, err := authSvc.Login("cocina", "Secret123")
	if err != nil {
		t.Fatalf("staff login failed: %v", err)
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login to be stamped")
	}
	claims, err := authSvc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse staff token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != constants.RoleEmployee {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, _, _, err := authSvc.Login("cocina@example.com", "Secret123"); err != nil {
		t.Fatalf("login by email failed: %v", err)
	}
	if _, _, _, err := authSvc.Login("cocina", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := authSvc.Login("nadie", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
	if _, _, _, err := authSvc.Login("cliente", "Secret123"); !errors.Is(err, ErrNotStaff) {
		t.Fatalf("expected not staff, got %v", err)
	}
	if _, _, _, err := authSvc.Login("baja", "Secret123"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
}

func TestStaffTokenRejectedByUserSecret(t *testing.T) {
	db, authSvc, userSvc := newAuthTestServices(t)
	createAuthTestUser(t, db, "cocina", "Secret123", constants.RoleEmployee, constants.UserStatusActive)

	_, token, _, err := authSvc.Login("cocina", "Secret123")
	if err != nil {
		t.Fatalf("staff login failed: %v", err)
	}
	if _, err := userSvc.ParseUserJWT(token); err == nil {
		t.Fatalf("staff token must not parse with customer secret")
	}
}

func TestStaffLogout(t *testing.T) {
	db, authSvc, _ := newAuthTestServices(t)
	createAuthTestUser(t, db, "cocina", "Secret123", constants.RoleEmployee, constants.UserStatusActive)
	_, token, _, err := authSvc.Login("cocina", "Secret123")
	if err != nil {
		t.Fatalf("staff login failed: %v", err)
	}

	ctx := context.Background()
	if err := authSvc.Logout(ctx, token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	revoked, err := authSvc.IsTokenRevoked(ctx, token)
	if err != nil {
		t.Fatalf("check revoked failed: %v", err)
	}
	if !revoked {
		t.Fatalf("expected token to be revoked")
	}
	if err := authSvc.Logout(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestUserRegister(t *testing.T) {
	db, _, userSvc := newAuthTestServices(t)

	user, token, _, err := userSvc.Register(RegisterInput{
		Name:     "Lucía",
		Username: "lucia",
		Email:    " Lucia@Example.com ",
		Password: "Secreto99",
		Locale:   "es",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "lucia@example.com" || user.Role != constants.RoleUser || user.Locale != constants.LocaleEsAR {
		t.Fatalf("unexpected user: %+v", user)
	}
	if token == "" {
		t.Fatalf("expected token after register")
	}
	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if stored.PasswordHash == "Secreto99" || VerifyPassword(stored.PasswordHash, "Secreto99") != nil {
		t.Fatalf("password must be stored as bcrypt hash")
	}

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"duplicate email", RegisterInput{Username: "otra", Email: "lucia@example.com", Password: "Secreto99"}, ErrEmailExists},
		{"duplicate username", RegisterInput{Username: "lucia", Email: "otra@example.com", Password: "Secreto99"}, ErrUsernameExists},
		{"bad email", RegisterInput{Username: "otra", Email: "no-es-email", Password: "Secreto99"}, ErrInvalidEmail},
		{"bad username", RegisterInput{Username: "a", Email: "a@example.com", Password: "Secreto99"}, ErrInvalidUsername},
		{"short password", RegisterInput{Username: "otra", Email: "otra@example.com", Password: "abc1"}, ErrWeakPassword},
		{"password without number", RegisterInput{Username: "otra", Email: "otra@example.com", Password: "abcdefgh"}, ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := userSvc.Register(tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUserLoginRememberMe(t *testing.T) {
	db, _, userSvc := newAuthTestServices(t)
	createAuthTestUser(t, db, "lucia", "Secreto99", constants.RoleUser, constants.UserStatusActive)

	_, _, shortExpiry, err := userSvc.Login("lucia", "Secreto99", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	_, _, longExpiry, err := userSvc.Login("lucia", "Secreto99", true)
	if err != nil {
		t.Fatalf("remember me login failed: %v", err)
	}
	if !longExpiry.After(shortExpiry) {
		t.Fatalf("remember me should extend expiry: %v <= %v", longExpiry, shortExpiry)
	}
}

func TestUserRefreshRevokesOldToken(t *testing.T) {
	db, _, userSvc := newAuthTestServices(t)
	createAuthTestUser(t, db, "lucia", "Secreto99", constants.RoleUser, constants.UserStatusActive)
	_, oldToken, _, err := userSvc.Login("lucia", "Secreto99", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	ctx := context.Background()
	_, newToken, _, err := userSvc.Refresh(ctx, oldToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if newToken == oldToken {
		t.Fatalf("refresh must issue a distinct token")
	}
	if revoked, _ := userSvc.IsTokenRevoked(ctx, oldToken); !revoked {
		t.Fatalf("old token should be revoked after refresh")
	}
	if revoked, _ := userSvc.IsTokenRevoked(ctx, newToken); revoked {
		t.Fatalf("new token must stay valid")
	}
	if _, _, _, err := userSvc.Refresh(ctx, oldToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected revoked error on reuse, got %v", err)
	}
}

func TestUserRefreshRejectsBumpedTokenVersion(t *testing.T) {
	db, _, userSvc := newAuthTestServices(t)
	user := createAuthTestUser(t, db, "lucia", "Secreto99", constants.RoleUser, constants.UserStatusActive)
	_, token, _, err := userSvc.Login("lucia", "Secreto99", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("token_version", 1).Error; err != nil {
		t.Fatalf("bump token version failed: %v", err)
	}
	if _, _, _, err := userSvc.Refresh(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	db, _, userSvc := newAuthTestServices(t)
	user := createAuthTestUser(t, db, "lucia", "Secreto99", constants.RoleUser, constants.UserStatusActive)

	got, err := userSvc.GetUserByID(user.ID)
	if err != nil || got.Username != "lucia" {
		t.Fatalf("get user failed: %v %+v", err, got)
	}
	if _, err := userSvc.GetUserByID(999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDBTokenBlacklistPurge(t *testing.T) {
	db := setupServiceTestDB(t)
	clock := newManualClock(orderTestStart)
	blacklist := NewDBTokenBlacklist(repository.NewRevokedTokenRepository(db), clock)
	ctx := context.Background()

	if err := blacklist.Revoke(ctx, "expired", orderTestStart.Add(-1)); err != nil {
		t.Fatalf("revoke expired failed: %v", err)
	}
	if revoked, _ := blacklist.IsRevoked(ctx, "expired"); revoked {
		t.Fatalf("already expired tokens are not recorded")
	}
	if err := blacklist.Revoke(ctx, "live", orderTestStart.Add(time.Hour)); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if revoked, _ := blacklist.IsRevoked(ctx, "live"); !revoked {
		t.Fatalf("expected live token revoked")
	}

	clock.Set(orderTestStart.Add(2 * time.Hour))
	purged, err := blacklist.PurgeExpired()
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged row, got %d", purged)
	}
}
