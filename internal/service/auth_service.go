package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/cache"
	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims JWT 声明（员工与顾客 Token 结构相同，签名密钥不同）
type JWTClaims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// AuthService 员工认证服务
type AuthService struct {
	cfg       *config.Config
	userRepo  repository.UserRepository
	blacklist TokenBlacklist
	clock     Clock
}

// NewAuthService 创建员工认证服务
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, blacklist TokenBlacklist) *AuthService {
	return &AuthService{
		cfg:       cfg,
		userRepo:  userRepo,
		blacklist: blacklist,
		clock:     SystemClock,
	}
}

// HashPassword 使用 bcrypt 加密密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// GenerateJWT 生成员工 Token
func (s *AuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = 12
	}
	return signJWT(s.cfg.JWT.SecretKey, user, s.clock.Now(), time.Duration(hours)*time.Hour)
}

// ParseJWT 解析员工 Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	return parseJWT(s.cfg.JWT.SecretKey, tokenString)
}

// Login 员工登录（用户名或邮箱）
func (s *AuthService) Login(login, password string) (*models.User, string, time.Time, error) {
	user, err := authenticate(s.userRepo, login, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if !user.IsStaff() {
		logger.Warnw("staff_login_rejected_not_staff", "user_id", user.ID)
		return nil, "", time.Time{}, ErrNotStaff
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := touchLastLogin(s.userRepo, user, s.clock.Now()); err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("staff_login", "user_id", user.ID, "role", user.Role)
	return user, token, expiresAt, nil
}

// Logout 注销员工 Token
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ParseJWT(tokenString)
	if err != nil {
		return ErrInvalidToken
	}
	return revokeToken(ctx, s.blacklist, tokenString, claims)
}

// IsTokenRevoked Token 是否已注销
func (s *AuthService) IsTokenRevoked(ctx context.Context, tokenString string) (bool, error) {
	return isTokenRevoked(ctx, s.blacklist, tokenString)
}

// GetUserByID 获取账号
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	return getUserByID(s.userRepo, id)
}

func signJWT(secret string, user *models.User, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, errors.New("jwt secret 未配置")
	}
	expiresAt := now.Add(ttl)
	claims := JWTClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func parseJWT(secret, tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &JWTClaims{}
	token, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func authenticate(userRepo repository.UserRepository, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := userRepo.GetByLogin(login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}
	return user, nil
}

func touchLastLogin(userRepo repository.UserRepository, user *models.User, now time.Time) error {
	user.LastLoginAt = &now
	if err := userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

func revokeToken(ctx context.Context, blacklist TokenBlacklist, tokenString string, claims *JWTClaims) error {
	if blacklist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := blacklist.Revoke(ctx, HashToken(tokenString), claims.ExpiresAt.Time); err != nil {
		logger.Errorw("token_revoke_failed", "user_id", claims.UserID, "error", err)
		return err
	}
	return nil
}

func isTokenRevoked(ctx context.Context, blacklist TokenBlacklist, tokenString string) (bool, error) {
	if blacklist == nil {
		return false, nil
	}
	return blacklist.IsRevoked(ctx, HashToken(tokenString))
}

func getUserByID(userRepo repository.UserRepository, id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	user, err := userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
