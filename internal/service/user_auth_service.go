package service

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/i18n"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,60}$`)

// RegisterInput 顾客注册参数
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Locale   string
}

// UserAuthService 顾客认证服务
type UserAuthService struct {
	cfg       *config.Config
	userRepo  repository.UserRepository
	blacklist TokenBlacklist
	clock     Clock
}

// NewUserAuthService 创建顾客认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, blacklist TokenBlacklist) *UserAuthService {
	return &UserAuthService{
		cfg:       cfg,
		userRepo:  userRepo,
		blacklist: blacklist,
		clock:     SystemClock,
	}
}

// GenerateUserJWT 生成顾客 Token，expireHours<=0 时使用默认有效期
func (s *UserAuthService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	resolvedHours := expireHours
	if resolvedHours <= 0 {
		resolvedHours = resolveUserJWTExpireHours(s.cfg.UserJWT)
	}
	return signJWT(s.cfg.UserJWT.SecretKey, user, s.clock.Now(), time.Duration(resolvedHours)*time.Hour)
}

// ParseUserJWT 解析顾客 Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*JWTClaims, error) {
	return parseJWT(s.cfg.UserJWT.SecretKey, tokenString)
}

// Register 顾客注册，成功后直接登录
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	username := strings.TrimSpace(input.Username)
	if !usernamePattern.MatchString(username) {
		return nil, "", time.Time{}, ErrInvalidUsername
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}
	exist, err = s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrUsernameExists
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = username
	}
	now := s.clock.Now()
	user := &models.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         constants.RoleUser,
		Locale:       i18n.NormalizeLocale(input.Locale),
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "username", user.Username)

	token, expiresAt, err := s.GenerateUserJWT(user, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := touchLastLogin(s.userRepo, user, now); err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Login 顾客登录（用户名或邮箱）
func (s *UserAuthService) Login(login, password string, rememberMe bool) (*models.User, string, time.Time, error) {
	user, err := authenticate(s.userRepo, login, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	expireHours := resolveUserJWTExpireHours(s.cfg.UserJWT)
	if rememberMe {
		expireHours = resolveRememberMeExpireHours(s.cfg.UserJWT)
	}
	token, expiresAt, err := s.GenerateUserJWT(user, expireHours)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := touchLastLogin(s.userRepo, user, s.clock.Now()); err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Refresh 用未过期且未注销的 Token 换取新 Token，旧 Token 随即注销
func (s *UserAuthService) Refresh(ctx context.Context, tokenString string) (*models.User, string, time.Time, error) {
	claims, err := s.ParseUserJWT(tokenString)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidToken
	}
	revoked, err := isTokenRevoked(ctx, s.blacklist, tokenString)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if revoked {
		return nil, "", time.Time{}, ErrTokenRevoked
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil || user.TokenVersion != claims.TokenVersion {
		return nil, "", time.Time{}, ErrInvalidToken
	}
	if user.Status != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}

	token, expiresAt, err := s.GenerateUserJWT(user, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := revokeToken(ctx, s.blacklist, tokenString, claims); err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Logout 注销顾客 Token
func (s *UserAuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.ParseUserJWT(tokenString)
	if err != nil {
		return ErrInvalidToken
	}
	return revokeToken(ctx, s.blacklist, tokenString, claims)
}

// IsTokenRevoked Token 是否已注销
func (s *UserAuthService) IsTokenRevoked(ctx context.Context, tokenString string) (bool, error) {
	return isTokenRevoked(ctx, s.blacklist, tokenString)
}

// GetUserByID 获取用户信息
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	return getUserByID(s.userRepo, id)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func resolveRememberMeExpireHours(cfg config.JWTConfig) int {
	if cfg.RememberMeExpireHours <= 0 {
		return resolveUserJWTExpireHours(cfg)
	}
	return cfg.RememberMeExpireHours
}
