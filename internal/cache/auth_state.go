package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// UserAuthState 账号鉴权快照，顾客与员工共用
// TokenInvalidBefore 为 Unix 秒，0 表示未设置
type UserAuthState struct {
	UserID             uint   `json:"user_id"`
	Role               string `json:"role"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	UpdatedAt          int64  `json:"updated_at"`
}

// Active 账号是否可用
func (s *UserAuthState) Active() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), constants.UserStatusActive)
}

// IsStaff 员工或管理员
func (s *UserAuthState) IsStaff() bool {
	return s.Role == constants.RoleEmployee || s.Role == constants.RoleAdmin
}

// AcceptsToken token 版本一致且签发时间不早于失效点
func (s *UserAuthState) AcceptsToken(version uint64, issuedAt *time.Time) bool {
	if version != s.TokenVersion {
		return false
	}
	if s.TokenInvalidBefore <= 0 {
		return true
	}
	return issuedAt != nil && issuedAt.Unix() >= s.TokenInvalidBefore
}

func userAuthStateKey(userID uint) string {
	return "auth:user:" + strconv.FormatUint(uint64(userID), 10)
}

// BuildUserAuthState 从用户模型构建鉴权快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	state := &UserAuthState{
		UserID:       user.ID,
		Role:         user.Role,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
	if user.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = user.TokenInvalidBefore.Unix()
	}
	return state
}

// LoadUserAuthState 先读缓存，未命中时通过 load 回源并回写
func LoadUserAuthState(ctx context.Context, userID uint, load func(uint) (*models.User, error)) (*UserAuthState, error) {
	if userID == 0 {
		return nil, nil
	}
	var cached UserAuthState
	if hit, err := GetJSON(ctx, userAuthStateKey(userID), &cached); err == nil && hit {
		return &cached, nil
	}
	user, err := load(userID)
	if err != nil || user == nil {
		return nil, err
	}
	state := BuildUserAuthState(user)
	_ = SetUserAuthState(ctx, state)
	return state, nil
}

// SetUserAuthState 写入用户鉴权快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 删除用户鉴权快照，账号状态或角色变更后调用
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}
