package service

import (
	"strings"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"
)

// CaptchaSetting 验证码运行配置（已归一化）
type CaptchaSetting struct {
	Provider string              `json:"provider"`
	Scenes   CaptchaSceneSetting `json:"scenes"`
	Image    CaptchaImageSetting `json:"image"`
}

// CaptchaSceneSetting 场景开关
type CaptchaSceneSetting struct {
	Login      bool `json:"login"`
	Register   bool `json:"register"`
	StaffLogin bool `json:"staff_login"`
}

// CaptchaImageSetting 图片验证码参数
type CaptchaImageSetting struct {
	Length        int `json:"length"`
	Width         int `json:"width"`
	Height        int `json:"height"`
	NoiseCount    int `json:"noise_count"`
	ShowLine      int `json:"show_line"`
	ExpireSeconds int `json:"expire_seconds"`
	MaxStore      int `json:"max_store"`
}

// CaptchaPublicSetting 下发给前端的验证码配置
type CaptchaPublicSetting struct {
	Provider string              `json:"provider"`
	Scenes   CaptchaSceneSetting `json:"scenes"`
}

// CaptchaSettingFromConfig 由配置生成验证码设置，越界参数回退默认值
func CaptchaSettingFromConfig(cfg config.CaptchaConfig) CaptchaSetting {
	setting := CaptchaSetting{
		Provider: strings.ToLower(strings.TrimSpace(cfg.Provider)),
		Scenes: CaptchaSceneSetting{
			Login:      cfg.Scenes.Login,
			Register:   cfg.Scenes.Register,
			StaffLogin: cfg.Scenes.StaffLogin,
		},
		Image: CaptchaImageSetting{
			Length:        clampInt(cfg.Image.Length, 4, 8, 5),
			Width:         clampInt(cfg.Image.Width, 80, 480, 240),
			Height:        clampInt(cfg.Image.Height, 32, 240, 80),
			NoiseCount:    clampInt(cfg.Image.NoiseCount, 0, 20, 2),
			ShowLine:      clampInt(cfg.Image.ShowLine, 0, 20, 2),
			ExpireSeconds: clampInt(cfg.Image.ExpireSeconds, 30, 3600, 300),
			MaxStore:      clampInt(cfg.Image.MaxStore, 100, 100000, 10240),
		},
	}
	if setting.Provider != constants.CaptchaProviderImage {
		setting.Provider = constants.CaptchaProviderNone
	}
	return setting
}

// IsSceneEnabled 场景是否需要验证码
func (s CaptchaSetting) IsSceneEnabled(scene string) bool {
	if s.Provider == constants.CaptchaProviderNone {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scene)) {
	case constants.CaptchaSceneLogin:
		return s.Scenes.Login
	case constants.CaptchaSceneRegister:
		return s.Scenes.Register
	case constants.CaptchaSceneStaffLogin:
		return s.Scenes.StaffLogin
	default:
		return false
	}
}

// Public 可公开下发的部分
func (s CaptchaSetting) Public() CaptchaPublicSetting {
	return CaptchaPublicSetting{Provider: s.Provider, Scenes: s.Scenes}
}

func clampInt(value, min, max, fallback int) int {
	if value < min || value > max {
		return fallback
	}
	return value
}
