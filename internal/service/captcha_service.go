package service

import (
	"strings"
	"time"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"

	"github.com/mojocn/base64Captcha"
)

const captchaCharset = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

// CaptchaVerifyPayload 验证码校验请求载荷
type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 验证码服务，按场景开关决定是否校验
type CaptchaService struct {
	setting CaptchaSetting
	store   base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	return NewCaptchaServiceWithStore(cfg, nil)
}

// NewCaptchaServiceWithStore 使用指定存储创建验证码服务，store 为 nil 时使用内存存储
func NewCaptchaServiceWithStore(cfg config.CaptchaConfig, store base64Captcha.Store) *CaptchaService {
	setting := CaptchaSettingFromConfig(cfg)
	if store == nil {
		store = base64Captcha.NewMemoryStore(setting.Image.MaxStore, secondsDuration(setting.Image.ExpireSeconds))
	}
	return &CaptchaService{setting: setting, store: store}
}

// Setting 当前验证码设置
func (s *CaptchaService) Setting() CaptchaSetting {
	if s == nil {
		return CaptchaSettingFromConfig(config.CaptchaConfig{})
	}
	return s.setting
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	if s == nil || s.setting.Provider != constants.CaptchaProviderImage {
		return nil, ErrCaptchaConfigInvalid
	}
	image := s.setting.Image
	driver := base64Captcha.NewDriverString(
		image.Height,
		image.Width,
		image.NoiseCount,
		image.ShowLine,
		image.Length,
		captchaCharset,
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, s.store)
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 按场景校验验证码，未开启的场景直接放行
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload) error {
	if s == nil || !s.setting.IsSceneEnabled(scene) {
		return nil
	}
	captchaID := strings.TrimSpace(payload.CaptchaID)
	captchaCode := strings.TrimSpace(payload.CaptchaCode)
	if captchaID == "" || captchaCode == "" {
		return ErrCaptchaRequired
	}
	if !s.store.Verify(captchaID, captchaCode, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func secondsDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
