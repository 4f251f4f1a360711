package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/config"

	"github.com/go-telegram/bot"
)

const telegramMaxMessageLen = 4096

// TelegramSender 员工群通知发送
type TelegramSender interface {
	Send(ctx context.Context, text string) error
}

// TelegramNotifyService 通过 Telegram Bot 推送员工通知
type TelegramNotifyService struct {
	bot     *bot.Bot
	chatID  int64
	timeout time.Duration
}

// NewTelegramNotifyService 创建 Telegram 通知服务，未启用时返回 nil
func NewTelegramNotifyService(cfg config.TelegramNotifyConfig) (*TelegramNotifyService, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	token := strings.TrimSpace(cfg.BotToken)
	if token == "" || cfg.ChatID == 0 {
		return nil, errors.New("telegram bot_token 与 chat_id 不能为空")
	}
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramNotifyService{bot: b, chatID: cfg.ChatID, timeout: timeout}, nil
}

// Send 发送纯文本消息，超长时截断
func (s *TelegramNotifyService) Send(ctx context.Context, text string) error {
	if s == nil || s.bot == nil {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if runes := []rune(text); len(runes) > telegramMaxMessageLen {
		text = string(runes[:telegramMaxMessageLen-3]) + "..."
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: s.chatID,
		Text:   text,
	})
	return err
}
