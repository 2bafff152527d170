package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/types"
)

const defaultRequestTimeout = 10 * time.Second

type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient authenticates the bot token against the Bot API.
func NewClient(cfg *config.TelegramConfig) (*Client, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, &http.Client{Timeout: defaultRequestTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate telegram bot: %w", mapError(err))
	}
	return &Client{bot: bot}, nil
}

func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// Send delivers an HTML message. The destination is either a numeric chat id
// or a public channel username such as @staking_alerts.
func (c *Client) Send(ctx context.Context, destination, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := newMessage(destination, text)
	if err != nil {
		return err
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", destination, mapError(err))
	}
	return nil
}

func newMessage(destination, text string) (tgbotapi.MessageConfig, error) {
	if chatID, err := strconv.ParseInt(destination, 10, 64); err == nil {
		return tgbotapi.NewMessage(chatID, text), nil
	}
	if strings.HasPrefix(destination, "@") && len(destination) > 1 {
		return tgbotapi.NewMessageToChannel(destination, text), nil
	}
	return tgbotapi.MessageConfig{}, fmt.Errorf("invalid telegram destination %q", destination)
}

// mapError converts Bot API throttling into a RateLimitError carrying the
// suggested wait.
func mapError(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusTooManyRequests {
		return err
	}
	return &types.RateLimitError{
		RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
		Message:    apiErr.Message,
	}
}
