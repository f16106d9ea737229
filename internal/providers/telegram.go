package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"sensor-dashboard/internal/config"
	"sensor-dashboard/internal/logging"
	"sensor-dashboard/internal/models"
	"sensor-dashboard/internal/utils"
)

// Telegram delivers alerts to one chat through a bot.
type Telegram struct {
	bot     *bot.Bot
	chatID  int64
	limiter *rate.Limiter
	logger  *logging.Logger
	retries int
	delay   time.Duration
}

// NewTelegram builds the provider from config. Extra bot options (for
// example bot.WithServerURL) are passed through.
func NewTelegram(cfg config.Config, logger *logging.Logger, opts ...bot.Option) (*Telegram, error) {
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("missing telegram bot token")
	}
	if cfg.Telegram.ChatID == 0 {
		return nil, fmt.Errorf("missing telegram chat id")
	}
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(cfg.Telegram.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	burst := int(cfg.Telegram.RateLimit)
	if burst < 1 {
		burst = 1
	}
	return &Telegram{
		bot:     b,
		chatID:  cfg.Telegram.ChatID,
		limiter: rate.NewLimiter(rate.Limit(cfg.Telegram.RateLimit), burst),
		logger:  logger,
		retries: 3,
		delay:   time.Second,
	}, nil
}

// Send waits for the rate limiter, then posts the alert with retries.
func (t *Telegram) Send(ctx context.Context, a models.Alert) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	text := FormatAlert(a)
	return utils.Retry(ctx, t.logger, t.retries, t.delay, func() error {
		params := &bot.SendMessageParams{
			ChatID:    t.chatID,
			Text:      text,
			ParseMode: "Markdown",
		}
		if _, err := t.bot.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", t.chatID, err)
		}
		return nil
	})
}

// FormatAlert renders an alert as a Markdown message.
func FormatAlert(a models.Alert) string {
	return fmt.Sprintf(
		"*%s*\n%s\n\n"+
			"*Page:* %s\n"+
			"*Metric:* %s\n"+
			"*Value:* %.2f\n"+
			"*Time:* %s",
		a.Subject,
		a.Body,
		a.Variant,
		a.Metric,
		a.Value,
		a.Timestamp.Format(time.RFC3339),
	)
}
