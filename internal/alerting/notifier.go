package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"brainrot-feed/internal/feed"
)

// Notification 封装一次命中的记录。
type Notification struct {
	Feed       string
	LocatorKey string
	Record     feed.Record
	Value      decimal.NullDecimal
	Threshold  decimal.NullDecimal
	Keyword    string
	Simulated  bool
}

// Notifier 定义告警输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 告警器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false")
		}
	}

	n.logger.Info().
		Str("feed", note.Feed).
		Str("brainrot_name", note.Record.Name).
		Bool("simulated", note.Simulated).
		Msg("告警已发送 (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	key := note.LocatorKey
	if key == "" {
		key = feed.LocatorJobID
	}

	builder := strings.Builder{}
	if note.Simulated {
		builder.WriteString("[Brainrot Alert - simulated]\n")
	} else {
		builder.WriteString("[Brainrot Alert]\n")
	}
	builder.WriteString(fmt.Sprintf("Feed: %s\n", note.Feed))
	builder.WriteString(fmt.Sprintf("Name: %s\n", note.Record.Name))
	builder.WriteString(fmt.Sprintf("Money per sec: %s", note.Record.Rate))
	if note.Value.Valid {
		builder.WriteString(fmt.Sprintf(" (%s)", note.Value.Decimal.StringFixed(0)))
	}
	builder.WriteString("\n")
	if note.Threshold.Valid {
		builder.WriteString(fmt.Sprintf("Threshold: > %s\n", note.Threshold.Decimal.StringFixed(0)))
	}
	if note.Keyword != "" {
		builder.WriteString(fmt.Sprintf("Whitelisted: %s\n", note.Keyword))
	}
	if !note.Record.ObservedAt.IsZero() {
		builder.WriteString(fmt.Sprintf("Seen: %s UTC\n", note.Record.ObservedAt.UTC().Format(time.RFC3339)))
	}
	if note.Record.Source != "" {
		builder.WriteString(fmt.Sprintf("Source: %s\n", note.Record.Source))
	}
	builder.WriteString(fmt.Sprintf("%s: %s", key, note.Record.Locator))
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
