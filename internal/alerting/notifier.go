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

	"github.com/Copubah/jkia-aircraft-notifier/internal/detection"
)

// Notification carries one detected arrival to the outbound channel.
type Notification struct {
	Arrival detection.Arrival
}

// Notifier delivers landing notifications. Delivery is best-effort,
// at-least-once; deduplication happens at the ledger, not here.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
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

// Notify sends one landing notification via the sendMessage API.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note.Arrival),
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
		return fmt.Errorf("telegram unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().
		Str("callsign", note.Arrival.Callsign).
		Bool("on_ground", note.Arrival.OnGround).
		Msg("landing notification sent")
	return nil
}

// Subject returns the notification subject line.
func Subject() string {
	return "Aircraft Landing Alert - JKIA"
}

func renderMessage(a detection.Arrival) string {
	status := "on ground"
	if !a.OnGround && a.Altitude != nil {
		status = fmt.Sprintf("at %.0fm altitude", *a.Altitude)
	}

	velocity := "unknown"
	if a.Velocity != nil {
		velocity = fmt.Sprintf("%.1f m/s", *a.Velocity)
	}

	builder := strings.Builder{}
	builder.WriteString(Subject() + "\n\n")
	builder.WriteString(fmt.Sprintf("Flight: %s\n", a.Callsign))
	builder.WriteString("Location: Near Jomo Kenyatta International Airport (JKIA)\n")
	builder.WriteString(fmt.Sprintf("Status: Aircraft %s\n", status))
	builder.WriteString(fmt.Sprintf("Velocity: %s\n", velocity))
	builder.WriteString(fmt.Sprintf("Detection Time: %s UTC\n", a.DetectedAt.UTC().Format("15:04")))
	builder.WriteString("\nThis aircraft appears to have recently landed or is landing at JKIA.")
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
