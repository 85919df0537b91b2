package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donaldgifford/concur-accruals/internal/metrics"
	domain "github.com/donaldgifford/concur-accruals/pkg/types"
)

const (
	colorRed    = 0xE74C3C // auth_rejected
	colorOrange = 0xE67E22 // refresh_failed
	colorGreen  = 0x2ECC71 // recovered

	maxDescription = 1024
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	username   string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		username:   "concur-accruals",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// WithUsername overrides the webhook display name.
func WithUsername(name string) DiscordOption {
	return func(d *DiscordNotifier) {
		if name != "" {
			d.username = name
		}
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendCredentialAlert posts alert as a single Discord embed.
func (d *DiscordNotifier) SendCredentialAlert(ctx context.Context, alert *domain.CredentialAlert) error {
	if alert == nil {
		return errors.New("nil credential alert")
	}

	start := time.Now()
	err := d.post(ctx, discordWebhookPayload{
		Username: d.username,
		Embeds:   []discordEmbed{buildEmbed(alert)},
	})
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return err
	}
	metrics.AlertsFiredTotal.Inc()
	return nil
}

func buildEmbed(alert *domain.CredentialAlert) discordEmbed {
	title, color := "Concur credentials need attention", colorOrange
	switch alert.Kind {
	case KindAuthRejected:
		title, color = "Concur refresh token rejected", colorRed
	case KindRecovered:
		title, color = "Concur token refresh recovered", colorGreen
	}

	desc := alert.Message
	if len(desc) > maxDescription {
		desc = desc[:maxDescription-3] + "..."
	}

	embed := discordEmbed{
		Title:       title,
		Color:       color,
		Description: desc,
		Fields: []discordEmbedField{
			{Name: "Kind", Value: alert.Kind, Inline: true},
		},
	}
	if alert.TokenURL != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{Name: "Token URL", Value: alert.TokenURL})
	}
	if !alert.OccurredAt.IsZero() {
		embed.Timestamp = alert.OccurredAt.UTC().Format(time.RFC3339)
	}
	return embed
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
