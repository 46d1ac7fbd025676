package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"domain-hunter/internal/config"
	"domain-hunter/internal/logger"

	"go.uber.org/zap"
)

// Notifier interface for different notification channels
type Notifier interface {
	Send(event, domain, detail string) error
}

// NotifyService fans workflow milestones out to the enabled channels. It
// implements the workflow package's Notifier.
type NotifyService struct {
	notifiers []Notifier
	log       logger.Logger
}

// NewNotifyService creates a new notification service
func NewNotifyService(cfg *config.NotificationsConfig, log logger.Logger) *NotifyService {
	service := &NotifyService{log: log}

	if cfg.Webhook.Enabled {
		service.notifiers = append(service.notifiers, NewWebhookNotifier(&cfg.Webhook))
	}
	if cfg.Telegram.Enabled {
		service.notifiers = append(service.notifiers, NewTelegramNotifier(&cfg.Telegram))
	}

	return service
}

// DomainPurchased announces a completed purchase.
func (s *NotifyService) DomainPurchased(name string) {
	s.send("domain_purchased", name, "")
}

// ProfileCompleted announces a successfully generated profile.
func (s *NotifyService) ProfileCompleted(name string) {
	s.send("profile_completed", name, "")
}

// ProfileFailed announces a failed profile generation.
func (s *NotifyService) ProfileFailed(name, reason string) {
	s.send("profile_failed", name, reason)
}

func (s *NotifyService) send(event, domain, detail string) {
	for _, n := range s.notifiers {
		if err := n.Send(event, domain, detail); err != nil {
			s.log.Warn("notification failed",
				zap.String("event", event),
				zap.String("domain", domain),
				zap.Error(err))
		}
	}
}

// WebhookNotifier posts events as JSON to a configured URL
type WebhookNotifier struct {
	config *config.WebhookConfig
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(cfg *config.WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{config: cfg}
}

// Send posts the event payload to the webhook URL
func (n *WebhookNotifier) Send(event, domain, detail string) error {
	payload, err := json.Marshal(map[string]string{
		"event":  event,
		"domain": domain,
		"detail": detail,
		"time":   time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(n.config.URL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// TelegramNotifier sends events through the Telegram bot API
type TelegramNotifier struct {
	config *config.TelegramConfig
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(cfg *config.TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{config: cfg}
}

// Send delivers the event as a Telegram message
func (n *TelegramNotifier) Send(event, domain, detail string) error {
	text := fmt.Sprintf("Domain Hunter: %s - %s", event, domain)
	if detail != "" {
		text += "\n" + detail
	}

	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.config.BotToken)

	params := url.Values{}
	params.Add("chat_id", n.config.ChatID)
	params.Add("text", text)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.PostForm(apiURL, params)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}
