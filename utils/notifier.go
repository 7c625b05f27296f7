package utils

import (
	"context"
	"fmt"
	"time"

	"learnhub/database"
	"learnhub/models"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var notificationDeliveries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "learnhub",
		Name:      "notification_deliveries_total",
		Help:      "Notification deliveries by channel and result",
	},
	[]string{"channel", "result"},
)

func countDelivery(channel string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notificationDeliveries.WithLabelValues(channel, result).Inc()
}

// WebhookNotifier posts JSON events to an external URL. A zero URL disables it.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	client := resty.New().
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "learnhub-notifier")
	return &WebhookNotifier{client: client, url: url}
}

func (n *WebhookNotifier) Enabled() bool {
	return n != nil && n.url != ""
}

// Post sends {"event", "data", "sent_at"} to the webhook.
func (n *WebhookNotifier) Post(ctx context.Context, event string, data interface{}) error {
	if !n.Enabled() {
		return nil
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"event":   event,
			"data":    data,
			"sent_at": time.Now().UTC(),
		}).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", event, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook %s: status %d", event, resp.StatusCode())
	}
	return nil
}

// Webhook is the global admin webhook notifier.
var Webhook = NewWebhookNotifier("")

func InitNotifier(webhookURL string) {
	Webhook = NewWebhookNotifier(webhookURL)
}

// NotifyAdminOfContact stores an in-app notification for admin, emails them and
// posts the contact to the webhook. Every step is best-effort.
func NotifyAdminOfContact(admin *models.User, contact *models.Contact) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger := log.With().Uint("contact_id", contact.ID).Uint("admin_id", admin.ID).Logger()

	if database.Notifications != nil {
		err := database.Notifications.CreateNotification(ctx, &models.Notification{
			UserID:       admin.ID,
			Title:        "New Contact Message",
			Message:      fmt.Sprintf("New message from %s: %s", contact.Name, contact.Subject),
			Type:         models.NotificationContact,
			RelatedID:    contact.ID,
			RelatedModel: "Contact",
		})
		countDelivery("in_app", err)
		if err != nil {
			logger.Error().Err(err).Msg("Error creating notification")
		}
	}

	err := SendContactEmail(admin, contact)
	countDelivery("email", err)

	if Webhook.Enabled() {
		err := Webhook.Post(ctx, "contact.created", contact)
		countDelivery("webhook", err)
		if err != nil {
			logger.Error().Err(err).Msg("Error posting contact webhook")
		}
	}
}
