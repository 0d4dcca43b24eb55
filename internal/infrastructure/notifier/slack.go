package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/slack-go/slack"
)

// Slack posts to an incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
}

func NewSlack(webhookURL string, timeout time.Duration) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Slack) Notify(ctx context.Context, report *domain.RunReport) error {
	msg := &slack.WebhookMessage{Text: Message(report)}

	if err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.client, msg); err != nil {
		return fmt.Errorf("failed to post slack webhook: %w", err)
	}

	return nil
}
