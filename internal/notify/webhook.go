package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"assignment-helper/internal/metrics"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// WebhookNotifier posts upload events to the workflow engine's webhook.
type WebhookNotifier struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
	inflight
}

func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookNotifier{
		url:        url,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
	}
}

func (n *WebhookNotifier) AssignmentUploaded(event AssignmentUploaded) {
	n.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		n.deliver(ctx, event)
	})
}

func (n *WebhookNotifier) deliver(ctx context.Context, event AssignmentUploaded) {
	if n.url == "" {
		n.metrics.RecordWebhook(OutcomeSkipped)
		return
	}
	if err := n.Send(ctx, event); err != nil {
		n.metrics.RecordWebhook(OutcomeFailure)
		n.logger.Warn("workflow webhook failed",
			zap.Uint("assignment_id", event.AssignmentID),
			zap.Error(err),
		)
		return
	}
	n.metrics.RecordWebhook(OutcomeSuccess)
	n.logger.Info("workflow webhook delivered", zap.Uint("assignment_id", event.AssignmentID))
}

// Send performs one synchronous delivery. Any non-2xx status is an error.
func (n *WebhookNotifier) Send(ctx context.Context, event AssignmentUploaded) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook payload failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook response status %d", resp.StatusCode)
	}
	return nil
}
