package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"assignment-helper/internal/metrics"
)

// Publisher is satisfied by rabbitmq.Publisher.
type Publisher interface {
	Publish(ctx context.Context, queueName string, event interface{}) error
}

// BrokerNotifier publishes upload events to a message queue.
type BrokerNotifier struct {
	publisher Publisher
	queueName string
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
	inflight
}

func NewBrokerNotifier(publisher Publisher, queueName string, logger *zap.Logger, m *metrics.Metrics) *BrokerNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrokerNotifier{
		publisher: publisher,
		queueName: queueName,
		timeout:   5 * time.Second,
		logger:    logger,
		metrics:   m,
	}
}

func (n *BrokerNotifier) AssignmentUploaded(event AssignmentUploaded) {
	n.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		err := n.publisher.Publish(ctx, n.queueName, event)
		n.metrics.RecordEventPublish(err)
		if err != nil {
			n.logger.Warn("publish assignment event failed",
				zap.String("queue", n.queueName),
				zap.Uint("assignment_id", event.AssignmentID),
				zap.Error(err),
			)
		}
	})
}
