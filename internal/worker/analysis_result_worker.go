package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"assignment-helper/internal/app"
	"assignment-helper/internal/model"
	"assignment-helper/internal/platform/rabbitmq"
)

const channelName = "amqp"

// retryDelay spaces out redeliveries while storage is failing.
const retryDelay = 2 * time.Second

// AnalysisStore is satisfied by app.IngestionService.
type AnalysisStore interface {
	Store(ctx context.Context, channel string, payload *app.AnalysisPayload) (*model.AnalysisResult, error)
}

type action int

const (
	actionAck action = iota
	actionDrop
	actionRequeue
)

// AnalysisResultWorker consumes workflow results from the queue and stores
// them the same way the HTTP callback does.
type AnalysisResultWorker struct {
	conn      *amqp.Connection
	store     AnalysisStore
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAnalysisResultWorker(conn *amqp.Connection, store AnalysisStore, queueName string, logger *zap.Logger) *AnalysisResultWorker {
	return &AnalysisResultWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *AnalysisResultWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.logger.Warn("analysis result deliveries closed", zap.String("queue", w.queueName))
					return
				}

				switch w.handle(workerCtx, d.Body) {
				case actionAck:
					_ = d.Ack(false)
				case actionDrop:
					_ = d.Nack(false, false)
				case actionRequeue:
					if workerCtx.Err() == nil {
						select {
						case <-workerCtx.Done():
						case <-time.After(retryDelay):
						}
					}
					_ = d.Nack(false, true)
				}
			}
		}
	}()

	w.logger.Info("analysis result worker started", zap.String("queue", w.queueName))
	return nil
}

// handle decides the delivery's fate. Results for unknown assignments and
// payloads without an assignment id are acknowledged: redelivery cannot fix them.
// Storage failures are requeued so the result survives an outage.
func (w *AnalysisResultWorker) handle(ctx context.Context, body []byte) action {
	payload, err := app.DecodeAnalysisPayload(body)
	if err != nil {
		w.logger.Warn("worker decode analysis result failed", zap.Error(err))
		return actionDrop
	}

	_, err = w.store.Store(ctx, channelName, payload)
	switch {
	case err == nil:
		return actionAck
	case errors.Is(err, app.ErrAssignmentNotFound), errors.Is(err, app.ErrInvalidInput):
		w.logger.Warn("worker discarded analysis result", zap.Error(err))
		return actionAck
	case ctx.Err() != nil:
		return actionRequeue
	default:
		w.logger.Error("worker persist analysis result failed, requeueing", zap.Error(err))
		return actionRequeue
	}
}

func (w *AnalysisResultWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
