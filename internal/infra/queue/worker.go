package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Redeliverer settles one redelivery message. A nil error acks it; an error sends it
// to the dead-letter queue.
type Redeliverer interface {
	Execute(ctx context.Context, msg RedeliveryMessage) error
}

type Worker struct {
	Channel *amqp.Channel
	Handler Redeliverer
	Log     *zap.Logger
}

func NewWorker(ch *amqp.Channel, handler Redeliverer, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		Channel: ch,
		Handler: handler,
		Log:     log.Named("redelivery_worker"),
	}
}

// Start consumes the redelivery queue until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.Channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := w.Channel.Consume(
		RedeliveryQueue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Log.Info("waiting for redeliveries", zap.String("queue", RedeliveryQueue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			if w.handle(ctx, d.Body) {
				d.Ack(false)
			} else {
				d.Nack(false, false)
			}
		}
	}
}

// handle reports whether the delivery should be acked.
func (w *Worker) handle(ctx context.Context, body []byte) bool {
	var msg RedeliveryMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		w.Log.Error("malformed redelivery message", zap.Error(err))
		return false
	}
	if msg.SubmissionID == "" {
		w.Log.Error("redelivery message without submission id")
		return false
	}

	if err := w.Handler.Execute(ctx, msg); err != nil {
		w.Log.Error("redelivery dead-lettered",
			zap.String("submission_id", msg.SubmissionID),
			zap.Int("attempt", msg.Attempt),
			zap.Error(err))
		return false
	}
	return true
}
