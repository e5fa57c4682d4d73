package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/consult-intake/internal/entity"
)

// RedeliveryMessage carries a payload whose webhook delivery failed. The payload is
// the exact document of the first attempt, so retries post identical content.
type RedeliveryMessage struct {
	SubmissionID  string                `json:"submission_id"`
	Attempt       int                   `json:"attempt"`
	Payload       entity.WebhookPayload `json:"payload"`
	FirstFailedAt time.Time             `json:"first_failed_at"`
	LastError     string                `json:"last_error,omitempty"`
}

type RabbitMQProducer struct {
	Ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

// PublishRedelivery parks the message in the delay queue. When delay is zero the
// message goes straight to the redelivery exchange.
func (p *RabbitMQProducer) PublishRedelivery(ctx context.Context, msg RedeliveryMessage, delay time.Duration) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal redelivery message: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.SubmissionID + ":" + strconv.Itoa(msg.Attempt),
		Timestamp:    time.Now(),
	}

	exchange, key := ExchangeName, RoutingKey
	if delay > 0 {
		exchange, key = "", DelayQueue
		publishing.Expiration = strconv.FormatInt(delay.Milliseconds(), 10)
	}

	if err := p.Ch.PublishWithContext(ctx, exchange, key, false, false, publishing); err != nil {
		return fmt.Errorf("publish redelivery for %s: %w", msg.SubmissionID, err)
	}
	return nil
}
