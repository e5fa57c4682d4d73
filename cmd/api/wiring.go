package main

import (
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/consult-intake/internal/infra/queue"
)

func rabbitMQConn(r *queue.RabbitMQ) *amqp.Connection {
	if r == nil {
		return nil
	}
	return r.Conn
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
