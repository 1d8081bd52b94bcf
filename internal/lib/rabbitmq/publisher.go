// Package rabbitmq publishes fire-and-forget jobs to RabbitMQ. The only
// producer today is the publisher-admin credentials mail job emitted on
// editor creation; delivery is handled by an external mail worker.
package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// MailQueue is the queue consumed by the mail worker.
const MailQueue = "saabal.mail"

// CredentialsMessage carries freshly generated publisher-admin
// credentials to the mail worker.
type CredentialsMessage struct {
	EditorName string `json:"editor_name"`
	AdminEmail string `json:"admin_email"`
	Password   string `json:"password"`
}

// Publisher publishes JSON messages on an AMQP channel.
type Publisher struct {
	ch *amqp.Channel
}

// Connect dials the broker, opens a channel and declares the mail queue.
func Connect(url string) (*Publisher, error) {
	const op = "rabbitmq.Connect"
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := ch.QueueDeclare(MailQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Publisher{ch: ch}, nil
}

// Publish marshals message to JSON and publishes it persistently to the
// given queue via the default exchange.
func (p *Publisher) Publish(queue string, message any) error {
	const op = "rabbitmq.Publish"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = p.ch.Publish(
		"",
		queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
