// Package mailer dispatches outbound account email through a message
// queue. The API process never talks SMTP itself; it publishes a mail
// message and a worker consuming mail_queue renders and delivers it.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

const mailQueue = "mail_queue"

// Message templates understood by the mail worker.
const (
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "password_reset"
)

// Message is the payload published for each outbound email.
type Message struct {
	Template string `json:"template"`
	To       string `json:"to"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
}

// Mailer sends account email. A send that returns nil means the message
// has been handed off durably; callers treat an error as delivery
// failure.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// AMQPMailer publishes mail messages to RabbitMQ.
type AMQPMailer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewAMQPMailer connects to RabbitMQ, opens a channel and declares the
// durable mail queue.
func NewAMQPMailer(cfg Config) (*AMQPMailer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		mailQueue, // name
		true,      // durable (persists messages across broker restarts)
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", mailQueue, err)
	}

	log.Printf("mailer connected, %s declared", mailQueue)

	return &AMQPMailer{conn: conn, channel: ch}, nil
}

// Close closes the RabbitMQ channel and connection.
func (m *AMQPMailer) Close() error {
	var errs []error
	if m.channel != nil {
		if err := m.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing mailer: %v", errs)
	}
	return nil
}

// SendWelcome publishes a welcome message for a new account.
func (m *AMQPMailer) SendWelcome(_ context.Context, to, name string) error {
	return m.publish(Message{Template: TemplateWelcome, To: to, Name: name})
}

// SendPasswordReset publishes a password-reset message carrying the
// plaintext reset URL. The token is never stored in plaintext anywhere
// else.
func (m *AMQPMailer) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	return m.publish(Message{Template: TemplatePasswordReset, To: to, Name: name, URL: resetURL})
}

func (m *AMQPMailer) publish(msg Message) error {
	if m.channel == nil {
		return fmt.Errorf("mailer channel is not available")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail message: %w", err)
	}

	err = m.channel.Publish(
		"",        // exchange: default
		mailQueue, // routing key: the queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish mail message: %w", err)
	}
	return nil
}

// ConsumeMail starts a goroutine delivering queued mail messages to the
// handler. Messages are acked on success and requeued on error.
func (m *AMQPMailer) ConsumeMail(handler func(msg Message) error) error {
	if m.channel == nil {
		return fmt.Errorf("mailer channel is not available")
	}

	deliveries, err := m.channel.Consume(
		mailQueue, // queue
		"",        // consumer tag
		false,     // auto-ack: off, ack manually after handling
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register mail consumer: %w", err)
	}

	go func() {
		for d := range deliveries {
			handleDelivery(d, handler)
		}
	}()

	return nil
}

// handleDelivery decodes one queued message and settles it: ack on
// success, drop malformed payloads, requeue handler failures.
func handleDelivery(d amqp.Delivery, handler func(msg Message) error) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("discarding malformed mail message %d: %v", d.DeliveryTag, err)
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Printf("error nacking message %d: %v", d.DeliveryTag, nackErr)
		}
		return
	}
	if err := handler(msg); err != nil {
		log.Printf("error handling mail message %d: %v", d.DeliveryTag, err)
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Printf("error nacking message %d: %v", d.DeliveryTag, nackErr)
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Printf("error acking message %d: %v", d.DeliveryTag, ackErr)
	}
}

// LogMailer is a no-op Mailer that only logs, used in development when
// no broker is reachable. It never logs reset URLs.
type LogMailer struct{}

func (LogMailer) SendWelcome(_ context.Context, to, _ string) error {
	log.Printf("mailer (noop): welcome mail to %s", to)
	return nil
}

func (LogMailer) SendPasswordReset(_ context.Context, to, _, _ string) error {
	log.Printf("mailer (noop): password reset mail to %s", to)
	return nil
}
