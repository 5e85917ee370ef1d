// Package queue contains the background consumer that listens to the mail
// queue and delivers each message through the configured mailer.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/mailer"
)

// MailConsumer drains the mail queue.
type MailConsumer struct {
	URL    string
	Queue  string
	Sender mailer.Sender
	Log    *slog.Logger
}

// Start connects to RabbitMQ, declares the queue (durable) and consumes
// messages until ctx is cancelled.  Connection failures are retried with
// exponential backoff; a message that cannot be handled is rejected without
// requeue so one bad payload cannot wedge the queue.
func (m *MailConsumer) Start(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(m.URL)
		if err != nil {
			m.Log.Warn("mail-consumer: failed to dial broker", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = m.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.Log.Warn("mail-consumer: consume loop ended; reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (m *MailConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		m.Log.Warn("mail-consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(m.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, m.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := m.Handle(ctx, d.Body); err != nil {
				m.Log.Error("mail-consumer: handle message failed", "error", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one queued message, renders it and sends it.
func (m *MailConsumer) Handle(ctx context.Context, body []byte) error {
	var ev MailRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Recipient == "" {
		return errors.New("message has no recipient")
	}
	msg, err := mailer.Render(ev.TemplateID, ev.Recipient, ev.Payload)
	if err != nil {
		return err
	}
	id, err := m.Sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send %s: %w", ev.TemplateID, err)
	}
	m.Log.Info("mail delivered", "template", ev.TemplateID, "message_id", id)
	return nil
}
