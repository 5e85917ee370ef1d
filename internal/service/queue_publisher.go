// Package service provides the email dispatchers used by the auth and
// cohost flows.  Both implement auth.EmailDispatcher.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/sudharsan3110/RSVP-2-sub001/internal/queue"
)

// QueueDispatcher publishes MailRequestedEvents to RabbitMQ.  It dials per
// message, which keeps it free of connection state; mail volume is low
// (sign-in links and cohost invitations).
type QueueDispatcher struct {
	URL   string
	Queue string
	Log   *slog.Logger
}

// Send publishes a persistent message to the mail queue.  Errors are logged
// and returned; the caller decides whether they matter.
func (p *QueueDispatcher) Send(ctx context.Context, recipient, templateID string, payload map[string]any) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.ErrorContext(ctx, "rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.ErrorContext(ctx, "rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		p.Log.ErrorContext(ctx, "rabbitmq: queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(q.MailRequestedEvent{
		Recipient:   recipient,
		TemplateID:  templateID,
		Payload:     payload,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal mail event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		p.Log.ErrorContext(ctx, "rabbitmq: publish failed", "error", err)
		return err
	}
	return nil
}
