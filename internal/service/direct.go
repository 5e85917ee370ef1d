package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/mailer"
)

// DirectDispatcher renders and sends mail in a background goroutine of the
// API process.  It is used when the queue is disabled.
type DirectDispatcher struct {
	Sender  mailer.Sender
	Log     *slog.Logger
	Timeout time.Duration
}

// Send validates the template synchronously and delivers asynchronously, so
// a slow provider never holds up the request.
func (d *DirectDispatcher) Send(ctx context.Context, recipient, templateID string, payload map[string]any) error {
	msg, err := mailer.Render(templateID, recipient, payload)
	if err != nil {
		return err
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if _, err := d.Sender.Send(sendCtx, msg); err != nil {
			d.Log.ErrorContext(sendCtx, "mail delivery failed", "template", templateID, "error", err)
		}
	}()
	return nil
}
