package mailer

import (
	"context"
	"log/slog"
)

// Dev logs messages instead of sending them.  It is used when no MailerSend
// key is configured, so local sign-in links show up in the server log.
type Dev struct {
	log *slog.Logger
}

func NewDev(log *slog.Logger) *Dev {
	if log == nil {
		log = slog.Default()
	}
	return &Dev{log: log}
}

func (d *Dev) Send(ctx context.Context, msg Message) (string, error) {
	d.log.InfoContext(ctx, "[dev mail]",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return "", nil
}
