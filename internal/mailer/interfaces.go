package mailer

import "context"

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers rendered messages.  It returns the provider message id
// when one is available.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
