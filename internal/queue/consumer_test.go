package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/mailer"
)

type recordingSender struct {
	sent []mailer.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg mailer.Message) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.sent = append(r.sent, msg)
	return "msg-1", nil
}

func newConsumer(s mailer.Sender) *MailConsumer {
	return &MailConsumer{Queue: "mail.requested", Sender: s, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestHandleRendersAndSends(t *testing.T) {
	s := &recordingSender{}
	body, _ := json.Marshal(MailRequestedEvent{
		Recipient:  "new@example.com",
		TemplateID: "magic-link",
		Payload:    map[string]any{"url": "http://localhost:3000/auth/verify?token=abc", "ttlMinutes": 10},
	})
	if err := newConsumer(s).Handle(context.Background(), body); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(s.sent))
	}
	if msg := s.sent[0]; msg.To != "new@example.com" || !strings.Contains(msg.Text, "token=abc") {
		t.Fatalf("message = %+v", msg)
	}
}

func TestHandleRejectsBadMessages(t *testing.T) {
	c := newConsumer(&recordingSender{})
	for _, body := range []string{
		`not json`,
		`{"template_id":"magic-link","payload":{"url":"x"}}`,
		`{"recipient":"a@b.co","template_id":"nope"}`,
	} {
		if err := c.Handle(context.Background(), []byte(body)); err == nil {
			t.Fatalf("Handle(%s) accepted a bad message", body)
		}
	}
}

func TestHandleReportsSendFailure(t *testing.T) {
	s := &recordingSender{err: errors.New("provider down")}
	body := []byte(`{"recipient":"a@b.co","template_id":"magic-link","payload":{"url":"http://x"}}`)
	if err := newConsumer(s).Handle(context.Background(), body); err == nil {
		t.Fatalf("Handle swallowed a send failure")
	}
}
