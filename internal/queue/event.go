package queue

// MailRequestedEvent is published whenever the application wants an email
// sent.  The consumer renders TemplateID with Payload and delivers it, so
// request handlers never wait on the email provider.
type MailRequestedEvent struct {
	Recipient   string         `json:"recipient"`
	TemplateID  string         `json:"template_id"`
	Payload     map[string]any `json:"payload"`
	RequestedAt string         `json:"requested_at"`
}
