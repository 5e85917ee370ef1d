package mailer

import (
	"fmt"
	"html"
)

// Render turns a template id and its payload into a message for to.
// Unknown templates are an error so a typo never sends an empty email.
func Render(templateID, to string, payload map[string]any) (Message, error) {
	switch templateID {
	case "magic-link":
		link := str(payload, "url")
		if link == "" {
			return Message{}, fmt.Errorf("mailer: template %q requires url", templateID)
		}
		ttl := payload["ttlMinutes"]
		return Message{
			To:      to,
			Subject: "Your RSVP sign-in link",
			Text: fmt.Sprintf("Hello!\n\nUse the link below to sign in to RSVP:\n\n%s\n\n"+
				"The link expires in %v minutes and can be used once.\n\n"+
				"If you didn't request this email, you can safely ignore it.\n", link, ttl),
			HTML: fmt.Sprintf(`<p>Hello!</p><p><a href="%s">Sign in to RSVP</a></p>`+
				`<p>The link expires in %v minutes and can be used once.</p>`+
				`<p>If you didn't request this email, you can safely ignore it.</p>`, html.EscapeString(link), ttl),
		}, nil
	case "cohost-added":
		event := str(payload, "eventName")
		role := str(payload, "role")
		return Message{
			To:      to,
			Subject: fmt.Sprintf("You're now a cohost of %s", event),
			Text:    fmt.Sprintf("You were added to %s as %s.\n\n%s\n", event, role, str(payload, "url")),
			HTML: fmt.Sprintf(`<p>You were added to <b>%s</b> as %s.</p><p><a href="%s">Open the event</a></p>`,
				html.EscapeString(event), html.EscapeString(role), html.EscapeString(str(payload, "url"))),
		}, nil
	}
	return Message{}, fmt.Errorf("mailer: unknown template %q", templateID)
}

func str(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
