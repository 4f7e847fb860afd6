package notifications

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/dmitrijs2005/helpdesk/internal/server/models"
)

//go:embed email.html
var templateFS embed.FS

// SMTPNotifier sends ticket lifecycle emails through a plain SMTP relay,
// rendering the embedded HTML template.
type SMTPNotifier struct {
	addr       string // host:port
	from       string
	adminEmail string
	auth       smtp.Auth
	tmpl       *template.Template

	// sendMail is swappable for tests; defaults to smtp.SendMail.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier parses the embedded template once at startup; a broken
// template is a startup-fatal condition.
func NewSMTPNotifier(addr, user, password, from, adminEmail string) (*SMTPNotifier, error) {
	tmpl, err := template.ParseFS(templateFS, "email.html")
	if err != nil {
		return nil, fmt.Errorf("parsing email template: %w", err)
	}

	var auth smtp.Auth
	if user != "" {
		host, _, err := splitHostPort(addr)
		if err != nil {
			return nil, err
		}
		auth = smtp.PlainAuth("", user, password, host)
	}

	return &SMTPNotifier{
		addr:       addr,
		from:       from,
		adminEmail: adminEmail,
		auth:       auth,
		tmpl:       tmpl,
		sendMail:   smtp.SendMail,
	}, nil
}

func splitHostPort(addr string) (string, string, error) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i], addr[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("smtp address %q missing port", addr)
}

type emailData struct {
	Greeting string
	Message  string
	Closing  string
}

func (n *SMTPNotifier) send(to, subject string, data emailData) error {
	var body bytes.Buffer
	if err := n.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering email: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	if err := n.sendMail(n.addr, n.auth, n.from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	return nil
}

// TicketCreated emails the support address about a newly filed ticket.
func (n *SMTPNotifier) TicketCreated(ctx context.Context, ticket *models.Ticket, owner *models.User) error {
	return n.send(n.adminEmail, fmt.Sprintf("New ticket #%d", ticket.ID), emailData{
		Greeting: "Hello,",
		Message:  fmt.Sprintf("A user has created a new ticket: %s (priority %s).", ticket.Title, ticket.Priority),
		Closing:  "Thank you for your attention.",
	})
}

// TicketUpdated emails the ticket owner about an update to their ticket.
func (n *SMTPNotifier) TicketUpdated(ctx context.Context, ticket *models.Ticket, owner *models.User) error {
	greeting := "Hello,"
	if owner.FullName != "" {
		greeting = fmt.Sprintf("Hello %s,", owner.FullName)
	}
	return n.send(owner.Email, fmt.Sprintf("Your ticket #%d was updated", ticket.ID), emailData{
		Greeting: greeting,
		Message:  fmt.Sprintf("Your ticket %q has received an update (status %s).", ticket.Title, ticket.Status),
		Closing:  "Thank you for your attention.",
	})
}
