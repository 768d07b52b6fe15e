package notify

import (
	"context"
	"time"

	"github.com/phuslu/log"
	gomail "gopkg.in/mail.v2"

	"github.com/shanehull/inforanger/internal/types"
)

// EmailConfig holds SMTP configuration for the email channel.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
	Enabled    bool
}

// EmailSender delivers digests via SMTP.
type EmailSender struct {
	cfg EmailConfig
}

// NewEmailSender creates a sender with the given SMTP configuration.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// Send delivers an email with HTML body and plain text fallback.
func (s *EmailSender) Send(ctx context.Context, msg *RenderedMessage) error {
	if !s.cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", s.cfg.ToEmail)
	m.SetHeader("Subject", msg.Subject)

	if msg.HTML != "" && msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else if msg.HTML != "" {
		m.SetBody("text/html", msg.HTML)
	} else {
		m.SetBody("text/plain", msg.Text)
	}

	dialer := gomail.NewDialer(s.cfg.SMTPServer, s.cfg.SMTPPort, s.cfg.SMTPUser, s.cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < dialer.Timeout {
			dialer.Timeout = remaining
		}
	}

	if err := dialer.DialAndSend(m); err != nil {
		return &DeliveryError{Channel: "email", Message: "failed to send to " + s.cfg.ToEmail, Err: err}
	}

	log.Info().Str("to", s.cfg.ToEmail).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

// EmailDigest couples the renderer and sender into the digest mail
// capability the orchestrator calls after a successful chunk delivery.
type EmailDigest struct {
	renderer *HTMLEmailRenderer
	sender   *EmailSender
}

// NewEmailDigest creates the email digest channel.
func NewEmailDigest(cfg EmailConfig) *EmailDigest {
	return &EmailDigest{
		renderer: NewHTMLEmailRenderer(),
		sender:   NewEmailSender(cfg),
	}
}

// SendDigest renders and sends one digest email.
func (d *EmailDigest) SendDigest(ctx context.Context, title string, resp types.NewsResponse, link string) error {
	msg, err := d.renderer.Render(title, resp, link)
	if err != nil {
		return &DeliveryError{Channel: "email", Message: "failed to render digest", Err: err}
	}
	return d.sender.Send(ctx, msg)
}
