package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"NewsletterDigest/internal/config"
	"NewsletterDigest/internal/domain"
	"NewsletterDigest/internal/ports"
)

// SMTPSender delivers rendered digests over plain SMTP with AUTH PLAIN.
// Constructed once per process from validated settings and shared read-only
// across all concurrent sends.
type SMTPSender struct {
	addr string
	auth smtp.Auth
}

var _ ports.MailSender = (*SMTPSender)(nil)

// NewSMTPSender validates the transport settings and builds the sender.
// Incomplete settings are a startup failure, before any run begins.
func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
	}, nil
}

func validate(cfg config.EmailConfig) error {
	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "host")
	}
	if cfg.Port == 0 {
		missing = append(missing, "port")
	}
	if cfg.From == "" {
		missing = append(missing, "from")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete mail settings: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Send delivers one message. net/smtp has no context support, so the context
// is only consulted before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	if err := smtp.SendMail(s.addr, s.auth, msg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}

	return nil
}
