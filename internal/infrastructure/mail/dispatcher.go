package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"NewsletterDigest/internal/config"
	"NewsletterDigest/internal/domain"
	"NewsletterDigest/internal/ports"
)

// Dispatcher fans a translated digest out to a group's recipients. Input
// validation is fail-closed: a malformed recipient list or article set means
// nothing is sent at all. Individual send failures, by contrast, are logged
// and skipped so one bad address never blocks the rest of the group.
type Dispatcher struct {
	sender          ports.MailSender
	from            string
	subject         string
	unsubscribeBase string
	logger          *slog.Logger
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher wires the transport and rendering settings.
func NewDispatcher(sender ports.MailSender, cfg config.EmailConfig, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:          sender,
		from:            cfg.From,
		subject:         cfg.Subject,
		unsubscribeBase: cfg.UnsubscribeBaseLink,
		logger:          logger,
	}
}

// SendEmails renders and sends one personalized message per recipient,
// concurrently, and returns only after every attempt has settled.
func (d *Dispatcher) SendEmails(ctx context.Context, recipients []string, articles []domain.Article) error {
	if err := validateRecipients(recipients); err != nil {
		d.logger.Error("refusing dispatch", "error", err)
		return err
	}
	if err := validateArticles(articles); err != nil {
		d.logger.Error("refusing dispatch", "error", err)
		return err
	}

	var wg sync.WaitGroup
	for _, recipient := range recipients {
		wg.Add(1)
		go func(recipient string) {
			defer wg.Done()

			if err := d.sendOne(ctx, recipient, articles); err != nil {
				d.logger.Error("send failed, skipping recipient", "recipient", recipient, "error", err)
			}
		}(recipient)
	}
	wg.Wait()

	return nil
}

func (d *Dispatcher) sendOne(ctx context.Context, recipient string, articles []domain.Article) error {
	html, err := renderDigest(articles, d.unsubscribeBase, recipient)
	if err != nil {
		return err
	}

	return d.sender.Send(ctx, domain.EmailMessage{
		From:    d.from,
		To:      recipient,
		Subject: d.subject,
		HTML:    html,
	})
}

func validateRecipients(recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}
	for _, recipient := range recipients {
		if !strings.Contains(recipient, "@") {
			return fmt.Errorf("invalid recipient address %q", recipient)
		}
	}
	return nil
}

func validateArticles(articles []domain.Article) error {
	if len(articles) == 0 {
		return fmt.Errorf("no articles to send")
	}
	for _, article := range articles {
		if article.Title == "" || article.Content == "" {
			return fmt.Errorf("article with empty title or content")
		}
	}
	return nil
}
