package mail

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsletterDigest/internal/config"
	"NewsletterDigest/internal/domain"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   []domain.EmailMessage
	failTo string
}

func (r *recordingSender) Send(_ context.Context, msg domain.EmailMessage) error {
	if msg.To == r.failTo {
		return fmt.Errorf("mailbox unavailable")
	}
	r.mu.Lock()
	r.sent = append(r.sent, msg)
	r.mu.Unlock()
	return nil
}

func newTestDispatcher(sender *recordingSender) *Dispatcher {
	return NewDispatcher(sender, config.EmailConfig{
		From:                "digest@example.com",
		Subject:             "Your digest",
		UnsubscribeBaseLink: "https://digest.example/unsubscribe",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validArticles() []domain.Article {
	return []domain.Article{
		{Title: "Titular", Content: "<p>Cuerpo</p>", Link: "https://news.example/a"},
	}
}

func TestSendEmails(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	d := newTestDispatcher(sender)

	err := d.SendEmails(context.Background(), []string{"ana@example.com", "bob@example.com"}, validArticles())
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)

	for _, msg := range sender.sent {
		assert.Equal(t, "digest@example.com", msg.From)
		assert.Equal(t, "Your digest", msg.Subject)
		assert.Contains(t, msg.HTML, "Titular")
		assert.Contains(t, msg.HTML, "<p>Cuerpo</p>")
		assert.Contains(t, msg.HTML, "https://digest.example/unsubscribe/"+msg.To,
			"each recipient gets their own unsubscribe link")
	}
}

func TestSendEmailsPartialFailure(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{failTo: "bad@example.com"}
	d := newTestDispatcher(sender)

	recipients := []string{"ana@example.com", "bad@example.com", "carla@example.com"}
	err := d.SendEmails(context.Background(), recipients, validArticles())

	require.NoError(t, err, "a single failed send must not fail the call")
	require.Len(t, sender.sent, 2)
	for _, msg := range sender.sent {
		assert.NotEqual(t, "bad@example.com", msg.To)
	}
}

func TestSendEmailsInvalidRecipient(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	d := newTestDispatcher(sender)

	err := d.SendEmails(context.Background(), []string{"ana@example.com", "not-an-address"}, validArticles())
	require.Error(t, err)
	assert.Empty(t, sender.sent, "fail-closed: no partial send on contract violation")
}

func TestSendEmailsInvalidArticles(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	d := newTestDispatcher(sender)

	err := d.SendEmails(context.Background(), []string{"ana@example.com"}, []domain.Article{{Title: "t"}})
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestSendEmailsNoRecipients(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	d := newTestDispatcher(sender)

	err := d.SendEmails(context.Background(), nil, validArticles())
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestNewSMTPSenderValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSMTPSender(config.EmailConfig{Port: 587})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host")
	assert.Contains(t, err.Error(), "from")

	_, err = NewSMTPSender(config.EmailConfig{Host: "smtp.example.com", Port: 587, From: "digest@example.com"})
	require.NoError(t, err)
}
