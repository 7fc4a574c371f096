package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gdugdh24/barter-backend/internal/domain"
)

type sentMail struct {
	to, subject, body string
}

type fakeSender struct {
	failFor string
	sent    []sentMail
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if to == f.failFor {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

var (
	alice = &domain.Profile{ID: "alice", DisplayName: "Alice", Email: "alice@example.com"}
	bob   = &domain.Profile{ID: "bob", DisplayName: "Bob <b>", Email: "bob@example.com"}
)

func TestNotifyMatchCreated(t *testing.T) {
	sender := &fakeSender{}
	n := NewEmailNotifier(sender)

	require.NoError(t, n.NotifyMatchCreated(context.Background(), alice, bob))
	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "alice@example.com", mail.to)
	assert.Equal(t, createdSubject, mail.subject)
	assert.Contains(t, mail.body, "Hi Alice")
	assert.Contains(t, mail.body, "Bob &lt;b&gt;")
	assert.NotContains(t, mail.body, "bob@example.com")
}

func TestNotifyMatchAccepted(t *testing.T) {
	sender := &fakeSender{}
	n := NewEmailNotifier(sender)

	err := n.NotifyMatchAccepted(context.Background(), alice, bob,
		[]string{"telegram: @alice (preferred)"},
		[]string{"Email: bob@example.com"},
	)
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)

	assert.Equal(t, "alice@example.com", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].body, "Email: bob@example.com")
	assert.NotContains(t, sender.sent[0].body, "@alice")

	assert.Equal(t, "bob@example.com", sender.sent[1].to)
	assert.Contains(t, sender.sent[1].body, "telegram: @alice (preferred)")
}

func TestNotifyMatchAcceptedPartialFailure(t *testing.T) {
	sender := &fakeSender{failFor: "alice@example.com"}
	n := NewEmailNotifier(sender)

	err := n.NotifyMatchAccepted(context.Background(), alice, bob, nil, []string{"Email: bob@example.com"})
	assert.ErrorContains(t, err, "mail to alice")
	assert.Len(t, sender.sent, 1, "second party still gets notified")
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.NotifyMatchCreated(context.Background(), alice, bob))
	require.NoError(t, n.NotifyMatchAccepted(context.Background(), alice, bob, nil, nil))
	assert.Equal(t, 2, logs.Len())
}
