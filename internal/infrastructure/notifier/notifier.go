package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/gdugdh24/barter-backend/internal/domain"
)

var (
	createdTmpl = template.Must(template.New("created").Parse(
		`Hi {{.Receiver}},<br><br>
{{.Sender}} has sent you a match request on BetterBarter.<br>
Log in to your account to review and respond.<br><br>
Happy helping! :)`))

	acceptedTmpl = template.Must(template.New("accepted").Parse(
		`Hi {{.Receiver}},<br><br>
Your match with {{.Other}} on BetterBarter has been confirmed.<br><br>
You can reach {{.Other}} at:<br>
{{range .Contact}}{{.}}<br>
{{end}}<br>
Happy helping! :)`))
)

const (
	createdSubject  = "New match request waiting for your response on BetterBarter!"
	acceptedSubject = "Your BetterBarter match is confirmed!"
)

// EmailNotifier renders lifecycle notices and mails them.
type EmailNotifier struct {
	sender Sender
}

func NewEmailNotifier(sender Sender) *EmailNotifier {
	return &EmailNotifier{sender: sender}
}

// NotifyMatchCreated tells the receiver someone wants to match. No contact
// details are shared at this stage.
func (n *EmailNotifier) NotifyMatchCreated(ctx context.Context, to, from *domain.Profile) error {
	body, err := render(createdTmpl, map[string]any{
		"Receiver": to.DisplayName,
		"Sender":   from.DisplayName,
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, to.Email, createdSubject, body)
}

// NotifyMatchAccepted sends each party the other's contact lines.
func (n *EmailNotifier) NotifyMatchAccepted(ctx context.Context, a, b *domain.Profile, contactA, contactB []string) error {
	var errs []error
	for _, m := range []struct {
		to, other *domain.Profile
		contact   []string
	}{
		{a, b, contactB},
		{b, a, contactA},
	} {
		body, err := render(acceptedTmpl, map[string]any{
			"Receiver": m.to.DisplayName,
			"Other":    m.other.DisplayName,
			"Contact":  m.contact,
		})
		if err != nil {
			return err
		}
		if err := n.sender.Send(ctx, m.to.Email, acceptedSubject, body); err != nil {
			errs = append(errs, fmt.Errorf("mail to %s: %w", m.to.ID, err))
		}
	}
	return errors.Join(errs...)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s notice: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// LogNotifier records notices in the log instead of sending them. Used when
// mail delivery is disabled.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyMatchCreated(_ context.Context, to, from *domain.Profile) error {
	n.logger.Info("match request notice",
		zap.String("to", to.ID),
		zap.String("from", from.ID),
	)
	return nil
}

func (n *LogNotifier) NotifyMatchAccepted(_ context.Context, a, b *domain.Profile, _, _ []string) error {
	n.logger.Info("match accepted notice",
		zap.String("profile_a", a.ID),
		zap.String("profile_b", b.ID),
	)
	return nil
}
