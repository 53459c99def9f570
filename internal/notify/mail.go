// Package notify turns domain events into queued outbound email.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/customers"
	"github.com/neilpimley/McKenziesPharmacy-backend/jobs"
)

// Enqueuer queues outbound mail. Satisfied by jobs.Client.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// MailNotifier queues transactional email for customer lifecycle events. It
// satisfies customers.Notifier.
type MailNotifier struct {
	enqueuer Enqueuer
	logger   *slog.Logger
	from     string
	caser    cases.Caser
}

// NewMailNotifier constructs a notifier that sends from the given address.
func NewMailNotifier(enqueuer Enqueuer, from string, logger *slog.Logger) *MailNotifier {
	return &MailNotifier{
		enqueuer: enqueuer,
		logger:   logger,
		from:     from,
		caser:    cases.Title(language.BritishEnglish),
	}
}

// ActivationCode mails a registration verification code.
func (n *MailNotifier) ActivationCode(ctx context.Context, email, name, code string) error {
	payload := jobs.SendEmailPayload{
		To:      email,
		From:    n.from,
		Subject: "Verify your McKenzies Pharmacy account",
		Body: fmt.Sprintf("Hi %s,\n\nYour verification code is %s.\n\n"+
			"Enter it in the app to activate your account.\n\nMcKenzies Pharmacy",
			n.caser.String(name), code),
	}
	return n.send(ctx, payload, "activation code")
}

// PersonalDetailsAmended confirms a change to the customer's record.
func (n *MailNotifier) PersonalDetailsAmended(ctx context.Context, c customers.Customer) error {
	payload := jobs.SendEmailPayload{
		To:      c.Email,
		From:    n.from,
		Subject: "Your details have been updated",
		Body: fmt.Sprintf("Hi %s,\n\nYour personal details were updated. "+
			"If this wasn't you, contact the pharmacy straight away.\n\nMcKenzies Pharmacy",
			n.caser.String(c.FirstName)),
	}
	return n.send(ctx, payload, "details amended")
}

// ReminderDue nudges the customer that their repeat prescription is due.
func (n *MailNotifier) ReminderDue(ctx context.Context, email, name string) error {
	payload := jobs.SendEmailPayload{
		To:      email,
		From:    n.from,
		Subject: "Your repeat prescription is due",
		Body: fmt.Sprintf("Hi %s,\n\nYour repeat prescription is due soon. "+
			"Log in to place your next order.\n\nMcKenzies Pharmacy",
			n.caser.String(name)),
	}
	return n.send(ctx, payload, "reminder due")
}

func (n *MailNotifier) send(ctx context.Context, payload jobs.SendEmailPayload, kind string) error {
	if _, err := n.enqueuer.EnqueueSendEmail(ctx, payload); err != nil {
		return fmt.Errorf("notify: queue %s mail: %w", kind, err)
	}
	n.logger.Info("queued mail",
		slog.String("kind", kind),
		slog.String("to", payload.To),
	)
	return nil
}
