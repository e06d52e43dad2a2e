package notifier

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/commexhq/comms-api/internal/config"
	"github.com/commexhq/comms-api/internal/model"
)

// EmailNotifier mails the operations inbox when a communication reaches a
// terminal-phase status. Delivery is best-effort; the caller decides what a
// failure means.
type EmailNotifier struct {
	dialer    *gomail.Dialer
	from      string
	recipient string
	logger    zerolog.Logger
}

func NewEmailNotifier(cfg config.SMTPConfig, logger zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.From,
		recipient: cfg.OpsRecipient,
		logger:    logger.With().Str("component", "email_notifier").Logger(),
	}
}

func (n *EmailNotifier) NotifyTerminal(ctx context.Context, comm *model.Communication, member *model.Member, status *model.GlobalStatus) error {
	recipient := "unknown member"
	if member != nil {
		recipient = fmt.Sprintf("%s (member %s)", member.FullName(), member.MemberNumber)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", n.recipient)
	msg.SetHeader("Subject", fmt.Sprintf("Communication %d reached terminal status %s", comm.ID, status.Code))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Communication %q (id %d) for %s reached terminal status %s (%s) at %s.",
		comm.Title, comm.ID, recipient, status.Code, status.DisplayName, comm.LastUpdatedUTC.Format("2006-01-02 15:04:05 UTC"),
	))

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send terminal status email: %w", err)
	}

	n.logger.Info().
		Int64("communication_id", comm.ID).
		Str("status", status.Code).
		Msg("terminal status notification sent")
	return nil
}

// Noop discards notifications. Used when SMTP is disabled.
type Noop struct{}

func (Noop) NotifyTerminal(context.Context, *model.Communication, *model.Member, *model.GlobalStatus) error {
	return nil
}
