// Package notification listens for booking events and emails the client a
// confirmation.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"dabachat_backend/internal/events"
	"dabachat_backend/platform/config"
	"dabachat_backend/platform/logger"

	platformevents "dabachat_backend/platform/events"
)

// Mailer sends one plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service turns booking events into confirmation emails.
type Service struct {
	mailer Mailer
	logger *logger.Logger
}

// NewService wires the subscriber. It returns nil when email is disabled,
// in which case Register is a no-op.
func NewService(cfg config.EmailConfig, log *logger.Logger) *Service {
	if !cfg.IsEmailEnabled() {
		log.Info("email notifications disabled")
		return nil
	}
	return &Service{mailer: newSMTPMailer(cfg), logger: log}
}

// Register subscribes the service to the booking events.
func (s *Service) Register(bus platformevents.Bus) {
	if s == nil {
		return
	}
	bus.Subscribe(events.BookingCreatedName, platformevents.HandlerFunc(s.onBookingCreated))
}

func (s *Service) onBookingCreated(ctx context.Context, event platformevents.Event) error {
	booking, ok := event.(events.BookingCreated)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if booking.ClientEmail == "" {
		return nil
	}

	subject := "Your DabaBlane booking " + booking.Reference
	if err := s.mailer.Send(ctx, booking.ClientEmail, subject, confirmationBody(booking)); err != nil {
		s.logger.Error("confirmation email failed",
			"reference", booking.Reference,
			"error", err.Error(),
		)
		return err
	}
	s.logger.Info("confirmation email sent", "reference", booking.Reference)
	return nil
}

func confirmationBody(b events.BookingCreated) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", b.ClientName)
	fmt.Fprintf(&sb, "Your booking for %s is registered.\n\n", b.BlaneName)
	fmt.Fprintf(&sb, "Reference: %s\n", b.Reference)
	if b.Date != "" {
		line := "Date: " + b.Date
		if b.Time != "" {
			line += " at " + b.Time
		}
		sb.WriteString(line + "\n")
	}
	fmt.Fprintf(&sb, "Quantity: %d\n", b.Quantity)
	fmt.Fprintf(&sb, "Total: %.2f MAD\n", b.Total)
	if b.DueNow < b.Total {
		fmt.Fprintf(&sb, "Due now: %.2f MAD\n", b.DueNow)
	}
	if b.PaymentURL != "" {
		fmt.Fprintf(&sb, "\nComplete your payment here: %s\n", b.PaymentURL)
	}
	sb.WriteString("\nThank you for booking with DabaBlane!\n")
	return sb.String()
}

type smtpMailer struct {
	cfg config.EmailConfig
}

func newSMTPMailer(cfg config.EmailConfig) *smtpMailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.GetEmailFromName(), m.cfg.GetEmailFromAddress()); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.cfg.GetSMTPHost(),
		mail.WithPort(m.cfg.GetSMTPPort()),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.GetSMTPUsername()),
		mail.WithPassword(m.cfg.GetSMTPPassword()),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
