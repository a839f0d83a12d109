package mailer

import (
	"context"
	"fmt"
	"io"

	"ticketing-svc/models"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Mailer sends one ticket email per unit. It is an interface so
// handler and orchestrator tests can swap in a fake transport.
type Mailer interface {
	SendTicket(ctx context.Context, to, purchaserName string, unit models.Unit, identifier string, image []byte) error
}

// SMTPMailer dispatches through an SMTP relay via gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPMailer(host string, port int, user, password, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
		logger: logger,
	}
}

func (m *SMTPMailer) SendTicket(ctx context.Context, to, purchaserName string, unit models.Unit, identifier string, image []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Your %s is here!", unit.Name))
	msg.SetBody("text/html", ticketBody(purchaserName, unit.Name, identifier))
	msg.Attach(identifier+".png", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(image)
		return err
	}))

	// gomail has no context plumbing, so the send runs in its own
	// goroutine and a stalled relay is abandoned when ctx expires;
	// the goroutine exits once the transport gives up on its own.
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to send ticket %s to %s: %w", identifier, to, err)
		}
	case <-ctx.Done():
		return fmt.Errorf("failed to send ticket %s to %s: %w", identifier, to, ctx.Err())
	}

	m.logger.Info("Ticket email sent",
		zap.String("identifier", identifier),
		zap.String("to", to),
		zap.String("ticket_type", unit.TicketType),
	)
	return nil
}

func ticketBody(purchaserName, displayName, identifier string) string {
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>Thank you for your purchase! Your <strong>%s</strong> is attached.</p>
<p>Ticket ID: <strong>%s</strong></p>
<p>Present the attached QR code at the entrance. Each ticket admits one person, once.</p>`,
		purchaserName, displayName, identifier)
}
