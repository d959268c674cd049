package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Sendmail submits messages through the local sendmail-compatible binary.
type Sendmail struct {
	Path string
}

// Send pipes m to "sendmail -oi -t".
func (s Sendmail) Send(ctx context.Context, m *mail.Msg) error {
	if err := m.WriteToSendmailWithContext(ctx, s.Path, "-oi", "-t"); err != nil {
		return fmt.Errorf("sendmail %s: %w", s.Path, err)
	}
	return nil
}

// SMTP submits messages to a relay, with STARTTLS required.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Send dials the relay, sends m and hangs up.
func (s SMTP) Send(ctx context.Context, m *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if s.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.Username),
			mail.WithPassword(s.Password),
		)
	}
	client, err := mail.NewClient(s.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client for %s: %w", s.Host, err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp %s:%d: %w", s.Host, s.Port, err)
	}
	return nil
}
