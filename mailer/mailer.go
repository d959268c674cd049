// Package mailer delivers ssrwatch notices by email.
package mailer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/etnz/ssrwatch"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RunHeader carries the run ID in every message.
const RunHeader = "X-Ssrwatch-Run"

// Transport submits a composed message.
type Transport interface {
	Send(ctx context.Context, m *mail.Msg) error
}

// Mailer turns notices into emails.
type Mailer struct {
	from      string
	to        string
	transport Transport
	logger    zerolog.Logger
}

// New returns a Mailer sending to a single recipient. from may be empty,
// in which case the transport decides.
func New(from, to string, t Transport, logger zerolog.Logger) *Mailer {
	return &Mailer{from: from, to: to, transport: t, logger: logger}
}

// Deliver composes n and submits it once. Any failure wraps ssrwatch.ErrDelivery.
func (m *Mailer) Deliver(ctx context.Context, n ssrwatch.Notice) error {
	msg, err := m.Compose(n)
	if err != nil {
		return fmt.Errorf("%w: %w", ssrwatch.ErrDelivery, err)
	}
	if err := m.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: to %s: %w", ssrwatch.ErrDelivery, m.to, err)
	}
	m.logger.Debug().Str("to", m.to).Str("subject", n.Subject).Msg("mail submitted")
	return nil
}

// Compose builds the message for n: plain text body, an HTML alternative
// when n has a markdown version, and the attachment if any.
func (m *Mailer) Compose(n ssrwatch.Notice) (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithEncoding(mail.NoEncoding), mail.WithCharset(mail.CharsetUTF8))
	if m.from != "" {
		if err := msg.From(m.from); err != nil {
			return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
		}
	}
	if err := msg.To(m.to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", m.to, err)
	}
	msg.Subject(n.Subject)
	msg.SetDate()
	if n.RunID != "" {
		msg.SetGenHeader(mail.Header(RunHeader), n.RunID)
	}

	msg.SetBodyString(mail.TypeTextPlain, n.Body)
	if n.Markdown != "" {
		html, err := toHTML(n.Markdown)
		if err != nil {
			return nil, err
		}
		msg.AddAlternativeString(mail.TypeTextHTML, html)
	}

	if a := n.Attachment; a != nil {
		err := msg.AttachReader(a.Name, bytes.NewReader(a.Content), mail.WithFileContentType(mail.TypeTextPlain))
		if err != nil {
			return nil, fmt.Errorf("cannot attach %q: %w", a.Name, err)
		}
	}
	return msg, nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// toHTML converts a markdown notice to HTML.
func toHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("cannot render markdown: %w", err)
	}
	return buf.String(), nil
}
