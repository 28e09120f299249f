// Package mailer delivers analyses by email.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var pageTemplate = template.Must(template.New("email").Parse(`<html>
<body>
    <h2>{{.Heading}}</h2>
    {{.Body}}
</body>
</html>
`))

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Config holds SMTP settings
type Config struct {
	Host     string
	Port     int
	Sender   string
	Password string
	Timeout  time.Duration
}

// SMTPNotifier sends markdown bodies as HTML email with a plain-text
// alternative, over STARTTLS with SMTP AUTH.
type SMTPNotifier struct {
	cfg  Config
	send func(ctx context.Context, m *mail.Msg) error
	log  zerolog.Logger
}

// NewSMTPNotifier creates a notifier that dials cfg.Host for every message
func NewSMTPNotifier(cfg Config, log zerolog.Logger) *SMTPNotifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	n := &SMTPNotifier{
		cfg: cfg,
		log: log.With().Str("client", "smtp").Logger(),
	}
	n.send = n.dialAndSend
	return n
}

// Send emails body (markdown) to recipient
func (n *SMTPNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	m, err := n.buildMessage(recipient, subject, body)
	if err != nil {
		return err
	}
	if err := n.send(ctx, m); err != nil {
		n.log.Error().Err(err).Str("to", recipient).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	n.log.Info().Str("to", recipient).Msg("Email sent")
	return nil
}

func (n *SMTPNotifier) buildMessage(recipient, subject, body string) (*mail.Msg, error) {
	html, err := RenderHTML(headingFor(subject), body)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.From(n.cfg.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	m.AddAlternativeString(mail.TypeTextHTML, html)
	return m, nil
}

func (n *SMTPNotifier) dialAndSend(ctx context.Context, m *mail.Msg) error {
	c, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Sender),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(n.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return c.DialAndSendWithContext(ctx, m)
}

// RenderHTML converts markdown to HTML inside the email page template
func RenderHTML(heading, markdownBody string) (string, error) {
	var converted bytes.Buffer
	if err := markdown.Convert([]byte(markdownBody), &converted); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Heading string
		Body    template.HTML
	}{
		Heading: heading,
		Body:    template.HTML(converted.String()), // goldmark escapes raw HTML by default
	})
	if err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return page.String(), nil
}

// headingFor drops the product suffix from the subject
// ("Sua Análise de Portfólio - Invest-AI" -> "Sua Análise de Portfólio").
func headingFor(subject string) string {
	if i := strings.LastIndex(subject, " - "); i > 0 {
		return subject[:i]
	}
	return subject
}

// NoopNotifier stands in when no SMTP credentials are configured
type NoopNotifier struct {
	log zerolog.Logger
}

// NewNoopNotifier creates a notifier that only logs
func NewNoopNotifier(log zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: log.With().Str("client", "smtp").Logger()}
}

// Send logs and drops the message
func (n *NoopNotifier) Send(_ context.Context, recipient, subject, _ string) error {
	n.log.Warn().Str("to", recipient).Str("subject", subject).Msg("Email credentials not set. Skipping email.")
	return nil
}
