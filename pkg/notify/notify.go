package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/doodlesbykumbi/flasky-in-go/pkg/config"
)

// ErrTransport wraps failures to hand a message to the mail server
var ErrTransport = errors.New("notification transport error")

// Notifier sends a single templated notification
type Notifier interface {
	Notify(ctx context.Context, recipient, subjectSuffix, template string, data any) error
}

// Sender delivers built messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer is a Notifier delivering over SMTP
type Mailer struct {
	sender        Sender
	from          string
	subjectPrefix string
	renderer      *Renderer
}

var _ Notifier = (*Mailer)(nil)

// NewMailer creates a Mailer with an SMTP client built from cfg
func NewMailer(cfg config.MailConfig) (*Mailer, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewMailerWithSender(client, cfg.Sender, cfg.SubjectPrefix, NewRenderer(DefaultTemplates())), nil
}

// NewMailerWithSender creates a Mailer delivering through sender
func NewMailerWithSender(sender Sender, from, subjectPrefix string, renderer *Renderer) *Mailer {
	return &Mailer{
		sender:        sender,
		from:          from,
		subjectPrefix: subjectPrefix,
		renderer:      renderer,
	}
}

// NewClient builds the SMTP client for cfg
func NewClient(cfg config.MailConfig) (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Timeout() > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout()))
	}
	if cfg.TLS() {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Server, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return client, nil
}

// Subject joins the configured prefix and suffix
func (m *Mailer) Subject(suffix string) string {
	if m.subjectPrefix == "" {
		return suffix
	}
	return m.subjectPrefix + " " + suffix
}

// Build renders template with data into a message for recipient
func (m *Mailer) Build(recipient, subjectSuffix, template string, data any) (*mail.Msg, error) {
	text, html, err := m.renderer.Render(template, data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}
	msg.Subject(m.Subject(subjectSuffix))
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)
	return msg, nil
}

// Notify builds and sends one message. Errors from the SMTP exchange are
// wrapped in ErrTransport.
func (m *Mailer) Notify(ctx context.Context, recipient, subjectSuffix, template string, data any) error {
	msg, err := m.Build(recipient, subjectSuffix, template, data)
	if err != nil {
		return err
	}
	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}
