package mailer

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"

	"github.com/ali-abouelaish/FleetManager-sub003/internal/config"
)

// Message is one outgoing email with both plain text and HTML parts.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages. Configured reports whether sending is possible at all.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through an SMTP relay. Port 465 uses implicit TLS,
// other ports upgrade with STARTTLS when the server offers it.
type SMTPSender struct {
	cfg    config.SMTP
	logger *slog.Logger
}

func NewSMTPSender(cfg config.SMTP, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) Configured() bool {
	return s.cfg.Configured()
}

func (s *SMTPSender) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Pass),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	return mail.NewClient(s.cfg.Host, opts...)
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.Configured() {
		return errors.New("smtp is not configured")
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return errors.Wrap(err, "invalid from address")
	}
	if err := m.To(msg.To); err != nil {
		return errors.Wrapf(err, "invalid recipient %q", msg.To)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	c, err := s.client()
	if err != nil {
		return errors.Wrap(err, "create smtp client")
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return errors.Wrap(err, "send mail")
	}
	s.logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}
