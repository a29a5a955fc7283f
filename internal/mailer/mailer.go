// Package mailer delivers the HTML report over authenticated SMTP with the
// charts attached as inline images.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

const defaultTimeout = 30 * time.Second

// Errors returned by the mailer.
var (
	ErrMissingCredentials = errors.New("mailer: SMTP username and password are required")
	ErrNoRecipients       = errors.New("mailer: message has no recipients")
)

// InlineImage is a PNG referenced from the HTML as cid:<ContentID>.
type InlineImage struct {
	ContentID string
	Data      []byte
}

// Message is one report email.
type Message struct {
	Subject string
	From    string
	To      []string
	HTML    string
	Inline  []InlineImage
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// Mailer sends messages over SMTP with mandatory STARTTLS.
type Mailer struct {
	cfg    Config
	logger zerolog.Logger
}

// New validates cfg and creates a Mailer.
func New(cfg Config, logger zerolog.Logger) (*Mailer, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Host == "" || cfg.Port <= 0 {
		return nil, fmt.Errorf("mailer: invalid SMTP address %q:%d", cfg.Host, cfg.Port)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Mailer{cfg: cfg, logger: logger}, nil
}

// Send builds msg and delivers it in a single SMTP session.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	built, err := BuildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(m.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("mailer: creating SMTP client: %w", err)
	}

	m.logger.Info().
		Str("host", m.cfg.Host).
		Int("port", m.cfg.Port).
		Strs("to", msg.To).
		Int("inline_images", len(msg.Inline)).
		Msg("sending email")

	if err = client.DialAndSendWithContext(ctx, built); err != nil {
		return fmt.Errorf("mailer: sending email: %w", err)
	}

	m.logger.Info().Strs("to", msg.To).Msg("email sent")
	return nil
}

// BuildMessage converts msg into a MIME message: an HTML body with each
// inline image embedded as <ContentID>.png.
func BuildMessage(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("mailer: invalid sender %q: %w", msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("mailer: invalid recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	for _, img := range msg.Inline {
		if err := m.EmbedReader(img.ContentID+".png", bytes.NewReader(img.Data),
			mail.WithFileContentID("<"+img.ContentID+">")); err != nil {
			return nil, fmt.Errorf("mailer: embedding %s: %w", img.ContentID, err)
		}
	}
	return m, nil
}
