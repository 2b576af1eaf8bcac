// Package smtp implements ports.EmailSender with go-mail.
package smtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/wneessen/go-mail"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Sender opens one SMTP session per message.
type Sender struct {
	client   dialer
	from     string
	fromName string
}

func New(cfg Config) (*Sender, error) {
	if cfg.Host == "" {
		return nil, errs.NewValueIsRequiredError("smtp host")
	}
	if cfg.From == "" {
		return nil, errs.NewValueIsRequiredError("smtp from address")
	}

	opts := []mail.Option{mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &Sender{client: client, from: cfg.From, fromName: cfg.FromName}, nil
}

// Send returns the generated Message-ID header value.
func (s *Sender) Send(ctx context.Context, msg ports.EmailMessage) (string, error) {
	m, err := s.compose(msg)
	if err != nil {
		return "", err
	}
	if err = s.client.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("send email to %s: %w", msg.To, err)
	}

	ids := m.GetGenHeader(mail.HeaderMessageID)
	if len(ids) == 0 {
		return "", nil
	}
	return strings.Trim(ids[0], "<>"), nil
}

func (s *Sender) compose(msg ports.EmailMessage) (*mail.Msg, error) {
	m := mail.NewMsg()

	var err error
	if s.fromName != "" {
		err = m.FromFormat(s.fromName, s.from)
	} else {
		err = m.From(s.from)
	}
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("sender address", err)
	}
	if err = m.To(msg.To); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("recipient address", err)
	}

	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return m, nil
}
