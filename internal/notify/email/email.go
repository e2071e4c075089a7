// Package email delivers alert summaries as HTML email over SMTP.
package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/monsoonwatch/monsoonwatch/internal/notify"
)

// ChannelConfig holds configuration for the email channel.
type ChannelConfig struct {
	// Host, Port, Username and Password are the SMTP server settings.
	Host     string
	Port     int
	Username string
	Password string

	// From is the sender address; To are the recipients (at least one
	// required).
	From string
	To   []string

	// Logger for channel operations.
	Logger zerolog.Logger
}

// Channel sends summaries as HTML reports over SMTP.
type Channel struct {
	cfg    ChannelConfig
	logger zerolog.Logger
}

// NewChannel creates an email channel.
func NewChannel(cfg ChannelConfig) *Channel {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Channel{cfg: cfg, logger: cfg.Logger}
}

// Type returns the channel identifier.
func (c *Channel) Type() string {
	return "email"
}

// Send renders the summary as HTML and delivers it in one SMTP session.
func (c *Channel) Send(ctx context.Context, s notify.Summary) error {
	html, err := RenderHTML(s)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(c.cfg.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(c.cfg.To...); err != nil {
		return fmt.Errorf("setting recipients: %w", err)
	}
	msg.Subject(subjectFor(s))
	msg.SetBodyString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(c.cfg.Host,
		mail.WithPort(c.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.cfg.Username),
		mail.WithPassword(c.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}

	return nil
}

func subjectFor(s notify.Summary) string {
	prefix := ""
	if s.Test {
		prefix = "[TEST] "
	}
	return fmt.Sprintf("%sMonsoonWatch rain alert: %d zone(s), flood risk %s",
		prefix, len(s.Alerts), s.FloodRisk)
}

// Ensure Channel implements notify.Channel.
var _ notify.Channel = (*Channel)(nil)
