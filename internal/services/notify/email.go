// Package notify delivers rendered reports over SMTP. Delivery is optional;
// an unconfigured notifier accepts sends and does nothing.
package notify

import (
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/bobmcallan/sweep/internal/common"
	"github.com/bobmcallan/sweep/internal/interfaces"
)

// dialTimeout bounds the SMTP connection attempt.
const dialTimeout = 10 * time.Second

// EmailNotifier implements Notifier over SMTP.
type EmailNotifier struct {
	cfg    common.NotifyConfig
	logger *common.Logger

	// send is swappable for tests; defaults to a real SMTP dial.
	send func(m *gomail.Message) error
}

// NewEmailNotifier creates a notifier with the given SMTP configuration.
func NewEmailNotifier(cfg common.NotifyConfig, logger *common.Logger) *EmailNotifier {
	n := &EmailNotifier{cfg: cfg, logger: logger}
	n.send = func(m *gomail.Message) error {
		dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		dialer.Timeout = dialTimeout
		return dialer.DialAndSend(m)
	}
	return n
}

// Enabled reports whether delivery is configured.
func (n *EmailNotifier) Enabled() bool {
	return n.cfg.Enabled && n.cfg.SMTPHost != "" && n.cfg.From != "" && n.cfg.To != ""
}

// SendReport delivers an HTML report with a plain text alternative. A
// disabled notifier returns nil without sending.
func (n *EmailNotifier) SendReport(subject, html, text string) error {
	if !n.Enabled() {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Subject", subject)

	if html != "" && text != "" {
		m.SetBody("text/plain", text)
		m.AddAlternative("text/html", html)
	} else if html != "" {
		m.SetBody("text/html", html)
	} else {
		m.SetBody("text/plain", text)
	}

	if err := n.send(m); err != nil {
		n.logger.Warn().Str("to", n.cfg.To).Str("subject", subject).Err(err).Msg("Email send failed")
		return err
	}

	n.logger.Info().Str("to", n.cfg.To).Str("subject", subject).Msg("Email sent")
	return nil
}

// Ensure EmailNotifier implements Notifier
var _ interfaces.Notifier = (*EmailNotifier)(nil)
