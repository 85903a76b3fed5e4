package infra

import (
	"fmt"
	"net/smtp"

	"carbonledger/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer delivers report mail over plain-auth SMTP. An empty SMTP config is
// fine at boot; sends just fail until the operator provides one.
type Mailer struct {
	from string
	addr string
	auth smtp.Auth
}

func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		from: cfg.SMTPUser,
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return m
}

// SendReport mails a finished footprint report, attaching the PDF when a
// path is given.
func (m *Mailer) SendReport(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", pdfPath, err)
		}
	}
	return e.Send(m.addr, m.auth)
}
