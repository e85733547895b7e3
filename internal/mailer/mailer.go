package mailer

import (
	"fmt"

	"github.com/go-gomail/gomail"
	"github.com/rs/zerolog"

	"github.com/Gentaaaa/MedPal/internal/config"
)

// Mailer sends HTML email over SMTP. It implements the booking engine's
// Notifier interface.
type Mailer struct {
	cfg config.MailerConfig
	log zerolog.Logger
}

// New creates a Mailer from the SMTP configuration.
func New(cfg config.MailerConfig, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Send delivers one HTML email.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

// SendVerificationCode emails a registration or password-reset code.
func (m *Mailer) SendVerificationCode(to, code string, reset bool) error {
	subject := "Verify your email"
	body := fmt.Sprintf("Your verification code is <strong>%s</strong>.", code)
	if reset {
		subject = "Password reset code"
		body = fmt.Sprintf("Your password reset code is <strong>%s</strong>.", code)
	}
	return m.Send(to, subject, body)
}

// SendDoctorWelcome emails a newly registered doctor their login code.
func (m *Mailer) SendDoctorWelcome(to, doctorCode string) error {
	body := fmt.Sprintf(
		"Welcome to MedPal.<br />Your doctor login code is <strong>%s</strong>. Use it together with your password to sign in.",
		doctorCode,
	)
	return m.Send(to, "Your MedPal doctor account", body)
}

// SendAsync fires one email in the background, logging failures instead of
// returning them. Used where a handler must not block on SMTP.
func (m *Mailer) SendAsync(to, subject, htmlBody string) {
	go func() {
		if err := m.Send(to, subject, htmlBody); err != nil {
			m.log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("email send failed")
		}
	}()
}
