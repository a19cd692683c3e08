// Package email implements the outbound notification collaborator over
// SMTP. Sends are best effort; callers log and discard failures.
package email

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// SMTPNotifier sends lifecycle emails through a single SMTP dialer.
// The user ID doubles as the recipient address resolved upstream by the
// identity provider; this service only formats and dials.
type SMTPNotifier struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPNotifier(config SMTPConfig) *SMTPNotifier {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPNotifier{
		config: config,
		dialer: dialer,
	}
}

func (s *SMTPNotifier) SendClosureNotice(userID string, purgeAt time.Time) error {
	subject := "Your Account Is Scheduled for Deletion"
	deadline := purgeAt.Format("January 2, 2006")

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Account Closure Confirmed</h2>
			<p>Your account closure request has been received.</p>
			<p>Your data will be permanently deleted on <strong>%s</strong>.</p>
			<p>If you change your mind, you can cancel the closure any time before that date by signing back in.</p>
		</body>
		</html>
	`, deadline)

	plainBody := fmt.Sprintf(`
Account Closure Confirmed

Your account closure request has been received.

Your data will be permanently deleted on %s.

If you change your mind, you can cancel the closure any time before that date by signing back in.
	`, deadline)

	return s.sendEmail(userID, subject, htmlBody, plainBody)
}

func (s *SMTPNotifier) SendTrialExpiryWarning(userID string, endAt time.Time) error {
	subject := "Your Trial Is Ending Soon"
	deadline := endAt.Format("January 2, 2006")

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Trial Ending Soon</h2>
			<p>Your trial ends on <strong>%s</strong>.</p>
			<p>Upgrade to a paid plan to keep access to all features.</p>
		</body>
		</html>
	`, deadline)

	plainBody := fmt.Sprintf(`
Trial Ending Soon

Your trial ends on %s.

Upgrade to a paid plan to keep access to all features.
	`, deadline)

	return s.sendEmail(userID, subject, htmlBody, plainBody)
}

func (s *SMTPNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.config.FromAddress, s.config.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
