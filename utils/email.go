// utils/email.go
package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers one-time codes over SMTP.
type EmailSender struct{}

// NewEmailSender creates an EmailSender. SMTP settings are read from the
// environment on each send so a restartless config change takes effect.
func NewEmailSender() *EmailSender {
	return &EmailSender{}
}

// SendOTP emails the verification code to the given address.
func (s *EmailSender) SendOTP(email, otp string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromEmail := os.Getenv("FROM_EMAIL")

	if smtpHost == "" || smtpPortStr == "" || smtpUser == "" || smtpPass == "" || fromEmail == "" {
		return fmt.Errorf("missing SMTP configuration")
	}

	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}

	subject := "Your AgriBot Verification Code"
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Verify Your Email</h2>
			<p>Your verification code is:</p>
			<h3 style="background-color: #f0f0f0; padding: 10px; font-size: 24px; letter-spacing: 5px; text-align: center;">%s</h3>
			<p>This code will expire in 10 minutes.</p>
			<p>If you did not sign up for AgriBot, please ignore this email.</p>
			<p>Thank you,<br>The AgriBot Team</p>
		</body>
		</html>
	`, otp)

	m := gomail.NewMessage()
	m.SetHeader("From", fromEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
