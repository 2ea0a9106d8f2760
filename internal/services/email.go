package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// ErrEmailNotConfigured is returned when SMTP credentials are missing
var ErrEmailNotConfigured = errors.New("email service not configured")

// EmailService sends transactional mail over SMTP
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	brand  string
}

// NewEmailService builds the service from SMTP_* env vars. When the
// credentials are absent the service stays in a disabled state and every
// send becomes a logged no-op error, so local development works without
// a mail account.
func NewEmailService() *EmailService {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASSWORD")

	svc := &EmailService{
		from:  os.Getenv("SMTP_FROM"),
		brand: os.Getenv("BRAND_NAME"),
	}
	if svc.brand == "" {
		svc.brand = "L2H Blog"
	}
	if svc.from == "" {
		svc.from = user
	}

	if host == "" || user == "" || pass == "" {
		log.Println("⚠️ SMTP not configured, emails will be skipped")
		return svc
	}

	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			port = parsed
		}
	}

	svc.dialer = gomail.NewDialer(host, port, user, pass)
	log.Printf("✅ Email service ready (%s:%d)", host, port)
	return svc
}

// Enabled reports whether SMTP credentials were provided
func (s *EmailService) Enabled() bool {
	return s.dialer != nil
}

func (s *EmailService) send(to, subject, htmlBody string) error {
	if s.dialer == nil {
		log.Printf("⚠️ Email to %s skipped: %v", to, ErrEmailNotConfigured)
		return ErrEmailNotConfigured
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendOTPEmail delivers a verification code for the given purpose
func (s *EmailService) SendOTPEmail(to, code, purpose string) error {
	action := "verify your email"
	switch purpose {
	case "comment":
		action = "post your comment"
	case "newsletter":
		action = "confirm your newsletter subscription"
	case "password-reset":
		action = "reset your password"
	}

	subject := fmt.Sprintf("%s - Your verification code", s.brand)
	body := fmt.Sprintf(`
		<div style="font-family:Arial,sans-serif;max-width:520px;margin:0 auto">
			<h2>%s</h2>
			<p>Use the code below to %s:</p>
			<p style="font-size:32px;font-weight:bold;letter-spacing:6px">%s</p>
			<p>This code expires in 10 minutes. If you didn't request it, you can ignore this email.</p>
		</div>`, s.brand, action, code)

	return s.send(to, subject, body)
}

// SendNewsletterWelcomeEmail greets a newly confirmed subscriber
func (s *EmailService) SendNewsletterWelcomeEmail(to string) error {
	subject := fmt.Sprintf("Welcome to the %s newsletter", s.brand)
	body := fmt.Sprintf(`
		<div style="font-family:Arial,sans-serif;max-width:520px;margin:0 auto">
			<h2>You're in! 🎉</h2>
			<p>Thanks for subscribing to the %s newsletter. We'll keep you posted with our latest articles and resources.</p>
		</div>`, s.brand)

	return s.send(to, subject, body)
}

// SendDownloadEmail delivers an ebook download link to a reader
func (s *EmailService) SendDownloadEmail(to, name, ebookName, downloadURL string) error {
	greeting := "Hi"
	if name != "" {
		greeting = "Hi " + name
	}

	subject := fmt.Sprintf("Your copy of %s", ebookName)
	body := fmt.Sprintf(`
		<div style="font-family:Arial,sans-serif;max-width:520px;margin:0 auto">
			<h2>%s,</h2>
			<p>Here is your download link for <strong>%s</strong>:</p>
			<p><a href="%s" style="display:inline-block;padding:12px 24px;background:#2563eb;color:#fff;text-decoration:none;border-radius:6px">Download ebook</a></p>
			<p>Happy reading!<br>— The %s team</p>
		</div>`, greeting, ebookName, downloadURL, s.brand)

	return s.send(to, subject, body)
}

// BulkSendResult summarizes a bulk mail run
type BulkSendResult struct {
	Sent   []string `json:"sent"`
	Failed []string `json:"failed"`
}

// SendBulkDownloadEmails sends the same ebook link to many recipients and
// reports per-address success. One bad address never aborts the run.
func (s *EmailService) SendBulkDownloadEmails(recipients []string, ebookName, downloadURL string) BulkSendResult {
	result := BulkSendResult{Sent: []string{}, Failed: []string{}}
	for _, to := range recipients {
		if err := s.SendDownloadEmail(to, "", ebookName, downloadURL); err != nil {
			log.Printf("❌ Bulk send to %s failed: %v", to, err)
			result.Failed = append(result.Failed, to)
			continue
		}
		result.Sent = append(result.Sent, to)
	}
	return result
}
