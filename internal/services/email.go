package services

import (
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"strings"

	"daybrief-backend/internal/recap"
)

const (
	resendSMTPHost = "smtp.resend.com"
	resendSMTPPort = "587"
	resendSMTPUser = "resend"
)

type EmailService struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	devMode bool
}

// NewEmailService sends through the given SMTP relay. Without a host it
// falls back to Resend's SMTP relay when resendKey is set, and to dev mode
// (log only) otherwise.
func NewEmailService(host, port, user, pass, from, resendKey string) *EmailService {
	if host == "" && resendKey != "" {
		host, port, user, pass = resendSMTPHost, resendSMTPPort, resendSMTPUser, resendKey
	}
	devMode := host == "" || user == ""
	if devMode {
		log.Println("⚠ Email service running in DEV MODE (logging to console)")
	}
	return &EmailService{
		host:    host,
		port:    port,
		user:    user,
		pass:    pass,
		from:    from,
		devMode: devMode,
	}
}

// Enabled reports whether mail actually leaves the process.
func (s *EmailService) Enabled() bool {
	return s != nil && !s.devMode
}

// SendRecap mails the digest as HTML with the markdown as the plain part.
func (s *EmailService) SendRecap(to, date, markdown string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 600px; margin: 40px auto; background: white; border-radius: 12px; padding: 32px; color: #1e293b; line-height: 1.6;">
%s
  </div>
</body>
</html>`, recap.RenderHTML(markdown))

	return s.sendMultipart(to, recap.Subject(date), markdown, body)
}

const mimeBoundary = "daybrief-recap-boundary"

func (s *EmailService) sendMultipart(to, subject, textBody, htmlBody string) error {
	if s.devMode {
		log.Printf("📧 [DEV EMAIL] To: %s | Subject: %s", to, subject)
		log.Printf("📧 Body:\n%s", textBody)
		return nil
	}

	msg := s.buildMessage(to, subject, textBody, htmlBody)

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, envelopeAddress(s.from), []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}

// buildMessage renders the multipart/alternative message. The subject is
// RFC 2047 encoded since recap subjects are not plain ASCII.
func (s *EmailService) buildMessage(to, subject, textBody, htmlBody string) []byte {
	headers := []string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", subject)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", mimeBoundary),
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, "\r\n"))
	b.WriteString("\r\n\r\n")
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", mimeBoundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", mimeBoundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}

// envelopeAddress strips a display name: "DayBrief <a@b.c>" -> "a@b.c".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return strings.TrimSpace(from)
}
