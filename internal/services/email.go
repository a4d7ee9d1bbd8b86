package services

import (
	"fmt"
	"html"
	"log"
	"mime"
	"net/smtp"
	"strings"

	"sideio-backend/internal/models"
)

type EmailService struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	devMode bool
}

func NewEmailService(host, port, user, pass, from string) *EmailService {
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

// SendLeadNotification tells the operator about a new contact-form lead.
func (s *EmailService) SendLeadNotification(to string, lead models.Lead) error {
	company := "—"
	if lead.Company != nil && *lead.Company != "" {
		company = *lead.Company
	}

	subject := fmt.Sprintf("New strategy lead: %s", lead.Name)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 520px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: linear-gradient(135deg, #10b981 0%%, #14b8a6 100%%); padding: 24px 32px;">
      <h1 style="color: white; margin: 0; font-size: 20px; font-weight: 700;">Sideio · New Lead</h1>
    </div>
    <div style="padding: 32px; color: #1e293b; font-size: 14px; line-height: 1.6;">
      <p style="margin: 0 0 8px;"><strong>Name:</strong> %s</p>
      <p style="margin: 0 0 8px;"><strong>Email:</strong> %s</p>
      <p style="margin: 0 0 16px;"><strong>Company:</strong> %s</p>
      <p style="margin: 0; white-space: pre-wrap;">%s</p>
      <p style="color: #94a3b8; font-size: 12px; margin: 24px 0 0;">Lead %s · %s</p>
    </div>
  </div>
</body>
</html>`,
		html.EscapeString(lead.Name),
		html.EscapeString(lead.Email),
		html.EscapeString(company),
		html.EscapeString(lead.Message),
		lead.ID, lead.CreatedAt.Format("2006-01-02 15:04 MST"),
	)

	return s.sendHTML(to, subject, body)
}

func (s *EmailService) sendHTML(to, subject, htmlBody string) error {
	if s.devMode {
		log.Printf("📧 [DEV EMAIL] To: %s | Subject: %s", to, subject)
		log.Printf("📧 Body:\n%s", htmlBody)
		return nil
	}

	message := buildMessage(s.from, to, subject, htmlBody)

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, []string{to}, message)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}

// SendDailyDigest reports the last day of relay activity to the operator.
func (s *EmailService) SendDailyDigest(to string, stats models.ActivityStats) error {
	subject := fmt.Sprintf("Sideio daily digest: %d audits, %d leads", stats.Audits, stats.Leads)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 520px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: linear-gradient(135deg, #10b981 0%%, #14b8a6 100%%); padding: 24px 32px;">
      <h1 style="color: white; margin: 0; font-size: 20px; font-weight: 700;">Sideio · Daily Digest</h1>
    </div>
    <div style="padding: 32px; color: #1e293b; font-size: 14px; line-height: 1.6;">
      <p style="margin: 0 0 8px;"><strong>Audits relayed:</strong> %d</p>
      <p style="margin: 0 0 8px;"><strong>Site entries:</strong> %d</p>
      <p style="margin: 0 0 8px;"><strong>New leads:</strong> %d</p>
      <p style="color: #94a3b8; font-size: 12px; margin: 24px 0 0;">%s to %s</p>
    </div>
  </div>
</body>
</html>`,
		stats.Audits, stats.Visits, stats.Leads,
		stats.Since.Format("2006-01-02 15:04 MST"), stats.Until.Format("2006-01-02 15:04 MST"),
	)

	return s.sendHTML(to, subject, body)
}

// buildMessage assembles the RFC 5322 message. The subject is Q-encoded so
// user-supplied text can neither break out of the header nor arrive as raw
// non-ASCII bytes.
func buildMessage(from, to, subject, htmlBody string) []byte {
	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody)
}
