// file: internals/helpers/mailer/mailer.go
package mailer

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"os"
	"strings"
)

// Mailer sends the staff-notification mail. Interface so the submission
// pipeline can be tested with a fake.
type Mailer interface {
	SendMail(to, subject, html string, attachments []Attachment) error
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FetchAttachment downloads a public image URL so it can be inlined
// base64-encoded into the mail.
func FetchAttachment(publicURL, filename string) (*Attachment, error) {
	resp, err := http.Get(publicURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch attachment status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Attachment{Filename: filename, ContentType: ct, Data: data}, nil
}

// SMTPMailer sends via plain SMTP with STARTTLS (port 587 style).
type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	Password string
}

// NewSMTPMailerFromEnv reads SMTP_HOST/SMTP_PORT/SMTP_FROM/SMTP_PASSWORD.
func NewSMTPMailerFromEnv() *SMTPMailer {
	return &SMTPMailer{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     getenv("SMTP_PORT", "587"),
		From:     os.Getenv("SMTP_FROM"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

const mimeBoundary = "visitorku-mail-boundary"

func (m *SMTPMailer) SendMail(to, subject, html string, attachments []Attachment) error {
	if m.Host == "" || m.From == "" {
		return fmt.Errorf("SMTP_HOST or SMTP_FROM is not set")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	for _, att := range attachments {
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		fmt.Fprintf(&b, "Content-Type: %s\r\n", att.ContentType)
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n\r\n", att.Filename)
		b.WriteString(wrap76(base64.StdEncoding.EncodeToString(att.Data)))
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, []byte(b.String()))
}

// wrap76 folds base64 payload at the 76-char MIME line limit
func wrap76(s string) string {
	var b strings.Builder
	for len(s) > 76 {
		b.WriteString(s[:76])
		b.WriteString("\r\n")
		s = s[76:]
	}
	b.WriteString(s)
	return b.String()
}
