// Package email sends practice notifications over SMTP or the Mailgun API.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// ErrNotConfigured is returned when no transport has been configured.
var ErrNotConfigured = errors.New("email not configured")

// Config holds transport configuration. Mailgun wins when its domain and key
// are both set; otherwise SMTP is used.
type Config struct {
	Host          string
	Port          string
	Username      string
	Password      string
	From          string
	FromName      string
	MailgunDomain string
	MailgunAPIKey string
	MailgunAPIURL string
}

// Message is a single outgoing email.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Service provides email sending
type Service struct {
	config Config
	sender Sender
}

// NewService creates a new email service
func NewService(config Config) *Service {
	s := &Service{config: config}
	switch {
	case config.From == "":
	case config.MailgunDomain != "" && config.MailgunAPIKey != "":
		s.sender = newMailgunSender(config)
	case config.Host != "" && config.Port != "":
		s.sender = newSMTPSender(config)
	}
	return s
}

// NewServiceWithSender wraps an existing Sender.
func NewServiceWithSender(config Config, sender Sender) *Service {
	return &Service{config: config, sender: sender}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s != nil && s.sender != nil
}

// Transport names the active transport: "mailgun", "smtp" or "none".
func (s *Service) Transport() string {
	if !s.IsConfigured() {
		return "none"
	}
	switch s.sender.(type) {
	case *mailgunSender:
		return "mailgun"
	case *smtpSender:
		return "smtp"
	default:
		return "custom"
	}
}

func (s *Service) Send(ctx context.Context, msg Message) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("email: no recipients")
	}
	return s.sender.Send(ctx, msg)
}

// ContactData is rendered into the contact notification.
type ContactData struct {
	SiteName string
	Name     string
	Email    string
	Phone    string
	Message  string
	Received time.Time
}

// SendContactNotification mails a contact-form submission to the practice
// with Reply-To set to the submitter.
func (s *Service) SendContactNotification(ctx context.Context, to []string, data ContactData) error {
	if data.SiteName == "" {
		data.SiteName = s.config.FromName
	}
	html, err := renderTemplate(contactEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render contact template: %w", err)
	}
	return s.Send(ctx, Message{
		To:      to,
		ReplyTo: data.Email,
		Subject: fmt.Sprintf("Contactformulier: %s", data.Name),
		Text:    contactText(data),
		HTML:    html,
	})
}

func contactText(data ContactData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Naam: %s\n", data.Name)
	fmt.Fprintf(&b, "E-mail: %s\n", data.Email)
	if data.Phone != "" {
		fmt.Fprintf(&b, "Telefoon: %s\n", data.Phone)
	}
	fmt.Fprintf(&b, "\n%s\n", data.Message)
	return b.String()
}

func fromHeader(cfg Config) string {
	if cfg.FromName != "" {
		return fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	return cfg.From
}

type smtpSender struct {
	config Config
	server string
	auth   smtp.Auth
}

func newSMTPSender(config Config) *smtpSender {
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &smtpSender{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// Send writes a multipart/alternative message. net/smtp has no context
// support so ctx is only checked before dialing.
func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return smtp.SendMail(s.server, s.auth, s.config.From, msg.To, buildMIME(fromHeader(s.config), msg))
}

const mimeBoundary = "boundary-site-notification"

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue folds line breaks so a value cannot start a new header.
func headerValue(v string) string {
	return headerBreaks.Replace(v)
}

func buildMIME(from string, msg Message) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "To: %s\r\n", headerValue(strings.Join(msg.To, ", ")))
	fmt.Fprintf(&buf, "From: %s\r\n", headerValue(from))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", headerValue(msg.ReplyTo))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	if msg.HTML == "" {
		fmt.Fprintf(&buf, "Content-Type: text/plain; charset=UTF-8\r\n\r\n%s", msg.Text)
		return buf.Bytes()
	}
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", msg.Text)

	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", msg.HTML)
	fmt.Fprintf(&buf, "--%s--\r\n", mimeBoundary)
	return buf.Bytes()
}

type mailgunSender struct {
	config Config
	client *mailgun.MailgunImpl
}

func newMailgunSender(config Config) *mailgunSender {
	client := mailgun.NewMailgun(config.MailgunDomain, config.MailgunAPIKey)
	if config.MailgunAPIURL != "" {
		client.SetAPIBase(config.MailgunAPIURL)
	}
	return &mailgunSender{config: config, client: client}
}

func (s *mailgunSender) Send(ctx context.Context, msg Message) error {
	message := s.client.NewMessage(headerValue(fromHeader(s.config)), headerValue(msg.Subject), msg.Text, msg.To...)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}
	if msg.ReplyTo != "" {
		message.AddHeader("Reply-To", headerValue(msg.ReplyTo))
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, _, err := s.client.Send(sendCtx, message); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Nieuw bericht via {{.SiteName}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #2a7a6f; padding-bottom: 10px; margin-bottom: 20px; }
        .field { margin: 4px 0; }
        .label { font-weight: 600; }
        .message { white-space: pre-wrap; background: #f6f8f8; padding: 12px; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.SiteName}}</h1>
    </div>

    <h2>Nieuw bericht via het contactformulier</h2>

    <p class="field"><span class="label">Naam:</span> {{.Name}}</p>
    <p class="field"><span class="label">E-mail:</span> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
    {{if .Phone}}<p class="field"><span class="label">Telefoon:</span> {{.Phone}}</p>{{end}}

    <div class="message">{{.Message}}</div>

    <div class="footer">
        <p>Ontvangen op {{.Received.Format "02-01-2006 15:04"}}. Beantwoord deze e-mail om direct te reageren.</p>
    </div>
</body>
</html>`
