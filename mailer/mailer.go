// Package mailer sends invoice notification emails.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"github.com/wneessen/go-mail"

	"invoice-backend/config"
)

var ErrNotConfigured = errors.New("email server not configured")

// InvoiceEmail is the content of one invoice notification.
type InvoiceEmail struct {
	To         string
	Subject    string
	FirstName  string
	InvoiceNo  string
	DueDate    string
	Total      string
	InvoiceURL string
}

type Sender interface {
	SendInvoice(ctx context.Context, e InvoiceEmail) error
}

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #333; margin-bottom: 20px;">Welcome, {{.FirstName}}!</h1>
  <div style="background-color: #f5f5f5; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
    <p style="margin: 10px 0;"><strong>Invoice No:</strong> {{.InvoiceNo}}</p>
    <p style="margin: 10px 0;"><strong>Due Date:</strong> {{.DueDate}}</p>
    <p style="margin: 10px 0;"><strong>Total:</strong> {{.Total}}</p>
  </div>
  <a href="{{.InvoiceURL}}" style="display: inline-block; background-color: #8c00ff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold;">Download Invoice</a>
  <p style="margin-top: 30px; color: #666; font-size: 14px;">Thank you for your business!</p>
</div>
`))

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`Welcome, {{.FirstName}}!

Invoice No: {{.InvoiceNo}}
Due Date: {{.DueDate}}
Total: {{.Total}}

Download Invoice: {{.InvoiceURL}}

Thank you for your business!
`))

// Render returns the HTML and plain-text bodies for e.
func Render(e InvoiceEmail) (html, text string, err error) {
	var hb, tb bytes.Buffer
	if err := htmlBody.Execute(&hb, e); err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	if err := textBody.Execute(&tb, e); err != nil {
		return "", "", fmt.Errorf("render text: %w", err)
	}
	return hb.String(), tb.String(), nil
}

// LongDate formats t as "March 1st, 2024".
func LongDate(t time.Time) string {
	d := t.Day()
	suffix := "th"
	if d < 11 || d > 13 {
		switch d % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%s %d%s, %d", t.Month(), d, suffix, t.Year())
}

// SMTP delivers over implicit TLS, the way port 465 servers expect.
type SMTP struct {
	cfg    config.EmailConfig
	logger *slog.Logger
}

func NewSMTP(cfg config.EmailConfig, logger *slog.Logger) *SMTP {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTP{cfg: cfg, logger: logger}
}

func (s *SMTP) message(e InvoiceEmail) (*mail.Msg, error) {
	html, text, err := Render(e)
	if err != nil {
		return nil, err
	}
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(e.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(e.Subject)
	m.SetMessageID()
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, text)
	m.AddAlternativeString(mail.TypeTextHTML, html)
	return m, nil
}

func (s *SMTP) SendInvoice(ctx context.Context, e InvoiceEmail) error {
	if strings.TrimSpace(s.cfg.Host) == "" {
		return ErrNotConfigured
	}
	m, err := s.message(e)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTimeout(30 * time.Second),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         s.cfg.Host,
			InsecureSkipVerify: s.cfg.Insecure,
		}),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.Error("email sending failed", "to", e.To, "invoice_no", e.InvoiceNo, "error", err)
		return fmt.Errorf("send email: %w", err)
	}
	s.logger.Info("email sent", "to", e.To, "invoice_no", e.InvoiceNo)
	return nil
}

// Recorder keeps sent emails in memory. Err, when set, is returned instead.
type Recorder struct {
	mu   sync.Mutex
	Sent []InvoiceEmail
	Err  error
}

func (r *Recorder) SendInvoice(_ context.Context, e InvoiceEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, e)
	return nil
}

func (r *Recorder) Last() (InvoiceEmail, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return InvoiceEmail{}, false
	}
	return r.Sent[len(r.Sent)-1], true
}
