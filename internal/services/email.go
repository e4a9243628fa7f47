package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/resend/resend-go/v2"

	"github.com/sealbox/sealbox/internal/config"
	"github.com/sealbox/sealbox/internal/logging"
)

const (
	VerificationCodeExpiry = 15 * time.Minute
	verificationCodeLength = 6
)

var (
	ErrVerificationCodeInvalid = errors.New("invalid verification code")
	ErrVerificationCodeExpired = errors.New("verification code expired")
)

// Email represents an email to be sent
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailProvider is the interface for sending emails
type EmailProvider interface {
	Send(ctx context.Context, email *Email) error
}

// EmailService issues and checks email verification codes and sends the
// transactional mail around them.
type EmailService struct {
	provider    EmailProvider
	db          DB
	fromAddress string
	fromName    string
}

// NewEmailService creates a new email service based on configuration
func NewEmailService(cfg *config.EmailConfig, db DB) *EmailService {
	var provider EmailProvider

	switch cfg.Provider {
	case "resend":
		provider = NewResendProvider(cfg.ResendAPIKey, cfg.FromAddress, cfg.FromName)
	case "smtp":
		provider = NewSMTPProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.FromAddress, cfg.FromName)
	default:
		provider = NewConsoleProvider()
	}

	return &EmailService{
		provider:    provider,
		db:          db,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}
}

// GenerateVerificationCode returns a short uppercase alphanumeric code. The
// alphabet leaves out 0/O and 1/I so codes survive being read aloud.
func GenerateVerificationCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	bytes := make([]byte, verificationCodeLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}

	code := make([]byte, verificationCodeLength)
	for i, b := range bytes {
		code[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(code), nil
}

// SendVerificationCode stores a fresh code for the email address, replacing
// any earlier one, and mails it out.
func (s *EmailService) SendVerificationCode(ctx context.Context, email, name string) (string, error) {
	code, err := GenerateVerificationCode()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(VerificationCodeExpiry)
	_, err = s.db.Exec(ctx,
		`INSERT INTO email_verification_codes (email, code, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET code = $2, expires_at = $3, created_at = NOW()`,
		email, code, expiresAt)
	if err != nil {
		return "", fmt.Errorf("storing verification code: %w", err)
	}

	html, text := s.renderVerificationEmail(name, code)

	err = s.provider.Send(ctx, &Email{
		To:      email,
		Subject: "Your Sealbox verification code",
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		return "", err
	}

	return code, nil
}

// VerifyCode checks the code for an email address and burns it on success.
func (s *EmailService) VerifyCode(ctx context.Context, email, code string) error {
	var stored string
	var expiresAt time.Time
	err := s.db.QueryRow(ctx,
		`SELECT code, expires_at FROM email_verification_codes WHERE email = $1`,
		email).Scan(&stored, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVerificationCodeInvalid
	}
	if err != nil {
		return fmt.Errorf("querying verification code: %w", err)
	}

	if time.Now().After(expiresAt) {
		return ErrVerificationCodeExpired
	}
	if stored != code {
		return ErrVerificationCodeInvalid
	}

	_, err = s.db.Exec(ctx,
		`DELETE FROM email_verification_codes WHERE email = $1`, email)
	if err != nil {
		logging.Error("Failed to delete verification code", map[string]interface{}{"error": err.Error(), "email": email})
	}

	return nil
}

// SendCapsuleInvite notifies an invitee that a capsule was shared with them.
func (s *EmailService) SendCapsuleInvite(ctx context.Context, email, inviteeName, ownerName, capsuleTitle string) error {
	html, text := s.renderCapsuleInviteEmail(inviteeName, ownerName, capsuleTitle)

	return s.provider.Send(ctx, &Email{
		To:      email,
		Subject: fmt.Sprintf("%s shared a time capsule with you", ownerName),
		HTML:    html,
		Text:    text,
	})
}

// Email templates

func (s *EmailService) renderVerificationEmail(name, code string) (html, text string) {
	html = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #333; font-size: 24px;">Welcome to Sealbox, %s!</h1>

  <p>Enter this code to verify your email address:</p>

  <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold; color: #4F46E5; margin: 20px 0;">%s</p>

  <p style="color: #666; font-size: 14px;">
    This code expires in 15 minutes. If you didn't create an account, you can ignore this email.
  </p>

  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
  <p style="color: #999; font-size: 12px;">Sealbox</p>
</body>
</html>`, name, code)

	text = fmt.Sprintf(`Welcome to Sealbox, %s!

Enter this code to verify your email address:

%s

This code expires in 15 minutes.

If you didn't create an account, you can ignore this email.

--
Sealbox`, name, code)

	return html, text
}

func (s *EmailService) renderCapsuleInviteEmail(inviteeName, ownerName, capsuleTitle string) (html, text string) {
	html = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #333; font-size: 24px;">Hi %s,</h1>

  <p>%s invited you to contribute to the time capsule <strong>%s</strong>.</p>

  <p>Sign in to Sealbox to add your memories before it is sealed.</p>

  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
  <p style="color: #999; font-size: 12px;">Sealbox</p>
</body>
</html>`, inviteeName, ownerName, capsuleTitle)

	text = fmt.Sprintf(`Hi %s,

%s invited you to contribute to the time capsule "%s".

Sign in to Sealbox to add your memories before it is sealed.

--
Sealbox`, inviteeName, ownerName, capsuleTitle)

	return html, text
}

// ResendProvider sends emails using the Resend API
type ResendProvider struct {
	client *resend.Client
	from   string
}

func NewResendProvider(apiKey, fromAddress, fromName string) *ResendProvider {
	return &ResendProvider{
		client: resend.NewClient(apiKey),
		from:   fmt.Sprintf("%s <%s>", fromName, fromAddress),
	}
}

func (p *ResendProvider) Send(ctx context.Context, email *Email) error {
	params := &resend.SendEmailRequest{
		From:    p.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	_, err := p.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("sending email via Resend: %w", err)
	}

	logging.Info("Email sent via Resend", map[string]interface{}{"to": email.To, "subject": email.Subject})
	return nil
}

// SMTPProvider sends emails via SMTP (for Mailpit in local dev)
type SMTPProvider struct {
	host string
	port int
	from string
	addr string
}

func NewSMTPProvider(host string, port int, fromAddress, fromName string) *SMTPProvider {
	return &SMTPProvider{
		host: host,
		port: port,
		from: fromAddress,
		addr: fmt.Sprintf("%s <%s>", fromName, fromAddress),
	}
}

func (p *SMTPProvider) Send(ctx context.Context, email *Email) error {
	addr := fmt.Sprintf("%s:%d", p.host, p.port)

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", p.addr))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", email.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTML)

	err := smtp.SendMail(addr, nil, p.from, []string{email.To}, buf.Bytes())
	if err != nil {
		return fmt.Errorf("sending email via SMTP: %w", err)
	}

	logging.Info("Email sent via SMTP", map[string]interface{}{"to": email.To, "subject": email.Subject})
	return nil
}

// ConsoleProvider logs emails to console (for development)
type ConsoleProvider struct{}

func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

func (p *ConsoleProvider) Send(ctx context.Context, email *Email) error {
	logging.Info("=== EMAIL (Console Provider) ===", map[string]interface{}{"to": email.To, "subject": email.Subject})
	fmt.Printf("\n=== EMAIL ===\n")
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("---\n")
	fmt.Printf("%s\n", email.Text)
	fmt.Printf("=============\n\n")
	return nil
}
