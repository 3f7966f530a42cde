// File: /services/email_service.go
package services

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"zyncchat-api/config"
)

// PasswordResetMailer delivers password reset links.
type PasswordResetMailer interface {
	SendPasswordResetEmail(email, name, resetURL string) error
}

type EmailService struct {
	config config.EmailConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

func NewEmailService(cfg config.EmailConfig, logger *zap.Logger) *EmailService {
	return &EmailService{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		logger: logger,
	}
}

// SendPasswordResetEmail mails a reset link valid for ten minutes.
func (es *EmailService) SendPasswordResetEmail(email, name, resetURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "ZyncChat - Password Reset")

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Password Reset</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #4f46e5; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .btn { display: inline-block; background: #4f46e5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>ZyncChat</h1>
            <p>Password Reset</p>
        </div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p>We received a request to reset your password. Click the button below to choose a new one.</p>
            <p><a class="btn" href="%s">Reset password</a></p>
            <p><small>This link will expire in 10 minutes.</small></p>
            <p>If you didn't request a password reset, please ignore this email.</p>
            <p><strong>The ZyncChat Team</strong></p>
        </div>
        <div class="footer">
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, name, resetURL)

	textBody := fmt.Sprintf(`
Hello %s!

We received a request to reset your password. Open the link below to choose a new one:

%s

This link will expire in 10 minutes.

If you didn't request a password reset, please ignore this email.

The ZyncChat Team
`, name, resetURL)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.Error("failed to send password reset email", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("send password reset email: %w", err)
	}

	es.logger.Info("password reset email sent", zap.String("email", email))
	return nil
}
