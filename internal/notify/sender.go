package notify

import "github.com/talentseek/b2beelanding/pkg/logging"

// SenderConfig selects and configures an email provider.
type SenderConfig struct {
	Provider       string
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	SMTP           SMTPConfig
}

// NewSender returns the configured EmailSender, or nil when the selected
// provider lacks credentials. A nil result means email is disabled.
func NewSender(cfg SenderConfig, ses SESAPI, logger *logging.Logger) EmailSender {
	switch cfg.Provider {
	case "sendgrid":
		if s := NewSendGridSender(SendGridConfig{APIKey: cfg.SendGridAPIKey, FromEmail: cfg.FromEmail, FromName: cfg.FromName}, logger); s != nil {
			return s
		}
	case "ses":
		if s := NewSESSender(ses, SESConfig{FromEmail: cfg.FromEmail, FromName: cfg.FromName}, logger); s != nil {
			return s
		}
	case "smtp":
		smtpCfg := cfg.SMTP
		smtpCfg.FromEmail = cfg.FromEmail
		smtpCfg.FromName = cfg.FromName
		if s := NewSMTPSender(smtpCfg, logger); s != nil {
			return s
		}
	case "stub":
		return NewStubEmailSender(logger)
	}
	return nil
}
