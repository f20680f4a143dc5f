package email

import "log/slog"

// LogSender writes codes to the log instead of sending mail. Used when no
// Resend API key is configured, typically in local development.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) SendOTP(to, code string) error {
	s.Logger.Info("otp email (not sent)", "to", to, "code", code)
	return nil
}

func (s LogSender) SendPasswordReset(to, code string) error {
	s.Logger.Info("password reset email (not sent)", "to", to, "code", code)
	return nil
}
