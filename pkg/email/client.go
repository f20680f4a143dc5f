// Package email sends transactional mail through Resend.
package email

import (
	"fmt"

	"github.com/resendlabs/resend-go"
)

// Sender delivers account mail. Satisfied by Client and by test stubs.
type Sender interface {
	SendOTP(to, code string) error
	SendPasswordReset(to, code string) error
}

// Client wraps the Resend API client.
type Client struct {
	resend    *resend.Client
	fromEmail string
	fromName  string
}

// NewClient creates a Resend-backed mail client.
func NewClient(apiKey, fromEmail, fromName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if fromEmail == "" {
		fromEmail = "noreply@cegnal.app"
	}
	if fromName == "" {
		fromName = "Cegnal"
	}
	return &Client{
		resend:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendOTP emails a one-time verification code.
func (c *Client) SendOTP(to, code string) error {
	html := fmt.Sprintf(
		`<p>Your Cegnal verification code is:</p><h2 style="letter-spacing:4px">%s</h2><p>The code expires in 10 minutes. If you did not request it, ignore this email.</p>`,
		code,
	)
	return c.send(to, "Your Cegnal verification code", html)
}

// SendPasswordReset emails a password reset code.
func (c *Client) SendPasswordReset(to, code string) error {
	html := fmt.Sprintf(
		`<p>Use this code to reset your Cegnal password:</p><h2 style="letter-spacing:4px">%s</h2><p>The code expires in 10 minutes. If you did not request a reset, ignore this email.</p>`,
		code,
	)
	return c.send(to, "Reset your Cegnal password", html)
}

func (c *Client) send(to, subject, html string) error {
	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := c.resend.Emails.Send(request); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
