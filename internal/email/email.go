package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ibcoder/portfolio/internal/logging"
)

const resendEndpoint = "https://api.resend.com/emails"

// --- LogSender (for development) ---

// LogSender prints emails to the log instead of sending them.
type LogSender struct {
	senderAddress string
}

// NewLogSender creates a LogSender that reports from as the sender.
func NewLogSender(from string) *LogSender {
	return &LogSender{senderAddress: from}
}

// Send logs the email content.
func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	logging.FromContext(ctx).Info("Email sent (logged)",
		"from", s.senderAddress,
		"to", to,
		"subject", subject,
		"body", htmlBody,
	)
	return nil
}

// --- ResendSender (for production) ---

// ResendSender sends emails using the Resend API.
type ResendSender struct {
	apiKey        string
	senderAddress string
	endpoint      string
	client        *http.Client
}

// NewResendSender creates a ResendSender. An empty endpoint uses the public API.
func NewResendSender(apiKey, from, endpoint string) *ResendSender {
	if endpoint == "" {
		endpoint = resendEndpoint
	}
	return &ResendSender{
		apiKey:        apiKey,
		senderAddress: from,
		endpoint:      endpoint,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send dispatches an email using the Resend API.
func (s *ResendSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	sender := s.senderAddress
	if sender == "" {
		sender = "Portfolio <onboarding@resend.dev>"
	}

	body, err := json.Marshal(resendPayload{
		From:    sender,
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API returned an error: status %d", resp.StatusCode)
	}

	slog.InfoContext(ctx, "Successfully sent email via Resend", "to", to, "subject", subject)
	return nil
}
