// Package mailer sends transactional email through the Resend HTTP
// API. Without an API key it degrades to printing the message, which
// keeps local development working with no external account.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const resendAPI = "https://api.resend.com/emails"

// Attachment is a file attached to an outgoing email. Resend expects
// base64-encoded content.
type Attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// NewAttachment base64-encodes raw bytes into an Attachment.
func NewAttachment(filename string, data []byte) Attachment {
	return Attachment{Filename: filename, Content: base64.StdEncoding.EncodeToString(data)}
}

type message struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Mailer posts messages to the provider API.
//
// Fields:
//
//	apiKey – provider credential; empty enables mock mode.
//	from   – sender in "Name <addr>" form.
//	client – HTTP client with a request timeout.
type Mailer struct {
	apiKey string
	from   string
	client *http.Client
}

// New constructs a Mailer. An empty apiKey selects mock mode.
func New(apiKey, from string) *Mailer {
	return &Mailer{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one HTML email. In mock mode the message is printed
// and Send reports success.
func (m *Mailer) Send(ctx context.Context, to, subject, html string, atts ...Attachment) error {
	if m.apiKey == "" {
		log.Printf("mailer: no API key set, mock email to %s: %s (%d attachments)", to, subject, len(atts))
		return nil
	}
	body, err := json.Marshal(message{
		From:        m.from,
		To:          to,
		Subject:     subject,
		HTML:        html,
		Attachments: atts,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendAPI, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider error: %s", resp.Status)
	}
	return nil
}
