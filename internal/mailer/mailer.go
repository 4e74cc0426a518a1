package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sceneyard/sceneyard/internal/models"
)

// Mailer sends notification emails through an HTTP email API. When no API
// URL is configured it is a no-op, so local development needs no key.
type Mailer struct {
	apiURL string
	apiKey string
	to     string
	client *http.Client
}

func New(apiURL, apiKey, to string) *Mailer {
	return &Mailer{
		apiURL: apiURL,
		apiKey: apiKey,
		to:     to,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether outbound email is configured.
func (m *Mailer) Enabled() bool {
	return m.apiURL != "" && m.apiKey != "" && m.to != ""
}

type emailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

// SendContactNotification forwards a stored contact message to the
// configured inbox. Callers treat failure as best-effort.
func (m *Mailer) SendContactNotification(ctx context.Context, msg *models.ContactMessage) error {
	if !m.Enabled() {
		return nil
	}

	payload := emailPayload{
		To:      m.to,
		Subject: fmt.Sprintf("New contact message from %s", msg.Name),
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
		ReplyTo: msg.Email,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}
	return nil
}
