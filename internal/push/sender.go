package push

import (
	"bytes"         // Request body buffer
	"context"       // Request-scoped context
	"encoding/json" // JSON encoding/decoding
	"fmt"           // Error formatting
	"io"            // Response draining
	"net/http"      // HTTP client
	"time"          // Client timeout
)

// Message is one push notification addressed to a device token
type Message struct {
	To    string         `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data"`
}

// Sender delivers push messages to a gateway
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ExpoSender posts messages to the Expo push API
type ExpoSender struct {
	endpoint string
	client   *http.Client
}

// NewExpoSender returns a sender for endpoint with the given request timeout
func NewExpoSender(endpoint string, timeout time.Duration) *ExpoSender {
	return &ExpoSender{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

type expoRequest struct {
	Message
	Sound    string `json:"sound"`
	Priority string `json:"priority"`
}

type expoResponse struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

// Send delivers msg; a non-2xx status or an error ticket is reported as an error
func (s *ExpoSender) Send(ctx context.Context, msg Message) error {
	if msg.Data == nil {
		msg.Data = map[string]any{}
	}
	body, err := json.Marshal(expoRequest{Message: msg, Sound: "default", Priority: "high"})
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("push gateway returned %s", resp.Status)
	}
	var ticket expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		return nil // Accepted without a readable ticket
	}
	if ticket.Data.Status == "error" {
		return fmt.Errorf("push rejected: %s", ticket.Data.Message)
	}
	return nil
}
