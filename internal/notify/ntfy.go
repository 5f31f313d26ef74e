package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aknowles/ssbball/internal/config"
	appLog "github.com/aknowles/ssbball/internal/log"
)

// Sender posts composed messages to an ntfy server. ntfy's publish API
// is a plain POST to {server}/{topic} with metadata in headers.
type Sender struct {
	server string
	token  string
	client *http.Client
}

// NewSender builds a Sender from the notify config.
func NewSender(nc config.NotifyConfig) *Sender {
	return &Sender{
		server: strings.TrimRight(nc.Server, "/"),
		token:  nc.Token,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send publishes a single message.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if msg.Topic == "" {
		return errors.New("message topic is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.server+"/"+msg.Topic, strings.NewReader(msg.Body))
	if err != nil {
		return err
	}
	req.Header.Set("Title", msg.Title)
	if msg.Priority != "" {
		req.Header.Set("Priority", msg.Priority)
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("ntfy publish failed: " + resp.Status)
	}
	return nil
}

// SendAll publishes every message, isolating per-message failures: one
// team's delivery error never blocks another team's notification.
// Returns the number sent successfully.
func (s *Sender) SendAll(ctx context.Context, msgs []Message) int {
	sent := 0
	for _, msg := range msgs {
		if err := s.Send(ctx, msg); err != nil {
			appLog.Error("notification send failed", err, "topic", msg.Topic)
			continue
		}
		appLog.Info("notification sent", "topic", msg.Topic, "priority", msg.Priority)
		sent++
	}
	return sent
}
