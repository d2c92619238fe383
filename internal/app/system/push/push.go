// internal/app/system/push/push.go

// Package push delivers device notifications through an FCM-compatible HTTP
// endpoint. Delivery is strictly best-effort: failures are logged and
// counted, never returned to the workflow that triggered them.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tagauto/tagauto/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Sender posts notifications. A nil *Sender is valid and drops everything,
// so push can be disabled by leaving the endpoint unconfigured.
type Sender struct {
	endpoint  string
	serverKey string
	hc        *http.Client
	log       *zap.Logger
}

// New builds a Sender, or nil when endpoint is empty.
func New(endpoint, serverKey string, log *zap.Logger) *Sender {
	if endpoint == "" {
		return nil
	}
	return &Sender{
		endpoint:  endpoint,
		serverKey: serverKey,
		hc:        &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

type message struct {
	To           string            `json:"to"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send delivers a notification to the device token. No error is returned;
// an empty token is counted and skipped.
func (s *Sender) Send(ctx context.Context, token, title, body string, data map[string]string) {
	if s == nil {
		return
	}
	if token == "" {
		metrics.PushSends.WithLabelValues("no_token").Inc()
		return
	}
	if err := s.post(ctx, message{To: token, Notification: notification{Title: title, Body: body}, Data: data}); err != nil {
		metrics.PushSends.WithLabelValues("failed").Inc()
		s.log.Warn("push delivery failed", zap.Error(err))
		return
	}
	metrics.PushSends.WithLabelValues("sent").Inc()
}

func (s *Sender) post(ctx context.Context, m message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.serverKey != "" {
		req.Header.Set("Authorization", "key="+s.serverKey)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}
