package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// ResendOptions configure the email API client.
type ResendOptions struct {
	// Endpoint is the API base URL, e.g. "https://api.resend.com".
	Endpoint string
	APIKey   string
	// From is the sender shown to recipients,
	// e.g. `Echi Time Capsules <capsules@echi.app>`.
	From string
	// Timeout bounds one Send call including retries.
	Timeout time.Duration
}

// ResendNotifier sends email through a Resend-compatible HTTP JSON API.
// Transient failures (5xx, 429, network errors) are retried with fibonacci
// backoff inside the Send deadline; other API errors fail immediately.
type ResendNotifier struct {
	opts        ResendOptions
	client      *http.Client
	backoffBase time.Duration
	maxRetries  uint64
}

func NewResendNotifier(opts ResendOptions) *ResendNotifier {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &ResendNotifier{
		opts:        opts,
		client:      &http.Client{},
		backoffBase: 500 * time.Millisecond,
		maxRetries:  2,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (n *ResendNotifier) Send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(sendRequest{
		From:    n.opts.From,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("send request marshal error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(n.maxRetries, retry.NewFibonacci(n.backoffBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return n.sendOnce(ctx, payload)
	})
}

func (n *ResendNotifier) sendOnce(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.opts.Endpoint+"/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return retry.RetryableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err = fmt.Errorf("email api status %d: %s", resp.StatusCode, bytes.TrimSpace(body))

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return retry.RetryableError(err)
	}
	return err
}
