package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tokamak-network/pages-deployer/internal/consts"
	"github.com/tokamak-network/pages-deployer/internal/logger"
	"github.com/tokamak-network/pages-deployer/pkg/metrics"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

var ErrDeliveryFailed = errors.New("notification delivery failed")

// Notifier posts JSON payloads to evaluation callbacks. Only HTTP 200 counts
// as delivered; anything else is retried on an exponential schedule.
type Notifier struct {
	client         *http.Client
	maxAttempts    int
	initialBackoff time.Duration
	attemptTimeout time.Duration
	newTimer       func() backoff.Timer
	metrics        *metrics.Metrics
}

type Option func(*Notifier)

func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) { n.client = client }
}

// WithTimer replaces the timer used between attempts.
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(n *Notifier) { n.newTimer = newTimer }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

func WithMaxAttempts(attempts int) Option {
	return func(n *Notifier) {
		if attempts > 0 {
			n.maxAttempts = attempts
		}
	}
}

func New(opts ...Option) *Notifier {
	n := &Notifier{
		client:         &http.Client{Timeout: consts.NotifyAttemptTimeout},
		maxAttempts:    consts.NotifyMaxAttempts,
		initialBackoff: consts.NotifyInitialBackoff,
		attemptTimeout: consts.NotifyAttemptTimeout,
		newTimer:       func() backoff.Timer { return nil },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// schedule waits 1, 2, 4, 8... units between attempts, without jitter, and
// stops after maxAttempts in total.
func (n *Notifier) schedule(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = n.initialBackoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = n.initialBackoff << uint(n.maxAttempts)
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(n.maxAttempts-1)), ctx)
}

func (n *Notifier) Notify(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	log := logger.With(zap.String("url", url))
	attempt := 0
	var lastErr error

	operation := func() error {
		attempt++
		err := n.post(ctx, url, body)
		if err != nil {
			lastErr = err
			log.Warn("Notification attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		log.Info("Notification delivered", zap.Int("attempt", attempt))
		return nil
	}
	onRetry := func(_ error, wait time.Duration) {
		log.Info("Waiting before next notification attempt", zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotifyWithTimer(operation, n.schedule(ctx), onRetry, n.newTimer()); err != nil {
		n.metrics.ObserveNotification(false)
		log.Error("Notification abandoned", zap.Int("attempts", attempt), zap.Error(lastErr))
		if lastErr == nil {
			lastErr = err
		}
		return fmt.Errorf("%w after %d attempts: %v", ErrDeliveryFailed, attempt, lastErr)
	}
	n.metrics.ObserveNotification(true)
	return nil
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, n.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		// A malformed URL will not get better on retry.
		n.metrics.ObserveNotificationAttempt("invalid_request")
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.metrics.ObserveNotificationAttempt("transport_error")
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		n.metrics.ObserveNotificationAttempt("unexpected_status")
		return fmt.Errorf("evaluation URL returned status %d", resp.StatusCode)
	}
	n.metrics.ObserveNotificationAttempt("success")
	return nil
}
