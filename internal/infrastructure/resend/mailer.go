package resend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/biteguide-api/internal/pkg/token"
	"github.com/resend/resend-go/v2"
)

const maxAttempts = 3

type emailSender interface {
	SendWithOptions(ctx context.Context, params *resend.SendEmailRequest, options *resend.SendEmailOptions) (*resend.SendEmailResponse, error)
}

// Mailer sends emails through the Resend REST API, retrying rate limits and
// transient network failures.
type Mailer struct {
	from   string
	emails emailSender
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewMailer(apiKey, from string) (*Mailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &Mailer{
		from:   from,
		emails: resend.NewClient(apiKey).Emails,
		sleep:  sleepCtx,
	}, nil
}

// SendEmail sends a plain-text email. Every attempt carries the same
// idempotency key so a retried timeout is not delivered twice.
func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	key, err := token.NewIdempotencyKey()
	if err != nil {
		return err
	}
	return m.send(ctx, to, subject, body, key)
}

func (m *Mailer) send(ctx context.Context, to, subject, body, idempotencyKey string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	options := &resend.SendEmailOptions{}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		options.IdempotencyKey = key
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		_, err := m.emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		wait, ok := retryDelay(err, attempt)
		if !ok {
			return fmt.Errorf("resend send failed: %w", err)
		}
		if err := m.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func retryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}
	return 0, false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
