// Package delivery hands issued passcodes to the channel that reaches the user.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/biteguide-api/internal/domain"
	"github.com/biteguide-api/internal/pkg/logger"
	"go.uber.org/zap"
)

const EmailSubject = "Your BiteGuide verification code"

// EmailBody is the text sent with every email passcode. A zero validity drops
// the expiry sentence.
func EmailBody(code string, validity time.Duration) string {
	return fmt.Sprintf("Your OTP is: %s.", code) + expirySuffix(validity)
}

// SMSBody is the text sent with every phone confirmation code.
func SMSBody(code string, validity time.Duration) string {
	return fmt.Sprintf("Your BiteGuide code is %s.", code) + expirySuffix(validity)
}

func expirySuffix(validity time.Duration) string {
	if validity <= 0 {
		return ""
	}
	return " It expires in " + humanDuration(validity) + "."
}

// humanDuration spells d in the largest whole unit, rounding seconds up.
func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int64(d/time.Minute), "minute")
	default:
		return plural(int64((d+time.Second-1)/time.Second), "second")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Gateway sends code to identifier. Any failure wraps domain.ErrDeliveryFailure.
type Gateway interface {
	Send(ctx context.Context, identifier, code string) error
}

// HTTPGateway posts {email, otp} to a remote send function. Anything other than
// 200 counts as a failed delivery; there are no retries.
type HTTPGateway struct {
	endpoint string
	client   *http.Client
}

func NewHTTPGateway(endpoint string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPGateway{endpoint: endpoint, client: client}
}

type sendRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (g *HTTPGateway) Send(ctx context.Context, identifier, code string) error {
	body, err := json.Marshal(sendRequest{Email: identifier, OTP: code})
	if err != nil {
		return fmt.Errorf("encode delivery request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build delivery request: %w", domain.ErrDeliveryFailure)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("post delivery request: %v: %w", err, domain.ErrDeliveryFailure)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delivery endpoint returned %d: %w", resp.StatusCode, domain.ErrDeliveryFailure)
	}
	return nil
}

// Mailer is implemented by the SMTP and Resend clients.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type MailGateway struct {
	mailer   Mailer
	validity time.Duration
}

// NewMailGateway quotes validity in the message; it should match the OTP window.
func NewMailGateway(m Mailer, validity time.Duration) *MailGateway {
	return &MailGateway{mailer: m, validity: validity}
}

func (g *MailGateway) Send(ctx context.Context, identifier, code string) error {
	if err := g.mailer.SendEmail(ctx, identifier, EmailSubject, EmailBody(code, g.validity)); err != nil {
		return fmt.Errorf("send email: %v: %w", err, domain.ErrDeliveryFailure)
	}
	return nil
}

// SMSSender is implemented by the SNS client.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// SMSGateway texts phone confirmation codes. identifier is an E.164 number.
type SMSGateway struct {
	sender   SMSSender
	validity time.Duration
}

func NewSMSGateway(s SMSSender, validity time.Duration) *SMSGateway {
	return &SMSGateway{sender: s, validity: validity}
}

func (g *SMSGateway) Send(ctx context.Context, identifier, code string) error {
	if err := g.sender.SendSMS(ctx, identifier, SMSBody(code, g.validity)); err != nil {
		return fmt.Errorf("send sms: %v: %w", err, domain.ErrDeliveryFailure)
	}
	return nil
}

// LogGateway writes the code to the log instead of sending it. Development only.
type LogGateway struct {
	log *zap.Logger
}

func NewLogGateway(log *zap.Logger) *LogGateway {
	return &LogGateway{log: logger.OrNop(log)}
}

func (g *LogGateway) Send(_ context.Context, identifier, code string) error {
	g.log.Info("otp delivery (log mode)", zap.String("identifier", identifier), zap.String("otp", code))
	return nil
}
