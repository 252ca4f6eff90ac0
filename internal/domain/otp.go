package domain

import "time"

// OTPRecord is the one live passcode for an identifier.
// PK: email. Stored as { otp, timestamp } where timestamp is epoch milliseconds.
type OTPRecord struct {
	Identifier string `json:"email" dynamodbav:"email"`
	Code       string `json:"otp" dynamodbav:"otp"`
	Timestamp  int64  `json:"timestamp" dynamodbav:"timestamp"`
}

// IssuedAt returns Timestamp as a time.Time.
func (r *OTPRecord) IssuedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// ExpiredAt reports whether now - issuedAt exceeds window.
func (r *OTPRecord) ExpiredAt(now time.Time, window time.Duration) bool {
	return now.UnixMilli()-r.Timestamp > window.Milliseconds()
}
