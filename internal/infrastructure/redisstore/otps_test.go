package redisstore

import (
	"errors"
	"testing"

	"github.com/biteguide-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	rec, err := parseRecord("a@b.com", map[string]string{"otp": "123456", "timestamp": "1700000000000"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", rec.Identifier)
	assert.Equal(t, "123456", rec.Code)
	assert.Equal(t, int64(1700000000000), rec.Timestamp)
}

func TestParseRecord_EmptyIsNotFound(t *testing.T) {
	_, err := parseRecord("a@b.com", map[string]string{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestParseRecord_BadTimestamp(t *testing.T) {
	_, err := parseRecord("a@b.com", map[string]string{"otp": "123456", "timestamp": "yesterday"})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "otp:phone:+447400123456", recordKey("phone:+447400123456"))
}

func TestNewOTPRepo_NilClient(t *testing.T) {
	_, err := NewOTPRepo(nil)
	assert.Error(t, err)
}
