// Package redisstore keeps OTP records in Redis. Each record is a hash at
// otp:<identifier>; a sorted set scored by issue time lets the sweeper find
// stale codes without scanning the keyspace.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/biteguide-api/internal/domain"
	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix   = "otp:"
	issuedIndex = "otp:issued"

	hashCode      = "otp"
	hashTimestamp = "timestamp"
)

// deleteIssuedBefore removes the hash and its index entry only while the stored
// timestamp is below ARGV[1]. Returns 1 when removed, 0 otherwise.
var deleteIssuedBefore = redis.NewScript(`
local ts = redis.call('HGET', KEYS[1], ARGV[2])
if not ts or tonumber(ts) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[2], ARGV[3])
return 1
`)

type OTPRepo struct {
	client redis.UniversalClient
}

func NewOTPRepo(client redis.UniversalClient) (*OTPRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil for OTPRepo")
	}
	return &OTPRepo{client: client}, nil
}

func recordKey(identifier string) string { return keyPrefix + identifier }

func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, recordKey(rec.Identifier))
		p.HSet(ctx, recordKey(rec.Identifier), hashCode, rec.Code, hashTimestamp, rec.Timestamp)
		p.ZAdd(ctx, issuedIndex, &redis.Z{Score: float64(rec.Timestamp), Member: rec.Identifier})
		return nil
	})
	return err
}

func (r *OTPRepo) Get(ctx context.Context, identifier string) (*domain.OTPRecord, error) {
	fields, err := r.client.HGetAll(ctx, recordKey(identifier)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return parseRecord(identifier, fields)
}

func (r *OTPRepo) Delete(ctx context.Context, identifier string) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, recordKey(identifier))
		p.ZRem(ctx, issuedIndex, identifier)
		return nil
	})
	return err
}

func (r *OTPRepo) DeleteIssuedBefore(ctx context.Context, identifier string, cutoffMillis int64) (bool, error) {
	n, err := deleteIssuedBefore.Run(ctx, r.client,
		[]string{recordKey(identifier), issuedIndex},
		cutoffMillis, hashTimestamp, identifier,
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *OTPRepo) ListIssuedBefore(ctx context.Context, cutoffMillis int64) ([]domain.OTPRecord, error) {
	ids, err := r.client.ZRangeByScore(ctx, issuedIndex, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoffMillis, 10),
	}).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.OTPRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			// Index entry outlived its hash; drop it.
			r.client.ZRem(ctx, issuedIndex, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// parseRecord converts an HGETALL reply. An empty reply means the key is absent.
func parseRecord(identifier string, fields map[string]string) (*domain.OTPRecord, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	ts, err := strconv.ParseInt(fields[hashTimestamp], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse otp timestamp for %s: %w", identifier, err)
	}
	return &domain.OTPRecord{
		Identifier: identifier,
		Code:       fields[hashCode],
		Timestamp:  ts,
	}, nil
}
