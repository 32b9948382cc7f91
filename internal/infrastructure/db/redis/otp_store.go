package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vetri-dj/ops-api/internal/core/domain"
	"github.com/vetri-dj/ops-api/internal/core/ports"
)

const (
	fieldCodeHash = "hash"
	fieldAttempts = "attempts"
)

// reserveAttempt counts an attempt before the code is compared and returns
// {hash, attempts}. A missing key stays missing so it never comes back
// without a TTL.
var reserveAttempt = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return false
end
local n = redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
return {redis.call("HGET", KEYS[1], ARGV[2]), n}
`)

// OTPStore keeps one hashed code per phone.
// Key format: otp:<phone> -> hash{hash, attempts}
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore creates an OTPStore wrapping the given Redis client.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

// Issue replaces any outstanding code for phone and resets its attempt count.
func (s *OTPStore) Issue(ctx context.Context, phone, codeHash string, ttl time.Duration) error {
	key := s.key(phone)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, fieldCodeHash, codeHash, fieldAttempts, 0)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("otp issue: %w", err)
	}
	return nil
}

// Reserve atomically spends one attempt on the outstanding code and returns
// the code hash with the attempt count including this one. Concurrent
// callers each observe a distinct count.
func (s *OTPStore) Reserve(ctx context.Context, phone string) (*ports.OTPEntry, error) {
	res, err := reserveAttempt.Run(ctx, s.client, []string{s.key(phone)}, fieldAttempts, fieldCodeHash).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("otp reserve: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("otp reserve: unexpected reply %v", res)
	}
	hash, _ := res[0].(string)
	attempts, _ := res[1].(int64)
	return &ports.OTPEntry{CodeHash: hash, Attempts: int(attempts)}, nil
}

func (s *OTPStore) Consume(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, s.key(phone)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("otp consume: %w", err)
	}
	return nil
}

func (s *OTPStore) key(phone string) string {
	return "otp:" + phone
}
