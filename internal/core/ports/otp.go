package ports

import (
	"context"
	"time"
)

// OTPEntry is an outstanding one-time code for a phone number.
type OTPEntry struct {
	CodeHash string
	Attempts int
}

// OTPStore keeps hashed one-time codes with a TTL. Reserve counts the
// attempt before returning the entry, so Attempts includes the caller's own
// try; a missing or expired code returns domain.ErrNotFound.
type OTPStore interface {
	Issue(ctx context.Context, phone, codeHash string, ttl time.Duration) error
	Reserve(ctx context.Context, phone string) (*OTPEntry, error)
	Consume(ctx context.Context, phone string) error
}

// OTPSender hands a code to whatever channel reaches the phone's owner.
type OTPSender interface {
	Send(ctx context.Context, phone, code string) error
}
