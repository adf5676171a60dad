// Package ratelimit provides the sliding-window rate limiter used by the
// verification pipeline and the single-use guard on classloader session keys.
package ratelimit

import (
	"context"
	"time"
)

// RateLimiter is a sliding-window counter keyed by arbitrary string.
type RateLimiter interface {
	// IsRateLimited registers one call for key and reports whether more than
	// limit calls occurred inside the window. The register-then-check round
	// trip is atomic under concurrent callers. An infrastructure error means
	// the caller must fail closed.
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SessionKeyGuard marks classloader session keys as used so a captured
// ciphertext cannot be replayed inside the reuse window.
type SessionKeyGuard interface {
	// MarkUsed records the session key hash and reports whether it was
	// already marked inside the window.
	MarkUsed(ctx context.Context, keyHash string, window time.Duration) (alreadyUsed bool, err error)
}
