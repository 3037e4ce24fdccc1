// Package verification issues short-lived one-time codes and checks them.
package verification

import (
	"context"
	"time"
)

// RedeemResult is the outcome of one Redeem call.
type RedeemResult int

const (
	// RedeemMissing: no live code for the key.
	RedeemMissing RedeemResult = iota
	// RedeemMatched: the candidate matched and the code was removed.
	RedeemMatched
	// RedeemMismatch: wrong candidate; the code stays and its failure count grew.
	RedeemMismatch
	// RedeemExhausted: wrong candidate that reached the failure limit; the code was removed.
	RedeemExhausted
)

// Cache stores values that disappear after a TTL.
type Cache interface {
	// Put replaces any value under key and resets its failure count.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns false for missing and expired keys.
	Get(ctx context.Context, key string) (string, bool, error)
	// Redeem compares candidate with the stored value and deletes it on a
	// match, atomically, so a value is accepted at most once. maxFailures <= 0
	// disables the failure limit.
	Redeem(ctx context.Context, key, candidate string, maxFailures int) (RedeemResult, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
