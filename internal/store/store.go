// Package store persists answered questions so repeated queries skip
// the whole pipeline until the entry expires.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/rset-labs/campus-assist/internal/model"
)

// CachedAnswer is one stored pipeline result.
type CachedAnswer struct {
	Question  string           `json:"question"`
	Answer    model.ChatAnswer `json:"answer"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Store is the answer cache. Entries past their TTL are invisible to
// Get and reclaimed by Purge.
type Store interface {
	Get(ctx context.Context, question string) (*CachedAnswer, error)
	Set(ctx context.Context, question string, answer model.ChatAnswer, ttl time.Duration) error
	Purge(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// NormalizeKey canonicalizes a question for use as a cache key.
func NormalizeKey(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}
