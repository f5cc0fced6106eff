package storage

import (
	"context"
	"strconv"
	"strings"

	"budget/internal/log"
)

// KV is the durable key-value medium behind the Gateway. Put replaces the
// whole value atomically; the last writer wins.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Option configures a Gateway or a SQLiteKV.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger, tagged as the storage component.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l.WithComponent(log.ComponentStorage) }
}

func newOptions(opts []Option) options {
	o := options{logger: log.FromContext(context.Background()).WithComponent(log.ComponentStorage)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Persisted keys.
const (
	monthStoreKeyPrefix = "budget-app-data-"
	SessionKey          = "budget-app-session"
	UsersKey            = "budget-app-users"
)

// MonthStoreKey is the key holding the twelve months of a year.
func MonthStoreKey(year int) string {
	return monthStoreKeyPrefix + strconv.Itoa(year)
}

// ParseMonthStoreKey returns the year held under key, or false when key is
// not a month store key.
func ParseMonthStoreKey(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, monthStoreKeyPrefix)
	if !ok {
		return 0, false
	}
	year, err := strconv.Atoi(rest)
	if err != nil || year < 1 || year > 9999 {
		return 0, false
	}
	return year, true
}
