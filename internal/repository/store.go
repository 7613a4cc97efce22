package repository

import (
	"context"
	"errors"
)

// ErrConflict is returned by Atomic when the watched keys kept changing
// underneath the caller and the retry budget ran out.
var ErrConflict = errors.New("store: concurrent modification, retries exhausted")

// Store is the hash-oriented key-value storage every repository is built on.
//
// HGetAll returns an empty, non-nil map for an absent key.
type Store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, values map[string]string) error

	// Atomic runs fn as one read-modify-write section. Reads done through
	// Tx observe the keys listed in keys; writes queued through Tx are
	// applied only if fn returns nil and none of keys changed meanwhile.
	Atomic(ctx context.Context, keys []string, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
	Close() error
}

type Tx interface {
	HGetAll(key string) (map[string]string, error)
	HSet(key string, values map[string]string)
}

const (
	userKeyPrefix        = "user:"
	transactionKeyPrefix = "transaction:"
	paymentsKeyPrefix    = "payments:"
)

func UserKey(username string) string {
	return userKeyPrefix + username
}

func TransactionKey(id string) string {
	return transactionKeyPrefix + id
}

func PaymentsKey(username string) string {
	return paymentsKeyPrefix + username
}

// pendingWrites collects HSet calls made inside an Atomic section.
type pendingWrites struct {
	keys   []string
	values map[string]map[string]string
}

func newPendingWrites() *pendingWrites {
	return &pendingWrites{values: make(map[string]map[string]string)}
}

func (p *pendingWrites) add(key string, values map[string]string) {
	fields, ok := p.values[key]
	if !ok {
		fields = make(map[string]string, len(values))
		p.values[key] = fields
		p.keys = append(p.keys, key)
	}
	for f, v := range values {
		fields[f] = v
	}
}

// overlay returns stored with the pending fields of key applied on top.
func (p *pendingWrites) overlay(key string, stored map[string]string) map[string]string {
	fields, ok := p.values[key]
	if !ok {
		return stored
	}
	merged := make(map[string]string, len(stored)+len(fields))
	for f, v := range stored {
		merged[f] = v
	}
	for f, v := range fields {
		merged[f] = v
	}
	return merged
}
