package storage

import (
	"context"
	"errors"
	"strings"
)

// DefaultMaxValueBytes mirrors the per-origin quota browsers apply to local storage.
const DefaultMaxValueBytes = 5 << 20

var (
	// ErrQuotaExceeded is returned when a value does not fit in the backend's quota.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Storage is a string key/value slot store with whole-value replace semantics.
// GetItem reports ok=false when the key is absent.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

type scoped struct {
	backend Storage
	prefix  string
}

// Scope namespaces every key of backend under the given profile identifier so that
// one backend can hold the slots of many browser profiles.
func Scope(backend Storage, profileID string) Storage {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return backend
	}
	return &scoped{backend: backend, prefix: "profile:" + profileID + ":"}
}

func (s *scoped) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	return s.backend.GetItem(ctx, s.prefix+key)
}

func (s *scoped) SetItem(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.backend.SetItem(ctx, s.prefix+key, value)
}

func (s *scoped) RemoveItem(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.backend.RemoveItem(ctx, s.prefix+key)
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

func checkQuota(limit int, value string) error {
	if limit > 0 && len(value) > limit {
		return ErrQuotaExceeded
	}
	return nil
}
