package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guide-exam/internal/domain"
)

// ownedRecord wraps a stored value with the key of the owner allowed to read it.
type ownedRecord struct {
	Owner string          `json:"owner"`
	Value json.RawMessage `json:"value"`
}

// sessionStore keeps JSON values in the cache under owner-bound keys.
type sessionStore struct {
	cache domain.Cache
	ttl   time.Duration
}

func (s *sessionStore) save(ctx context.Context, key string, owner domain.Owner, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	data, err := json.Marshal(ownedRecord{Owner: owner.Key(), Value: value})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.cache.Set(ctx, key, string(data), s.ttl)
}

// load reports false when the key is missing or belongs to another owner.
func (s *sessionStore) load(ctx context.Context, key string, owner domain.Owner, v interface{}) (bool, error) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return false, nil
		}
		return false, err
	}
	var rec ownedRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	if rec.Owner != owner.Key() {
		return false, nil
	}
	if err := json.Unmarshal(rec.Value, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *sessionStore) delete(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}
