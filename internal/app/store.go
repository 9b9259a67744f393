package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quizmaster/internal/domain"
)

// KeyValueStore abstracts where records are persisted (sqlite, redis, postgres, memory).
// Get returns domain.ErrKeyNotFound when nothing is stored under key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Confirmer approves destructive actions.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm approves everything; used for --yes and tests.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

func confirm(c Confirmer, prompt string) error {
	if c == nil || !c.Confirm(prompt) {
		return domain.ErrNotConfirmed
	}
	return nil
}

// loadJSON decodes the record under key into v. found is false when the key is absent.
func loadJSON(ctx context.Context, store KeyValueStore, key string, v any) (found bool, err error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, store KeyValueStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func deleteKey(ctx context.Context, store KeyValueStore, key string) error {
	if err := store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
