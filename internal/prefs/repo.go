package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"riskintel-backend/internal/store"
)

// Repo persists preferences as one JSONB document per user. Missing rows
// and unknown persisted keys both resolve to defaults, so a fresh account
// and a stale document behave identically.
type Repo struct {
	store *store.Store
}

func NewRepo(s *store.Store) *Repo {
	return &Repo{store: s}
}

// Get loads the user's preferences, with defaults for absent rows and
// absent fields.
func (r *Repo) Get(ctx context.Context, userID string) (Preferences, error) {
	p := Defaults()

	row, err := store.QueryRow(ctx, r.store.Pool,
		"SELECT data FROM _user_preferences WHERE user_id = $1", userID)
	if errors.Is(err, store.ErrNotFound) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("load preferences: %w", err)
	}

	raw, err := encodeData(row["data"])
	if err != nil {
		return p, fmt.Errorf("decode preferences: %w", err)
	}
	// Unmarshal over defaults so fields missing from the stored document
	// keep their default value.
	if err := json.Unmarshal(raw, &p); err != nil {
		return Defaults(), fmt.Errorf("decode preferences: %w", err)
	}
	return p, nil
}

// Save upserts the user's preferences document.
func (r *Repo) Save(ctx context.Context, userID string, p Preferences) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	_, err = store.Exec(ctx, r.store.Pool,
		`INSERT INTO _user_preferences (user_id, data, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		userID, string(data))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Reset deletes the user's document so the next read yields defaults.
func (r *Repo) Reset(ctx context.Context, userID string) error {
	_, err := store.Exec(ctx, r.store.Pool,
		"DELETE FROM _user_preferences WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("reset preferences: %w", err)
	}
	return nil
}

// encodeData normalizes the JSONB column value to raw JSON bytes. pgx may
// hand back a map, a []byte, or a string depending on codec registration.
func encodeData(v any) ([]byte, error) {
	switch data := v.(type) {
	case []byte:
		return data, nil
	case string:
		return []byte(data), nil
	default:
		return json.Marshal(v)
	}
}
