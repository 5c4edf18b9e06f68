package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dharitri-health/portal-cli/internal/client/repositories/metadata"
)

const tokenKey = "access_token"

// Store persists the bearer credential for the current device. No expiry is
// tracked locally: validity is decided only by backend responses.
type Store interface {
	// Save persists the token, overwriting any prior value.
	Save(ctx context.Context, token string) error
	// Load returns the persisted token, or "" when absent. Pure read.
	Load(ctx context.Context) (string, error)
	// Clear removes the persisted token.
	Clear(ctx context.Context) error
}

// MetadataStore keeps the token in the local SQLite metadata table.
type MetadataStore struct {
	repo metadata.Repository
}

func NewMetadataStore(repo metadata.Repository) *MetadataStore {
	return &MetadataStore{repo: repo}
}

func (s *MetadataStore) Save(ctx context.Context, token string) error {
	return s.repo.Set(ctx, tokenKey, []byte(token))
}

func (s *MetadataStore) Load(ctx context.Context) (string, error) {
	value, err := s.repo.Get(ctx, tokenKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("loading token: %w", err)
	}
	return string(value), nil
}

func (s *MetadataStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, tokenKey)
}
