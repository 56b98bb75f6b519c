package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
)

type apiKeyRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewAPIKeyRepository(db *dbpg.DB, strategy retry.Strategy) domain.APIKeyRepository {
	return &apiKeyRepository{
		db:       db,
		strategy: strategy,
	}
}

func (r *apiKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (id, user_id, key_hash, label, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecWithRetry(ctx, r.strategy, query,
		key.ID,
		key.UserID,
		key.KeyHash,
		nullString(key.Label),
		key.CreatedAt,
	)

	if err != nil {
		zlog.Logger.Error().Err(err).Str("key_id", key.ID).Msg("failed to create api key")
		return fmt.Errorf("create api key: %w", err)
	}

	return nil
}

func (r *apiKeyRepository) FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	query := `
		SELECT id, user_id, key_hash, label, created_at, last_used_at
		FROM api_keys
		WHERE key_hash = $1
	`

	var key domain.APIKey
	var label sql.NullString
	var lastUsed sql.NullTime

	row := r.db.Master.QueryRowContext(ctx, query, keyHash)
	err := row.Scan(&key.ID, &key.UserID, &key.KeyHash, &label, &key.CreatedAt, &lastUsed)

	if err == sql.ErrNoRows {
		return nil, domain.ErrInvalidAPIKey
	}
	if err != nil {
		return nil, fmt.Errorf("find api key: %w", err)
	}

	if label.Valid {
		key.Label = label.String
	}
	if lastUsed.Valid {
		key.LastUsedAt = &lastUsed.Time
	}

	return &key, nil
}

func (r *apiKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	query := `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`

	if _, err := r.db.ExecWithRetry(ctx, r.strategy, query, id); err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}
