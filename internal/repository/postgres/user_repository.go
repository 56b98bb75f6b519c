package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
)

type userRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewUserRepository(db *dbpg.DB, strategy retry.Strategy) domain.UserRepository {
	return &userRepository{
		db:       db,
		strategy: strategy,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecWithRetry(ctx, r.strategy, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrEmailTaken
		}
		zlog.Logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to create user")
		return fmt.Errorf("create user: %w", err)
	}

	zlog.Logger.Info().Str("user_id", user.ID).Msg("user created successfully")
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`

	var user domain.User
	row := r.db.Master.QueryRowContext(ctx, query, id)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`

	var user domain.User
	row := r.db.Master.QueryRowContext(ctx, query, email)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	return &user, nil
}
