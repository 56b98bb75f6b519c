package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordHashIterations = 210000
	passwordHashSaltLength = 16
	passwordHashKeyLength  = 32

	apiKeyByteLength = 32
	apiKeyPrefix     = "zd_"
)

type AuthUsecase struct {
	users domain.UserRepository
	keys  domain.APIKeyRepository
}

func NewAuthUsecase(users domain.UserRepository, keys domain.APIKeyRepository) *AuthUsecase {
	return &AuthUsecase{
		users: users,
		keys:  keys,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", fmt.Errorf("%w: email is required", domain.ErrInvalidParameter)
	}
	if len(password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidParameter)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    time.Now(),
	}

	if err := u.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	rawKey, err := u.CreateKey(ctx, user.ID, "default")
	if err != nil {
		return nil, "", err
	}

	zlog.Logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, rawKey, nil
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := verifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	rawKey, err := u.CreateKey(ctx, user.ID, "login")
	if err != nil {
		return nil, "", err
	}

	zlog.Logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return user, rawKey, nil
}

// CreateKey issues a new API key. The raw key is returned exactly once; only
// its sha256 digest is stored.
func (u *AuthUsecase) CreateKey(ctx context.Context, userID, label string) (string, error) {
	raw := make([]byte, apiKeyByteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	rawKey := apiKeyPrefix + hex.EncodeToString(raw)

	key := &domain.APIKey{
		ID:        uuid.New().String(),
		UserID:    userID,
		KeyHash:   hashAPIKey(rawKey),
		Label:     label,
		CreatedAt: time.Now(),
	}

	if err := u.keys.Create(ctx, key); err != nil {
		return "", err
	}

	return rawKey, nil
}

func (u *AuthUsecase) ResolveKey(ctx context.Context, rawKey string) (*domain.User, error) {
	if rawKey == "" {
		return nil, domain.ErrInvalidAPIKey
	}

	key, err := u.keys.FindByHash(ctx, hashAPIKey(rawKey))
	if err != nil {
		return nil, err
	}

	if err := u.keys.TouchLastUsed(ctx, key.ID); err != nil {
		zlog.Logger.Warn().Err(err).Str("key_id", key.ID).Msg("failed to update key last_used_at")
	}

	return u.users.FindByID(ctx, key.UserID)
}

func hashAPIKey(rawKey string) string {
	digest := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(digest[:])
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, passwordHashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	derived := pbkdf2.Key([]byte(password), salt, passwordHashIterations, passwordHashKeyLength, sha256.New)
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedKey := base64.RawStdEncoding.EncodeToString(derived)
	return fmt.Sprintf("pbkdf2$sha256$%d$%s$%s", passwordHashIterations, encodedSalt, encodedKey), nil
}

func verifyPassword(encodedHash, candidate string) error {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 5 {
		return fmt.Errorf("verify password: invalid hash format")
	}
	if parts[0] != "pbkdf2" || parts[1] != "sha256" {
		return fmt.Errorf("verify password: unsupported hash identifier")
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return fmt.Errorf("verify password: invalid iteration count")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return fmt.Errorf("verify password: decode salt: %w", err)
	}
	storedKey, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("verify password: decode hash: %w", err)
	}
	derived := pbkdf2.Key([]byte(candidate), salt, iterations, len(storedKey), sha256.New)
	if len(derived) != len(storedKey) || subtle.ConstantTimeCompare(derived, storedKey) != 1 {
		return domain.ErrInvalidCredentials
	}
	return nil
}
