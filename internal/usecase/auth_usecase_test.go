package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zotdga/zotdga/internal/domain"
)

type stubUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

type stubKeyRepo struct {
	byHash map[string]*domain.APIKey
}

func newStubKeyRepo() *stubKeyRepo {
	return &stubKeyRepo{byHash: make(map[string]*domain.APIKey)}
}

func (r *stubKeyRepo) Create(ctx context.Context, key *domain.APIKey) error {
	r.byHash[key.KeyHash] = key
	return nil
}

func (r *stubKeyRepo) FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	key, ok := r.byHash[keyHash]
	if !ok {
		return nil, domain.ErrInvalidAPIKey
	}
	return key, nil
}

func (r *stubKeyRepo) TouchLastUsed(ctx context.Context, id string) error {
	return nil
}

func setupAuth(t *testing.T) (*AuthUsecase, *stubUserRepo, *stubKeyRepo) {
	t.Helper()
	users := newStubUserRepo()
	keys := newStubKeyRepo()
	return NewAuthUsecase(users, keys), users, keys
}

func TestRegisterAndLogin(t *testing.T) {
	uc, users, _ := setupAuth(t)
	ctx := context.Background()

	user, apiKey, err := uc.Register(ctx, "Alice@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if !strings.HasPrefix(apiKey, "zd_") {
		t.Errorf("api key %q lacks the zd_ prefix", apiKey)
	}
	if stored := users.byEmail["alice@example.com"].PasswordHash; stored == "correct horse" {
		t.Error("password stored in the clear")
	}

	if _, _, err := uc.Login(ctx, "alice@example.com", "correct horse"); err != nil {
		t.Fatalf("Login with correct password failed: %v", err)
	}

	if _, _, err := uc.Login(ctx, "alice@example.com", "wrong horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := uc.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login for unknown email = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	uc, _, _ := setupAuth(t)
	ctx := context.Background()

	if _, _, err := uc.Register(ctx, "", "long enough"); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("empty email: err = %v, want ErrInvalidParameter", err)
	}
	if _, _, err := uc.Register(ctx, "a@b.com", "short"); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("short password: err = %v, want ErrInvalidParameter", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc, _, _ := setupAuth(t)
	ctx := context.Background()

	if _, _, err := uc.Register(ctx, "a@b.com", "password1"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, _, err := uc.Register(ctx, "a@b.com", "password2"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("second Register error = %v, want ErrEmailTaken", err)
	}
}

func TestResolveKey(t *testing.T) {
	uc, _, _ := setupAuth(t)
	ctx := context.Background()

	user, apiKey, err := uc.Register(ctx, "a@b.com", "password1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	resolved, err := uc.ResolveKey(ctx, apiKey)
	if err != nil {
		t.Fatalf("ResolveKey failed: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("resolved user = %s, want %s", resolved.ID, user.ID)
	}

	if _, err := uc.ResolveKey(ctx, "zd_deadbeef"); !errors.Is(err, domain.ErrInvalidAPIKey) {
		t.Fatalf("ResolveKey for unknown key = %v, want ErrInvalidAPIKey", err)
	}
	if _, err := uc.ResolveKey(ctx, ""); !errors.Is(err, domain.ErrInvalidAPIKey) {
		t.Fatalf("ResolveKey for empty key = %v, want ErrInvalidAPIKey", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("s3cret-passphrase")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "pbkdf2$sha256$") {
		t.Fatalf("hash %q lacks the pbkdf2$sha256$ prefix", hash)
	}

	if err := verifyPassword(hash, "s3cret-passphrase"); err != nil {
		t.Errorf("verifyPassword rejected the original password: %v", err)
	}
	if err := verifyPassword(hash, "other"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("verifyPassword accepted a wrong password: %v", err)
	}
	if err := verifyPassword("not-a-hash", "anything"); err == nil {
		t.Error("verifyPassword accepted a malformed hash")
	}

	// Unique salt per call
	again, err := hashPassword("s3cret-passphrase")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == again {
		t.Error("two hashes of the same password are identical")
	}
}
