package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
	"github.com/upwardright/rebalance/internal/storage"
)

// memCredentialRepo is an in-memory CredentialRepository for tests. When
// failing is set every call reports the store as unavailable.
type memCredentialRepo struct {
	creds   map[string]*models.Credential
	failing bool
}

func newMemCredentialRepo() *memCredentialRepo {
	return &memCredentialRepo{creds: map[string]*models.Credential{}}
}

func repoKey(accountNumber, institutionCode string) string {
	return accountNumber + "|" + institutionCode
}

func (r *memCredentialRepo) Get(_ context.Context, accountNumber, institutionCode string) (*models.Credential, error) {
	if r.failing {
		return nil, apperrors.ErrStorageUnavailable
	}
	cred, ok := r.creds[repoKey(accountNumber, institutionCode)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *cred
	return &copied, nil
}

func (r *memCredentialRepo) Upsert(_ context.Context, cred *models.Credential) error {
	if r.failing {
		return apperrors.ErrStorageUnavailable
	}
	copied := *cred
	r.creds[repoKey(cred.AccountNumber, cred.InstitutionCode)] = &copied
	return nil
}

func (r *memCredentialRepo) Delete(_ context.Context, accountNumber, institutionCode string) error {
	if r.failing {
		return apperrors.ErrStorageUnavailable
	}
	delete(r.creds, repoKey(accountNumber, institutionCode))
	return nil
}

func (r *memCredentialRepo) DeleteAll(_ context.Context) error {
	if r.failing {
		return apperrors.ErrStorageUnavailable
	}
	r.creds = map[string]*models.Credential{}
	return nil
}

func (r *memCredentialRepo) List(_ context.Context) ([]*models.Credential, error) {
	if r.failing {
		return nil, apperrors.ErrStorageUnavailable
	}
	out := make([]*models.Credential, 0, len(r.creds))
	for _, cred := range r.creds {
		copied := *cred
		out = append(out, &copied)
	}
	return out, nil
}

func TestCredentialStoreStructuredWins(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	flat := storage.NewMemoryStore()
	store := NewCredentialStore(repo, flat, zap.NewNop())

	repo.Upsert(ctx, &models.Credential{
		AccountNumber:   "123-45",
		InstitutionCode: "0240",
		Password:        "structured-pw",
	})
	flat.Set(ctx, models.FlatCredentialKey("123-45"), "flat-pw")

	cred, err := store.Get(ctx, "123-45", "0240")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.Password != "structured-pw" {
		t.Errorf("structured store must win, got %q", cred.Password)
	}
}

func TestCredentialStoreFlatFallback(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	flat := storage.NewMemoryStore()
	store := NewCredentialStore(repo, flat, zap.NewNop())

	flat.Set(ctx, models.FlatCredentialKey("123-45"), "flat-pw")

	cred, err := store.Get(ctx, "123-45", "0240")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.Password != "flat-pw" {
		t.Errorf("expected flat fallback password, got %q", cred.Password)
	}
	if cred.AccountNumber != "123-45" || cred.InstitutionCode != "0240" {
		t.Errorf("synthesized credential missing identity: %+v", cred)
	}
}

func TestCredentialStoreBothMiss(t *testing.T) {
	ctx := context.Background()
	store := NewCredentialStore(newMemCredentialRepo(), storage.NewMemoryStore(), zap.NewNop())

	_, err := store.Get(ctx, "123-45", "0240")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	exists, err := store.Exists(ctx, "123-45", "0240")
	if err != nil || exists {
		t.Errorf("Exists = (%v, %v), want (false, nil)", exists, err)
	}
}

func TestCredentialStoreStructuredDownFlatServes(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	repo.failing = true
	flat := storage.NewMemoryStore()
	store := NewCredentialStore(repo, flat, zap.NewNop())

	flat.Set(ctx, models.FlatCredentialKey("123-45"), "flat-pw")

	cred, err := store.Get(ctx, "123-45", "0240")
	if err != nil {
		t.Fatalf("flat hit should mask the structured outage, got %v", err)
	}
	if cred.Password != "flat-pw" {
		t.Errorf("expected flat password, got %q", cred.Password)
	}
}

func TestCredentialStoreStructuredDownFlatMisses(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	repo.failing = true
	store := NewCredentialStore(repo, storage.NewMemoryStore(), zap.NewNop())

	_, err := store.Get(ctx, "123-45", "0240")
	if !errors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Fatalf("expected the storage error to surface, got %v", err)
	}
}

func TestCredentialStorePutWritesBoth(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	flat := storage.NewMemoryStore()
	store := NewCredentialStore(repo, flat, zap.NewNop())

	err := store.Put(ctx, &models.Credential{
		AccountNumber:   "123-45",
		InstitutionCode: "0240",
		Password:        "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.Get(ctx, "123-45", "0240"); err != nil {
		t.Errorf("structured store missing credential: %v", err)
	}
	if pw, err := flat.Get(ctx, models.FlatCredentialKey("123-45")); err != nil || pw != "secret" {
		t.Errorf("flat store missing credential: %q, %v", pw, err)
	}
}

func TestCredentialStorePutRejectsInvalid(t *testing.T) {
	store := NewCredentialStore(newMemCredentialRepo(), storage.NewMemoryStore(), zap.NewNop())

	err := store.Put(context.Background(), &models.Credential{AccountNumber: "123-45"})
	if err == nil {
		t.Fatal("expected a validation error for an empty password")
	}
}

func TestCredentialStoreRemove(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	flat := storage.NewMemoryStore()
	store := NewCredentialStore(repo, flat, zap.NewNop())

	store.Put(ctx, &models.Credential{
		AccountNumber:   "123-45",
		InstitutionCode: "0240",
		Password:        "secret",
	})
	if err := store.Remove(ctx, "123-45", "0240"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Get(ctx, "123-45", "0240"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after removal, got %v", err)
	}
}

func TestCredentialStoreClearAllKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	repo := newMemCredentialRepo()
	flat := storage.NewMemoryStore()
	store := NewCredentialStore(repo, flat, zap.NewNop())

	store.Put(ctx, &models.Credential{
		AccountNumber:   "123-45",
		InstitutionCode: "0240",
		Password:        "secret",
	})
	flat.Set(ctx, "unrelated_key", "keep-me")

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Get(ctx, "123-45", "0240"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected credentials cleared, got %v", err)
	}
	if v, err := flat.Get(ctx, "unrelated_key"); err != nil || v != "keep-me" {
		t.Errorf("keys outside the credential prefix must survive: %q, %v", v, err)
	}
}
