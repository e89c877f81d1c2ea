package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
	"github.com/upwardright/rebalance/internal/repositories"
	"github.com/upwardright/rebalance/internal/storage"
)

type credentialStore struct {
	structured repositories.CredentialRepository
	flat       storage.KeyValueStore
	logger     *zap.Logger
}

// NewCredentialStore creates the dual-backend credential store. The
// structured repository is canonical; the flat key-value store predates it
// and may still hold passwords the structured store has not absorbed.
func NewCredentialStore(structured repositories.CredentialRepository, flat storage.KeyValueStore, logger *zap.Logger) CredentialStore {
	return &credentialStore{structured: structured, flat: flat, logger: logger}
}

// Get returns the cached credential for the identity key. The structured
// store wins; the flat store is consulted only on a structured miss. A
// storage fault on both sides surfaces as ErrStorageUnavailable so callers
// can log it apart from a true cache miss.
func (s *credentialStore) Get(ctx context.Context, accountNumber, institutionCode string) (*models.Credential, error) {
	cred, err := s.structured.Get(ctx, accountNumber, institutionCode)
	if err == nil && cred.Password != "" {
		return cred, nil
	}

	var structuredErr error
	switch {
	case err == nil || errors.Is(err, apperrors.ErrNotFound):
		// fall through to the flat store
	default:
		structuredErr = err
		s.logger.Warn("structured credential store unavailable",
			zap.String("account", accountNumber),
			zap.Error(err))
	}

	password, flatErr := s.flat.Get(ctx, models.FlatCredentialKey(accountNumber))
	if flatErr == nil && password != "" {
		return &models.Credential{
			AccountNumber:   accountNumber,
			InstitutionCode: institutionCode,
			Password:        password,
		}, nil
	}

	if structuredErr != nil {
		return nil, structuredErr
	}
	if flatErr != nil && !errors.Is(flatErr, apperrors.ErrNotFound) {
		s.logger.Warn("flat credential store unavailable",
			zap.String("account", accountNumber),
			zap.Error(flatErr))
		return nil, flatErr
	}
	return nil, apperrors.ErrNotFound
}

// Put writes the credential to both stores. The structured write must
// succeed; a flat-store failure leaves the cache slightly inconsistent but
// still correct under Get's precedence, so it is logged and swallowed.
func (s *credentialStore) Put(ctx context.Context, cred *models.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}
	if err := s.structured.Upsert(ctx, cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	if err := s.flat.Set(ctx, models.FlatCredentialKey(cred.AccountNumber), cred.Password); err != nil {
		s.logger.Warn("flat credential write failed",
			zap.String("account", cred.AccountNumber),
			zap.Error(err))
	}
	return nil
}

// Exists reports whether either store holds a non-empty password for the
// identity key.
func (s *credentialStore) Exists(ctx context.Context, accountNumber, institutionCode string) (bool, error) {
	_, err := s.Get(ctx, accountNumber, institutionCode)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Remove deletes the credential for one identity key from both stores.
func (s *credentialStore) Remove(ctx context.Context, accountNumber, institutionCode string) error {
	structuredErr := s.structured.Delete(ctx, accountNumber, institutionCode)
	flatErr := s.flat.Delete(ctx, models.FlatCredentialKey(accountNumber))
	return errors.Join(structuredErr, flatErr)
}

// ClearAll deletes every structured credential and every flat entry under
// the reserved prefix. Flat keys outside the prefix belong to other
// features and are left alone.
func (s *credentialStore) ClearAll(ctx context.Context) error {
	structuredErr := s.structured.DeleteAll(ctx)

	var flatErr error
	keys, err := s.flat.Keys(ctx, models.FlatKeyPrefix)
	if err != nil {
		flatErr = err
	} else {
		for _, key := range keys {
			if err := s.flat.Delete(ctx, key); err != nil {
				flatErr = errors.Join(flatErr, err)
			}
		}
	}
	return errors.Join(structuredErr, flatErr)
}
