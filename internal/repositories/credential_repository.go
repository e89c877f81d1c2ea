package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
)

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a gorm-backed credential repository.
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Get(ctx context.Context, accountNumber, institutionCode string) (*models.Credential, error) {
	var cred models.Credential
	err := r.db.WithContext(ctx).
		Where("account_number = ? AND institution_code = ?", accountNumber, institutionCode).
		First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get credential: %v", apperrors.ErrStorageUnavailable, err)
	}
	return &cred, nil
}

func (r *credentialRepository) Upsert(ctx context.Context, cred *models.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}
	// Save replaces the row for the identity key when it exists; a
	// re-authentication updates, never duplicates.
	if err := r.db.WithContext(ctx).Save(cred).Error; err != nil {
		return fmt.Errorf("%w: upsert credential: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, accountNumber, institutionCode string) error {
	err := r.db.WithContext(ctx).
		Where("account_number = ? AND institution_code = ?", accountNumber, institutionCode).
		Delete(&models.Credential{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete credential: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *credentialRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Credential{}).Error; err != nil {
		return fmt.Errorf("%w: clear credentials: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *credentialRepository) List(ctx context.Context) ([]*models.Credential, error) {
	var creds []*models.Credential
	if err := r.db.WithContext(ctx).Find(&creds).Error; err != nil {
		return nil, fmt.Errorf("%w: list credentials: %v", apperrors.ErrStorageUnavailable, err)
	}
	return creds, nil
}
