package repositories

import (
	"context"

	"github.com/upwardright/rebalance/internal/models"
)

// CredentialRepository is the structured credential store, keyed by
// (account_number, institution_code). It is the canonical side of the
// dual-store credential cache.
type CredentialRepository interface {
	Get(ctx context.Context, accountNumber, institutionCode string) (*models.Credential, error)
	Upsert(ctx context.Context, cred *models.Credential) error
	Delete(ctx context.Context, accountNumber, institutionCode string) error
	DeleteAll(ctx context.Context) error
	List(ctx context.Context) ([]*models.Credential, error)
}

// RecordRepository persists saved rebalancing records and their lines.
type RecordRepository interface {
	Create(ctx context.Context, record *models.RebalanceRecord) error
	GetByID(ctx context.Context, id string) (*models.RebalanceRecord, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]*models.RebalanceRecord, error)
	Delete(ctx context.Context, id string) error
}
