package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/upwardright/rebalance/internal/models"
)

// CredentialStore caches verified account passwords across the structured
// and flat backing stores. The duplication is not visible to callers: Get
// consults the structured store first and falls back to the flat one.
type CredentialStore interface {
	Get(ctx context.Context, accountNumber, institutionCode string) (*models.Credential, error)
	Put(ctx context.Context, cred *models.Credential) error
	Exists(ctx context.Context, accountNumber, institutionCode string) (bool, error)
	Remove(ctx context.Context, accountNumber, institutionCode string) error
	ClearAll(ctx context.Context) error
}

// AccountLinker resolves the connected-account handle for a brokerage
// account from the candidates returned by the linked-logins listing.
// Position is the account's index within its own listing, used for
// positional matching.
type AccountLinker interface {
	Resolve(account *models.BrokerageAccount, position int, candidates []models.LinkHandle) (models.LinkHandle, MatchStrategy, error)
}

// BalanceService fetches and normalizes an account balance from the
// brokerage-balance gateway.
type BalanceService interface {
	Fetch(ctx context.Context, req *models.BalanceRequest) (*models.BalanceSnapshot, error)
}

// FXProvider supplies exchange rates. The rebalance engine treats the rate
// as an opaque multiplicative number.
type FXProvider interface {
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// RecordService manages saved rebalancing records.
type RecordService interface {
	Save(ctx context.Context, record *models.RebalanceRecord) error
	Get(ctx context.Context, id string) (*models.RebalanceRecord, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]*models.RebalanceRecord, error)
	Delete(ctx context.Context, id string) error
}
