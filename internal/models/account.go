package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Supported currencies. KRW is the native currency of domestic lines, USD
// the native currency of foreign lines and the reference currency for
// rebalancing math.
const (
	CurrencyKRW = "KRW"
	CurrencyUSD = "USD"
)

// Region classifies a portfolio line. The numeric values match the
// stock_region column of persisted rebalancing records.
type Region int

const (
	RegionCash Region = iota
	RegionDomestic
	RegionForeign
)

func (r Region) String() string {
	switch r {
	case RegionCash:
		return "cash"
	case RegionDomestic:
		return "domestic"
	case RegionForeign:
		return "foreign"
	default:
		return "unknown"
	}
}

// BrokerageAccount is one account from the brokerage-accounts listing.
// Identity is the account number; the principal (cost basis) is passed
// through from the backend unmodified and may be zero.
type BrokerageAccount struct {
	InstitutionName string          `json:"company"`
	AccountNumber   string          `json:"accountNumber"`
	Principal       decimal.Decimal `json:"principal"`
	ReturnRate      decimal.Decimal `json:"returnRate"`
}

// MaskedNumber returns the display form of the account number, the last
// four digits.
func (a *BrokerageAccount) MaskedNumber() string {
	if len(a.AccountNumber) <= 4 {
		return a.AccountNumber
	}
	return a.AccountNumber[len(a.AccountNumber)-4:]
}

// Validate checks the listing entry is usable.
func (a *BrokerageAccount) Validate() error {
	if a.AccountNumber == "" {
		return errors.New("account number is required")
	}
	if a.InstitutionName == "" {
		return errors.New("institution name is required")
	}
	return nil
}

// LinkHandle is the opaque token issued by the aggregation backend for one
// authenticated brokerage login. One login may cover several accounts, so a
// handle optionally carries the account number it was registered with for
// content matching.
type LinkHandle struct {
	ConnectedID   string `json:"connectedId"`
	AccountNumber string `json:"accountNumber"`
}

// WellFormed reports whether the handle carries a usable connected ID.
func (h LinkHandle) WellFormed() bool {
	return h.ConnectedID != ""
}
