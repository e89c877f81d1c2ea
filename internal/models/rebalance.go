package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RebalanceTarget is one externally supplied target weight, identified by
// line name. The engine does not enforce that weights sum to 100; it
// reports the sum so callers can validate.
type RebalanceTarget struct {
	Name          string          `json:"name"`
	TargetPercent decimal.Decimal `json:"target_percent"`
}

// RebalanceLine is one computed line of a rebalance result. Values are in
// the reference currency. DeltaShares is nil when no live price is known
// for the holding; a nil share count is distinct from zero to a consumer
// deciding whether to show an actionable number.
type RebalanceLine struct {
	Name          string           `json:"name"`
	Region        Region           `json:"region"`
	Currency      string           `json:"currency"`
	CurrentValue  decimal.Decimal  `json:"current_value"`
	CurrentWeight decimal.Decimal  `json:"current_weight"`
	TargetWeight  decimal.Decimal  `json:"target_weight"`
	DeltaValue    decimal.Decimal  `json:"delta_value"`
	DeltaShares   *decimal.Decimal `json:"delta_shares,omitempty"`
}

// RebalanceResult is the derived output of a rebalance computation. It is
// recomputed on demand and never persisted as-is.
type RebalanceResult struct {
	ReferenceCurrency string          `json:"reference_currency"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
	TotalValue        decimal.Decimal `json:"total_value"`
	TargetWeightSum   decimal.Decimal `json:"target_weight_sum"`
	Lines             []RebalanceLine `json:"lines"`
}

// RebalanceRecord is a saved rebalancing plan for one account: a named
// composition of target weights with the balance observed when it was
// saved.
type RebalanceRecord struct {
	ID            string                `json:"record_id" gorm:"primaryKey;size:36"`
	AccountNumber string                `json:"account" gorm:"size:64;index"`
	Name          string                `json:"record_name"`
	Memo          string                `json:"memo"`
	TotalBalance  decimal.Decimal       `json:"total_balance" gorm:"type:numeric"`
	ProfitRate    decimal.Decimal       `json:"profit_rate" gorm:"type:numeric"`
	RecordDate    time.Time             `json:"record_date"`
	Lines         []RebalanceRecordLine `json:"lines" gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TableName sets the records table name.
func (RebalanceRecord) TableName() string {
	return "rebalance_records"
}

// Validate validates a record before it is saved.
func (r *RebalanceRecord) Validate() error {
	if r.AccountNumber == "" {
		return errors.New("account is required")
	}
	if len(r.Lines) == 0 {
		return errors.New("at least one line is required")
	}
	for i := range r.Lines {
		if r.Lines[i].StockName == "" {
			return errors.New("stock_name is required")
		}
	}
	return nil
}

// TargetSum returns the sum of the lines' target percents.
func (r *RebalanceRecord) TargetSum() decimal.Decimal {
	sum := decimal.Zero
	for i := range r.Lines {
		sum = sum.Add(r.Lines[i].TargetPercent)
	}
	return sum
}

// Targets converts the record's lines into engine targets.
func (r *RebalanceRecord) Targets() []RebalanceTarget {
	targets := make([]RebalanceTarget, 0, len(r.Lines))
	for i := range r.Lines {
		targets = append(targets, RebalanceTarget{
			Name:          r.Lines[i].StockName,
			TargetPercent: r.Lines[i].TargetPercent,
		})
	}
	return targets
}

// RebalanceRecordLine is one line of a saved record. ValueKRW and ValueUSD
// hold the observed value in whichever currency is native to the region;
// Shares is the held share count at save time.
type RebalanceRecordLine struct {
	ID            uint            `json:"-" gorm:"primaryKey;autoIncrement"`
	RecordID      string          `json:"record_id" gorm:"size:36;index"`
	StockName     string          `json:"stock_name"`
	Region        Region          `json:"stock_region"`
	TargetPercent decimal.Decimal `json:"expert_per" gorm:"type:numeric"`
	MarketOrder   decimal.Decimal `json:"market_order" gorm:"type:numeric"`
	Rate          decimal.Decimal `json:"rate" gorm:"type:numeric"`
	Shares        decimal.Decimal `json:"nos" gorm:"type:numeric"`
	ValueKRW      decimal.Decimal `json:"won" gorm:"type:numeric"`
	ValueUSD      decimal.Decimal `json:"dollar" gorm:"type:numeric"`
	RebalanceUSD  decimal.Decimal `json:"rebalancing_dollar" gorm:"type:numeric"`
	MarketType    string          `json:"market_type_name"`
}

// TableName sets the record lines table name.
func (RebalanceRecordLine) TableName() string {
	return "rebalance_record_lines"
}
