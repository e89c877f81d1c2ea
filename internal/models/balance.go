package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ResultCodeSuccess is the aggregation backend's success result code.
const ResultCodeSuccess = "CF-00000"

// UnknownHoldingName is the sentinel used when a wire entry carries no name.
const UnknownHoldingName = "알 수 없음"

// BalanceRequest is the wire request of the balance-fetch service. Field
// names follow the aggregation gateway contract.
type BalanceRequest struct {
	InstitutionCode string `json:"organization"`
	ConnectedID     string `json:"connectedId"`
	AccountNumber   string `json:"account"`
	Password        string `json:"account_password"`
}

// BalanceResult is the embedded result status of a balance response.
type BalanceResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BalanceEnvelope is the outer balance response.
type BalanceEnvelope struct {
	Result BalanceResult  `json:"result"`
	Data   BalancePayload `json:"data"`
}

// BalancePayload is the union of the two recognized balance shapes. Which
// shape is present depends on the institution: some return an item list
// (resItemList), others a flat stock array (resAccountStock). Monetary
// fields arrive as strings and may be absent.
type BalancePayload struct {
	Account          string               `json:"resAccount"`
	AccountName      string               `json:"resAccountName"`
	TotalAmount      string               `json:"rsTotAmt"`
	TotalValuation   string               `json:"rsTotValAmt"`
	DepositD2        string               `json:"resDepositReceivedD2"`
	Deposit          string               `json:"resDepositReceived"`
	AccountBalance   string               `json:"resAccountBalance"`
	USDBalance       string               `json:"resUSDBalance"`
	ItemList         []BalanceItem        `json:"resItemList"`
	AccountStockList []BalanceAccountItem `json:"resAccountStock"`
}

// HasItemList reports whether the item-list shape is present.
func (p *BalancePayload) HasItemList() bool {
	return p.ItemList != nil
}

// HasAccountStock reports whether the account-stock shape is present.
func (p *BalancePayload) HasAccountStock() bool {
	return p.AccountStockList != nil
}

// BalanceItem is one holding in the item-list shape.
type BalanceItem struct {
	Name      string `json:"resItemName"`
	Price     string `json:"resPresentAmt"`
	Valuation string `json:"resValuationAmt"`
	Quantity  string `json:"resQuantity"`
	Currency  string `json:"resAccountCurrency"`
	Nation    string `json:"resNation"`
	Market    string `json:"resMarket"`
}

// usMarkets are the exchange codes that mark a holding as foreign.
var usMarkets = map[string]bool{"NASDAQ": true, "NYSE": true, "AMEX": true}

// Foreign classifies an item-list holding as a foreign (US) position.
func (i *BalanceItem) Foreign() bool {
	return i.Currency == CurrencyUSD ||
		i.Nation == "USA" || i.Nation == "US" ||
		usMarkets[i.Market]
}

// BalanceAccountItem is one holding in the account-stock shape. Field
// names vary between institutions, so the common aliases are all mapped.
type BalanceAccountItem struct {
	Name              string `json:"name"`
	StockName         string `json:"stockName"`
	StockNameAlt      string `json:"stock_name"`
	Price             string `json:"price"`
	CurrentPrice      string `json:"current_price"`
	Quantity          string `json:"quantity"`
	Qty               string `json:"qty"`
	StockQty          string `json:"stock_qty"`
	Amount            string `json:"amount"`
	ValuationAmount   string `json:"valuation_amount"`
	AvailableQuantity string `json:"availableQuantity"`
	AvailableQty      string `json:"available_qty"`
	MarketCode        string `json:"marketCode"`
	Nation            string `json:"nation"`
}

// DisplayName returns the first populated name alias.
func (i *BalanceAccountItem) DisplayName() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.StockName != "":
		return i.StockName
	case i.StockNameAlt != "":
		return i.StockNameAlt
	}
	return UnknownHoldingName
}

// Foreign classifies an account-stock holding as a foreign (US) position.
func (i *BalanceAccountItem) Foreign() bool {
	return usMarkets[i.MarketCode] || i.Nation == "USA" || i.Nation == "US"
}

// HoldingLine is one canonical holding of a balance snapshot. Value is in
// the holding's native currency; Price is zero when no live per-unit price
// is known.
type HoldingLine struct {
	Name     string          `json:"name"`
	Region   Region          `json:"region"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// HasLivePrice reports whether a usable per-unit price was supplied.
func (h *HoldingLine) HasLivePrice() bool {
	return h.Price.IsPositive()
}

// BalanceSnapshot is the canonical form of a balance response: cash by
// currency plus the holdings list. A snapshot is built fresh on every
// successful fetch and never mutated.
type BalanceSnapshot struct {
	AccountNumber  string                     `json:"account_number"`
	AccountName    string                     `json:"account_name"`
	CashByCurrency map[string]decimal.Decimal `json:"cash_by_currency"`
	Holdings       []HoldingLine              `json:"holdings"`
	// TotalAmount is the backend's total valuation in KRW, recomputed as
	// deposit plus holding valuations when the backend reports zero.
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Cash returns the cash amount for a currency, zero when absent.
func (s *BalanceSnapshot) Cash(currency string) decimal.Decimal {
	if s.CashByCurrency == nil {
		return decimal.Zero
	}
	return s.CashByCurrency[strings.ToUpper(currency)]
}

// ParseAmount parses a wire amount string, treating empty or malformed
// values as zero. The gateway sends numerics as strings.
func ParseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
