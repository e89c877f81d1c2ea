package services

import (
	"github.com/shopspring/decimal"

	"github.com/upwardright/rebalance/internal/apperrors"
	"github.com/upwardright/rebalance/internal/models"
)

// NormalizeBalance maps a balance envelope into a canonical snapshot.
// A non-success result code becomes a RemoteRejectedError; a payload with
// neither recognized shape returns ErrUnrecognizedShape together with a
// zero-valued snapshot the caller may still use.
func NormalizeBalance(envelope *models.BalanceEnvelope, accountNumber string) (*models.BalanceSnapshot, error) {
	if envelope.Result.Code != models.ResultCodeSuccess {
		return nil, &apperrors.RemoteRejectedError{
			Code:    envelope.Result.Code,
			Message: envelope.Result.Message,
		}
	}

	payload := &envelope.Data
	snapshot := &models.BalanceSnapshot{
		AccountNumber:  firstNonEmpty(payload.Account, accountNumber),
		AccountName:    firstNonEmpty(payload.AccountName, payload.Account, accountNumber),
		CashByCurrency: map[string]decimal.Decimal{},
	}

	krwCash := models.ParseAmount(firstNonEmpty(payload.DepositD2, payload.Deposit, payload.AccountBalance))
	snapshot.CashByCurrency[models.CurrencyKRW] = krwCash
	if usd := models.ParseAmount(payload.USDBalance); !usd.IsZero() {
		snapshot.CashByCurrency[models.CurrencyUSD] = usd
	}

	var shapeErr error
	switch {
	case payload.HasItemList():
		snapshot.Holdings = holdingsFromItemList(payload.ItemList)
	case payload.HasAccountStock():
		snapshot.Holdings = holdingsFromAccountStock(payload.AccountStockList)
	default:
		shapeErr = apperrors.ErrUnrecognizedShape
	}

	// Some institutions report a zero total valuation even with funded
	// accounts; recompute from deposit plus holding valuations instead of
	// trusting the zero.
	total := models.ParseAmount(firstNonEmpty(payload.TotalAmount, payload.TotalValuation))
	if total.IsZero() {
		total = krwCash
		for i := range snapshot.Holdings {
			total = total.Add(snapshot.Holdings[i].Value)
		}
	}
	snapshot.TotalAmount = total

	return snapshot, shapeErr
}

func holdingsFromItemList(items []models.BalanceItem) []models.HoldingLine {
	holdings := make([]models.HoldingLine, 0, len(items))
	for i := range items {
		item := &items[i]

		name := item.Name
		if name == "" {
			name = models.UnknownHoldingName
		}

		region := models.RegionDomestic
		currency := models.CurrencyKRW
		if item.Foreign() {
			region = models.RegionForeign
		}
		if item.Currency == models.CurrencyUSD {
			currency = models.CurrencyUSD
		}

		holdings = append(holdings, models.HoldingLine{
			Name:     name,
			Region:   region,
			Quantity: models.ParseAmount(item.Quantity),
			Price:    models.ParseAmount(item.Price),
			Value:    models.ParseAmount(item.Valuation),
			Currency: currency,
		})
	}
	return holdings
}

func holdingsFromAccountStock(items []models.BalanceAccountItem) []models.HoldingLine {
	holdings := make([]models.HoldingLine, 0, len(items))
	for i := range items {
		item := &items[i]

		region := models.RegionDomestic
		currency := models.CurrencyKRW
		if item.Foreign() {
			region = models.RegionForeign
			currency = models.CurrencyUSD
		}

		holdings = append(holdings, models.HoldingLine{
			Name:     item.DisplayName(),
			Region:   region,
			Quantity: models.ParseAmount(firstNonEmpty(item.Quantity, item.Qty, item.StockQty)),
			Price:    models.ParseAmount(firstNonEmpty(item.Price, item.CurrentPrice)),
			Value:    models.ParseAmount(firstNonEmpty(item.Amount, item.ValuationAmount)),
			Currency: currency,
		})
	}
	return holdings
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
