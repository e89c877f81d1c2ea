package services

import (
	"github.com/shopspring/decimal"

	"github.com/upwardright/rebalance/internal/models"
)

// Display names of the cash lines, matching the names used by saved
// rebalancing records.
const (
	CashLineKRW = "원화"
	CashLineUSD = "달러"
)

var oneHundred = decimal.NewFromInt(100)

// ComputeRebalance derives current weights and buy/sell deltas for a
// snapshot against a set of target weights. It is a pure function: no
// hidden state, identical inputs give identical output, and well-typed
// input never errors. exchangeRate is the KRW amount per one USD.
//
// Every cash bucket and holding becomes a line. A line without a matching
// target gets target weight zero, proposing full liquidation. A zero-total
// snapshot yields zero weights rather than a division error.
func ComputeRebalance(snapshot *models.BalanceSnapshot, targets []models.RebalanceTarget, exchangeRate decimal.Decimal, referenceCurrency string) *models.RebalanceResult {
	result := &models.RebalanceResult{
		ReferenceCurrency: referenceCurrency,
		ExchangeRate:      exchangeRate,
	}

	for _, target := range targets {
		result.TargetWeightSum = result.TargetWeightSum.Add(target.TargetPercent)
	}
	targetByName := make(map[string]decimal.Decimal, len(targets))
	for _, target := range targets {
		targetByName[target.Name] = target.TargetPercent
	}

	type pending struct {
		line  models.RebalanceLine
		price decimal.Decimal
	}
	var lines []pending

	for _, currency := range []string{models.CurrencyKRW, models.CurrencyUSD} {
		amount := snapshot.Cash(currency)
		if amount.IsZero() {
			continue
		}
		name := CashLineKRW
		if currency == models.CurrencyUSD {
			name = CashLineUSD
		}
		lines = append(lines, pending{
			line: models.RebalanceLine{
				Name:         name,
				Region:       models.RegionCash,
				Currency:     currency,
				CurrentValue: convert(amount, currency, referenceCurrency, exchangeRate),
			},
		})
	}

	for i := range snapshot.Holdings {
		holding := &snapshot.Holdings[i]
		lines = append(lines, pending{
			line: models.RebalanceLine{
				Name:         holding.Name,
				Region:       holding.Region,
				Currency:     holding.Currency,
				CurrentValue: convert(holding.Value, holding.Currency, referenceCurrency, exchangeRate),
			},
			price: holding.Price,
		})
	}

	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].line.CurrentValue)
	}
	result.TotalValue = total

	result.Lines = make([]models.RebalanceLine, 0, len(lines))
	for i := range lines {
		line := lines[i].line
		line.TargetWeight = targetByName[line.Name]

		if total.IsPositive() {
			line.CurrentWeight = line.CurrentValue.Div(total).Mul(oneHundred)
		}
		line.DeltaValue = total.Mul(line.TargetWeight).Div(oneHundred).Sub(line.CurrentValue)

		// A share count is only actionable with a live per-unit price;
		// without one the field stays unset rather than zero.
		if line.Region != models.RegionCash && lines[i].price.IsPositive() {
			deltaNative := convert(line.DeltaValue, referenceCurrency, line.Currency, exchangeRate)
			shares := deltaNative.Div(lines[i].price)
			line.DeltaShares = &shares
		}

		result.Lines = append(result.Lines, line)
	}

	return result
}

// convert applies the multiplicative KRW-per-USD rate between the two
// supported currencies. There is no cross-rate chaining; a zero rate
// leaves the value unconverted.
func convert(value decimal.Decimal, from, to string, krwPerUSD decimal.Decimal) decimal.Decimal {
	if from == to || krwPerUSD.IsZero() {
		return value
	}
	switch {
	case from == models.CurrencyKRW && to == models.CurrencyUSD:
		return value.Div(krwPerUSD)
	case from == models.CurrencyUSD && to == models.CurrencyKRW:
		return value.Mul(krwPerUSD)
	default:
		return value
	}
}
