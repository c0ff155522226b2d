// Package revenue splits the expected revenue of a task between its workers.
package revenue

import (
	"slices"

	"github.com/shopspring/decimal"
)

// minorUnits is the number of decimal places of the smallest coin per currency.
var minorUnits = map[string]int32{
	"VND": 0,
	"JPY": 0,
	"KRW": 0,
	"USD": 2,
	"EUR": 2,
}

const defaultMinorUnits int32 = 2

// Split returns the per worker share of expected revenue. A null revenue, or no workers,
// yields zero. No rounding is applied beyond the decimal division precision.
func Split(expected decimal.NullDecimal, workerCount int) decimal.Decimal {
	if !expected.Valid || workerCount < 1 {
		return decimal.Zero
	}
	return expected.Decimal.Div(decimal.NewFromInt(int64(workerCount)))
}

// Allocate divides expected revenue between the distinct assignees so the shares add up to
// exactly the expected amount. Every worker gets the amount truncated to the currency's minor
// unit; the leftover minor units go one each to the first assignees in ascending id order.
func Allocate(expected decimal.NullDecimal, currency string, assigneeIDs []string) map[string]decimal.Decimal {
	workers := distinctSorted(assigneeIDs)
	shares := make(map[string]decimal.Decimal, len(workers))
	if len(workers) == 0 {
		return shares
	}

	if !expected.Valid {
		for _, w := range workers {
			shares[w] = decimal.Zero
		}
		return shares
	}

	// stored amounts carry the column scale, so only significant extra digits widen the unit.
	amount := expected.Decimal
	places := minorUnitsOf(currency)
	for places < -amount.Exponent() && !amount.Equal(amount.Truncate(places)) {
		places++
	}

	count := decimal.NewFromInt(int64(len(workers)))
	base := amount.Div(count).Truncate(places)
	unit := decimal.New(1, -places)
	leftover := amount.Sub(base.Mul(count)).Div(unit).IntPart()

	for i, w := range workers {
		share := base
		if int64(i) < leftover {
			share = share.Add(unit)
		}
		shares[w] = share
	}

	return shares
}

// WorkerCount is the number of distinct non-empty assignee ids.
func WorkerCount(assigneeIDs []string) int {
	return len(distinctSorted(assigneeIDs))
}

func minorUnitsOf(currency string) int32 {
	if places, ok := minorUnits[currency]; ok {
		return places
	}
	return defaultMinorUnits
}

func distinctSorted(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
