// Package services holds the margin tracker's domain logic: the margin
// calculator, the entry store and its persisters, filtering, spreadsheet
// import/reconciliation and export.
package services

import "github.com/shopspring/decimal"

// Margin thresholds, in percent. Each bucket includes its lower bound.
const (
	HealthyMarginThreshold     = 30.0
	BelowTargetMarginThreshold = 20.0
)

// MarginClass is the three-way classification of a margin percentage.
type MarginClass string

const (
	MarginHealthy     MarginClass = "Healthy"
	MarginBelowTarget MarginClass = "Below Target"
	MarginLossRisk    MarginClass = "Loss Risk"
)

// MarginCalc holds the derived amounts for one entry.
type MarginCalc struct {
	ClientTotal float64 // ClientUnitPrice * RequestedQty
	SubTotal    float64 // SubconUnitPrice * SubconQty
	Profit      float64 // ClientTotal - SubTotal
	MarginPct   float64 // Profit / ClientTotal * 100, 2 dp; 0 when ClientTotal is 0
}

// CalcMargin computes totals, profit and margin percentage from the four
// input fields of an entry.
func CalcMargin(clientUnitPrice float64, requestedQty int, subconUnitPrice float64, subconQty int) MarginCalc {
	clientTotal := decimal.NewFromFloat(clientUnitPrice).Mul(decimal.NewFromInt(int64(requestedQty)))
	subTotal := decimal.NewFromFloat(subconUnitPrice).Mul(decimal.NewFromInt(int64(subconQty)))
	profit := clientTotal.Sub(subTotal)

	margin := decimal.Zero
	if !clientTotal.IsZero() {
		margin = profit.Div(clientTotal).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return MarginCalc{
		ClientTotal: clientTotal.InexactFloat64(),
		SubTotal:    subTotal.InexactFloat64(),
		Profit:      profit.InexactFloat64(),
		MarginPct:   margin.InexactFloat64(),
	}
}

// Classify buckets a (rounded) margin percentage.
func Classify(marginPct float64) MarginClass {
	switch {
	case marginPct >= HealthyMarginThreshold:
		return MarginHealthy
	case marginPct >= BelowTargetMarginThreshold:
		return MarginBelowTarget
	default:
		return MarginLossRisk
	}
}
