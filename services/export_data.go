package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarginSummary holds the aggregate figures printed on the margin report.
type MarginSummary struct {
	Title            string
	GeneratedDate    string
	EntryCount       int
	ClassCounts      map[MarginClass]int
	TotalClient      float64
	TotalSubcon      float64
	TotalProfit      float64
	OverallMarginPct float64 // TotalProfit / TotalClient * 100, 2 dp
}

// Summarize aggregates entries for the margin report.
func Summarize(title string, entries []Entry, now time.Time) MarginSummary {
	s := MarginSummary{
		Title:         title,
		GeneratedDate: now.Format("02 Jan 2006"),
		EntryCount:    len(entries),
		ClassCounts: map[MarginClass]int{
			MarginHealthy:     0,
			MarginBelowTarget: 0,
			MarginLossRisk:    0,
		},
	}

	client, subcon := decimal.Zero, decimal.Zero
	for _, e := range entries {
		s.ClassCounts[e.Class()]++
		client = client.Add(decimal.NewFromFloat(e.ClientTotal))
		subcon = subcon.Add(decimal.NewFromFloat(e.SubTotal))
	}
	profit := client.Sub(subcon)

	s.TotalClient = client.InexactFloat64()
	s.TotalSubcon = subcon.InexactFloat64()
	s.TotalProfit = profit.InexactFloat64()
	if !client.IsZero() {
		s.OverallMarginPct = profit.Div(client).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	return s
}
