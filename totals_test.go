package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDaily() []DailyRecord {
	return []DailyRecord{
		{Date: "2025-01-01", InputTokens: 10, OutputTokens: 5, TotalTokens: 15, TotalCost: 0.50},
		{Date: "2025-01-02", InputTokens: 20, OutputTokens: 10, CacheReadTokens: 5, TotalTokens: 35, TotalCost: 1.00},
	}
}

func TestSelectTotalsNoStored(t *testing.T) {
	daily := sampleDaily()
	choice := SelectTotals("claude", daily, nil, TotalsOptions{})

	require.Equal(t, "computed", choice.Source)
	require.True(t, choice.Changed)
	require.Equal(t, ComputeTotals(daily), choice.Totals)
	require.Equal(t, int64(50), choice.Totals.TotalTokens)
	require.InDelta(t, 1.50, choice.Totals.TotalCost, 1e-9)
}

func TestSelectTotalsStoredMatches(t *testing.T) {
	daily := sampleDaily()
	stored := ComputeTotals(daily)
	choice := SelectTotals("claude", daily, &stored, TotalsOptions{})

	require.Equal(t, "computed", choice.Source)
	require.False(t, choice.Changed)
}

func TestSelectTotalsZeroSentinel(t *testing.T) {
	daily := sampleDaily()
	stored := Totals{}
	choice := SelectTotals("claude", daily, &stored, TotalsOptions{})

	require.Equal(t, "computed", choice.Source)
	require.True(t, choice.Changed)
	require.Equal(t, int64(50), choice.Totals.TotalTokens)
}

func TestSelectTotalsComputedAhead(t *testing.T) {
	daily := sampleDaily()
	stored := Totals{TotalTokens: 40, TotalCost: 1.00, InputTokens: 25, OutputTokens: 15}
	choice := SelectTotals("claude", daily, &stored, TotalsOptions{})

	require.Equal(t, "computed", choice.Source)
	require.True(t, choice.Changed)
}

func TestSelectTotalsComputedAheadDryRunKeepsStored(t *testing.T) {
	daily := sampleDaily()
	stored := Totals{TotalTokens: 40, TotalCost: 1.00}
	choice := SelectTotals("claude", daily, &stored, TotalsOptions{DryRun: true})

	require.Equal(t, "stored", choice.Source)
	require.False(t, choice.Changed)
	require.Equal(t, stored, choice.Totals)
}

func TestSelectTotalsMismatchNonInteractiveKeepsStored(t *testing.T) {
	daily := sampleDaily()
	// Stored is ahead of computed: a genuine disagreement, possibly
	// operator-entered, never discarded silently.
	stored := Totals{TotalTokens: 500, TotalCost: 9.00}
	choice := SelectTotals("claude", daily, &stored, TotalsOptions{})

	require.Equal(t, "stored", choice.Source)
	require.False(t, choice.Changed)
	require.Equal(t, stored, choice.Totals)
}

func TestSelectTotalsMismatchInteractive(t *testing.T) {
	daily := sampleDaily()
	stored := Totals{TotalTokens: 500, TotalCost: 9.00}

	accept := SelectTotals("claude", daily, &stored, TotalsOptions{
		Interactive: true,
		Ask:         func(string) bool { return true },
	})
	require.Equal(t, "computed", accept.Source)
	require.True(t, accept.Changed)
	require.Equal(t, int64(50), accept.Totals.TotalTokens)

	decline := SelectTotals("claude", daily, &stored, TotalsOptions{
		Interactive: true,
		Ask:         func(string) bool { return false },
	})
	require.Equal(t, "stored", decline.Source)
	require.False(t, decline.Changed)
}

func TestSelectTotalsMismatchDryRunKeepsStoredWithoutPrompt(t *testing.T) {
	daily := sampleDaily()
	stored := Totals{TotalTokens: 500, TotalCost: 9.00}

	choice := SelectTotals("claude", daily, &stored, TotalsOptions{
		Interactive: true,
		DryRun:      true,
		Ask: func(string) bool {
			t.Fatal("dry run must not prompt")
			return false
		},
	})
	require.Equal(t, "stored", choice.Source)
}
