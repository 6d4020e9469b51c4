package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func existingFixture() *DatasetFile {
	claude := NewProviderDataset()
	claude.Daily["2025-01-01"] = DailyRecord{
		Date: "2025-01-01", TotalTokens: 100, TotalCost: 1.00,
		ModelBreakdowns: []ModelBreakdown{{ModelName: "claude-sonnet", Cost: 1.00}},
	}
	return &DatasetFile{Providers: map[string]*ProviderDataset{"claude": claude}}
}

func TestMergeRunReconcilesAndReplaces(t *testing.T) {
	file := existingFixture()
	imports := []ProviderFetch{{
		Provider: "claude",
		Records: []DailyRecord{{
			Date: "2025-01-01", TotalTokens: 120, TotalCost: 1.19,
			ModelBreakdowns: []ModelBreakdown{{Cost: 0.60}, {Cost: 0.60}},
		}},
	}}

	report, combined, err := MergeRun(file, imports, RunOptions{})
	require.NoError(t, err)

	final := file.Providers["claude"].Daily["2025-01-01"]
	require.Equal(t, int64(120), final.TotalTokens)
	require.InDelta(t, 1.20, final.TotalCost, 1e-9)

	require.Len(t, report.Providers, 1)
	pr := report.Providers[0]
	require.Equal(t, 1, pr.Replaced)
	require.Zero(t, pr.Added)
	require.Empty(t, pr.ConflictsKept)
	// Import reconciliation is expected drift, kept out of the audit trail.
	require.Empty(t, report.Reconciliations)

	require.Equal(t, int64(120), combined.Daily["2025-01-01"].TotalTokens)
	require.NotNil(t, combined.Totals)
	require.Equal(t, int64(120), combined.Totals.TotalTokens)
}

func TestMergeRunLowerTokensConflictKept(t *testing.T) {
	file := existingFixture()
	imports := []ProviderFetch{{
		Provider: "claude",
		Records: []DailyRecord{{
			Date: "2025-01-01", TotalTokens: 80, TotalCost: 0.80,
			ModelBreakdowns: []ModelBreakdown{{Cost: 0.80}},
		}},
	}}

	report, _, err := MergeRun(file, imports, RunOptions{})
	require.NoError(t, err)

	require.Equal(t, int64(100), file.Providers["claude"].Daily["2025-01-01"].TotalTokens)
	pr := report.Providers[0]
	require.Zero(t, pr.Replaced)
	require.Equal(t, []string{"2025-01-01"}, pr.ConflictsKept)
}

func TestMergeRunAcceptLowerOverrides(t *testing.T) {
	file := existingFixture()
	imports := []ProviderFetch{{
		Provider: "claude",
		Records: []DailyRecord{{
			Date: "2025-01-01", TotalTokens: 80, TotalCost: 0.80,
			ModelBreakdowns: []ModelBreakdown{{Cost: 0.80}},
		}},
	}}

	report, _, err := MergeRun(file, imports, RunOptions{AcceptLower: true})
	require.NoError(t, err)

	require.Equal(t, int64(80), file.Providers["claude"].Daily["2025-01-01"].TotalTokens)
	pr := report.Providers[0]
	require.Equal(t, 1, pr.Replaced)
	require.Equal(t, []string{"2025-01-01"}, pr.ConflictsResolved)
	require.Empty(t, pr.ConflictsKept)
}

func TestMergeRunDryRunLeavesConflictUnapplied(t *testing.T) {
	file := existingFixture()
	imports := []ProviderFetch{{
		Provider: "claude",
		Records: []DailyRecord{{
			Date: "2025-01-01", TotalTokens: 80, TotalCost: 0.80,
			ModelBreakdowns: []ModelBreakdown{{Cost: 0.80}},
		}},
	}}

	report, _, err := MergeRun(file, imports, RunOptions{DryRun: true, AcceptLower: true})
	require.NoError(t, err)

	// Previewed as a replacement but the record is untouched.
	require.Equal(t, int64(100), file.Providers["claude"].Daily["2025-01-01"].TotalTokens)
	require.Equal(t, []string{"2025-01-01"}, report.Providers[0].ConflictsResolved)
	require.True(t, report.DryRun)
}

func TestMergeRunFetchFailureIsTolerated(t *testing.T) {
	file := existingFixture()
	imports := []ProviderFetch{
		{Provider: "claude", Records: []DailyRecord{{Date: "2025-01-02", TotalTokens: 50, TotalCost: 0.50}}},
		{Provider: "codex", Err: errors.New("exit status 1")},
	}

	report, combined, err := MergeRun(file, imports, RunOptions{})
	require.NoError(t, err)

	require.Len(t, report.Providers, 2)
	require.NoError(t, report.Providers[0].FetchErr)
	require.Error(t, report.Providers[1].FetchErr)
	require.Equal(t, 1, report.Providers[0].Added)
	require.Len(t, file.Providers["claude"].Daily, 2)
	require.Equal(t, int64(150), combined.Totals.TotalTokens)
}

func TestMergeRunDropsEmptyDateImports(t *testing.T) {
	file := &DatasetFile{Providers: map[string]*ProviderDataset{}}
	imports := []ProviderFetch{{
		Provider: "claude",
		Records: []DailyRecord{
			{Date: "", TotalTokens: 10},
			{Date: "2025-01-01", TotalTokens: 10, TotalCost: 0.10},
		},
	}}

	report, _, err := MergeRun(file, imports, RunOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Providers[0].Imported)
	require.Equal(t, 1, report.Providers[0].Added)
	require.Len(t, file.Providers["claude"].Daily, 1)
}

func TestMergeRunReconcilesDriftBeforeValidation(t *testing.T) {
	// Drifted records entering through the normal pipeline are corrected by
	// the reconciler, so the validator never fires on them.
	claude := NewProviderDataset()
	claude.Daily["2025-01-01"] = DailyRecord{
		Date: "2025-01-01", TotalTokens: 100, TotalCost: 5.00,
		ModelBreakdowns: []ModelBreakdown{{Cost: 1.00}},
	}
	file := &DatasetFile{Providers: map[string]*ProviderDataset{"claude": claude}}

	_, _, err := MergeRun(file, nil, RunOptions{})
	require.NoError(t, err)
	require.NoError(t, ValidateRecords(file.Providers["claude"].SortedDaily(), "claude"))
}

func TestMergeRunExistingReconciliationIsAudited(t *testing.T) {
	claude := NewProviderDataset()
	claude.Daily["2025-01-01"] = DailyRecord{
		Date: "2025-01-01", TotalTokens: 100, TotalCost: 5.00,
		ModelBreakdowns: []ModelBreakdown{{Cost: 1.00}},
	}
	file := &DatasetFile{Providers: map[string]*ProviderDataset{"claude": claude}}

	report, _, err := MergeRun(file, nil, RunOptions{})
	require.NoError(t, err)

	require.Len(t, report.Reconciliations, 1)
	require.Equal(t, "existing:claude", report.Reconciliations[0].Context)
	require.InDelta(t, 1.00, file.Providers["claude"].Daily["2025-01-01"].TotalCost, 1e-9)
}

func TestMergeRunTotalsDecisions(t *testing.T) {
	file := existingFixture()
	stored := Totals{TotalTokens: 500, TotalCost: 9.00}
	file.Providers["claude"].Totals = &stored

	report, _, err := MergeRun(file, nil, RunOptions{})
	require.NoError(t, err)

	require.Len(t, report.Totals, 2)
	require.Equal(t, "claude", report.Totals[0].Label)
	require.Equal(t, "stored", report.Totals[0].Source)
	require.Equal(t, "combined", report.Totals[1].Label)
	require.Equal(t, "computed", report.Totals[1].Source)
}

func TestMergeRunNewProviderTotalsAreComputed(t *testing.T) {
	file := &DatasetFile{Providers: map[string]*ProviderDataset{}}
	imports := []ProviderFetch{{
		Provider: "codex",
		Records: []DailyRecord{{
			Date: "2025-01-01", TotalTokens: 50, TotalCost: 1.50,
			ModelBreakdowns: []ModelBreakdown{{Cost: 1.50}},
		}},
		Totals: &Totals{TotalTokens: 999, TotalCost: 99.00},
	}}

	report, _, err := MergeRun(file, imports, RunOptions{})
	require.NoError(t, err)

	// A provider with nothing stored gets totals computed from its merged
	// records; whatever the report claimed never masquerades as stored.
	require.Equal(t, "codex", report.Totals[0].Label)
	require.Equal(t, "computed", report.Totals[0].Source)
	require.Equal(t, int64(50), file.Providers["codex"].Totals.TotalTokens)
}
