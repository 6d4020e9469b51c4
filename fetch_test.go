package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchProvidersParsesReportOutput(t *testing.T) {
	doc := `{"daily": [{"date": "2025-01-01", "totalTokens": 10, "totalCost": 0.1}], "totals": {"totalTokens": 10}}`
	fetches := FetchProviders(map[string][]string{
		"claude": {"echo", doc},
	})

	require.Len(t, fetches, 1)
	f := fetches[0]
	require.Equal(t, "claude", f.Provider)
	require.NoError(t, f.Err)
	require.Len(t, f.Records, 1)
	require.Equal(t, int64(10), f.Records[0].TotalTokens)
	require.NotNil(t, f.Totals)
}

func TestFetchProvidersToleratesFailures(t *testing.T) {
	fetches := FetchProviders(map[string][]string{
		"claude":  {"echo", `[]`},
		"codex":   {"/nonexistent-report-command"},
		"gemini":  {"echo", "not json"},
		"missing": {},
	})

	require.Len(t, fetches, 4)
	byName := make(map[string]ProviderFetch)
	for _, f := range fetches {
		byName[f.Provider] = f
	}

	require.NoError(t, byName["claude"].Err)
	require.Error(t, byName["codex"].Err)
	require.Error(t, byName["gemini"].Err)
	require.Error(t, byName["missing"].Err)
}
