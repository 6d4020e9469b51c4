package main

// Combine builds the derived cross-provider dataset: for the union of all
// dates, each numeric field is the elementwise sum of the providers that
// have a record for that date, and the model lists are concatenated.
// Providers are visited in sorted name order so the output is deterministic.
// The combined dataset is never edited directly; it is rebuilt on every run
// and goes through the same reconcile/validate/totals passes as a provider.
func Combine(providers map[string]*ProviderDataset) *ProviderDataset {
	combined := NewProviderDataset()
	names := sortedProviderNames(providers)
	for _, name := range names {
		for date, rec := range providers[name].Daily {
			sum, ok := combined.Daily[date]
			if !ok {
				sum = DailyRecord{
					Date:            date,
					ModelsUsed:      []string{},
					ModelBreakdowns: []ModelBreakdown{},
				}
			}
			sum.InputTokens += rec.InputTokens
			sum.OutputTokens += rec.OutputTokens
			sum.CacheCreationTokens += rec.CacheCreationTokens
			sum.CacheReadTokens += rec.CacheReadTokens
			sum.TotalTokens += rec.TotalTokens
			sum.TotalCost += rec.TotalCost
			sum.ModelsUsed = append(sum.ModelsUsed, rec.ModelsUsed...)
			sum.ModelBreakdowns = append(sum.ModelBreakdowns, rec.ModelBreakdowns...)
			combined.Daily[date] = sum
		}
	}
	return combined
}
