package main

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/go-json-experiment/json"
)

// ProviderFetch is the outcome of one provider's report command. A failed
// fetch is "no data from this provider this run", never a reason to stop.
type ProviderFetch struct {
	Provider string
	Records  []DailyRecord
	Totals   *Totals
	Err      error
}

// FetchProviders runs every provider's report command concurrently and
// collects the normalized results. The fetches are independent: one
// provider failing does not cancel or block the others.
func FetchProviders(commands map[string][]string) []ProviderFetch {
	results := make(chan ProviderFetch, len(commands))

	var wg sync.WaitGroup
	for provider, argv := range commands {
		wg.Add(1)
		go func(provider string, argv []string) {
			defer wg.Done()
			results <- fetchProvider(provider, argv)
		}(provider, argv)
	}
	wg.Wait()
	close(results)

	fetches := make([]ProviderFetch, 0, len(commands))
	for f := range results {
		fetches = append(fetches, f)
	}
	return fetches
}

func fetchProvider(provider string, argv []string) ProviderFetch {
	if len(argv) == 0 {
		return ProviderFetch{Provider: provider, Err: fmt.Errorf("no report command configured")}
	}

	out, err := exec.Command(argv[0], argv[1:]...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return ProviderFetch{Provider: provider, Err: fmt.Errorf("%s: %w: %s", argv[0], err, exitErr.Stderr)}
		}
		return ProviderFetch{Provider: provider, Err: fmt.Errorf("%s: %w", argv[0], err)}
	}

	var raw any
	if err := json.Unmarshal(out, &raw); err != nil {
		return ProviderFetch{Provider: provider, Err: fmt.Errorf("%s: invalid JSON: %w", argv[0], err)}
	}

	records, totals := NormalizeImport(raw)
	return ProviderFetch{Provider: provider, Records: records, Totals: totals}
}
