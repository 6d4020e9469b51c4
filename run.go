package main

import (
	"log"
	"sort"
)

// RunOptions are the operator-facing knobs for one merge run.
type RunOptions struct {
	DryRun      bool
	AcceptLower bool
	// Interactive permits blocking prompts for conflicts and totals
	// disagreements. Callers clear it when stdin is not a terminal or the
	// run is a dry run.
	Interactive bool
	// Ask answers a yes/no prompt; required when Interactive is set.
	Ask func(prompt string) bool
}

// ProviderReport summarizes one provider's merge pass.
type ProviderReport struct {
	Provider          string
	FetchErr          error
	Imported          int
	Added             int
	Replaced          int
	Unchanged         int
	ConflictsResolved []string
	ConflictsKept     []string
}

// TotalsDecision records which totals a dataset ended up with.
type TotalsDecision struct {
	Label   string
	Source  string
	Changed bool
}

// RunReport is everything the caller needs to print or act on after a run.
type RunReport struct {
	Providers       []ProviderReport
	Totals          []TotalsDecision
	Reconciliations []ReconciliationRecord
	DryRun          bool
}

// MergeRun drives the whole in-memory pipeline over an already-loaded
// dataset and already-fetched imports: reconcile existing data, merge each
// provider, resolve conflicts by policy, rebuild the combined view, validate
// everything, and select totals. It mutates file.Providers in place and
// returns the combined dataset alongside the report.
//
// A validation failure is the only error; the caller must not write any
// output when it occurs.
func MergeRun(file *DatasetFile, imports []ProviderFetch, opts RunOptions) (*RunReport, *ProviderDataset, error) {
	rc := &RunContext{}
	report := &RunReport{DryRun: opts.DryRun}

	for name, ds := range file.Providers {
		rc.ReconcileDataset(ds.Daily, "existing:"+name, true)
	}

	sort.Slice(imports, func(i, j int) bool {
		return imports[i].Provider < imports[j].Provider
	})

	for _, imp := range imports {
		pr := ProviderReport{Provider: imp.Provider, FetchErr: imp.Err}
		if imp.Err != nil {
			log.Printf("Warning: %s fetch failed, continuing without it: %v", imp.Provider, imp.Err)
			report.Providers = append(report.Providers, pr)
			continue
		}

		records := make([]DailyRecord, 0, len(imp.Records))
		for _, rec := range imp.Records {
			if rec.Date == "" {
				log.Printf("Warning: %s import carried a record without a date, skipping it", imp.Provider)
				continue
			}
			records = append(records, rec)
		}
		pr.Imported = len(records)

		// Imported data drifts constantly, so corrections here are expected
		// and kept out of the audit trail.
		rc.ReconcileAll(records, "import:"+imp.Provider, false)

		ds, ok := file.Providers[imp.Provider]
		if !ok {
			ds = NewProviderDataset()
			file.Providers[imp.Provider] = ds
		}
		// Totals claimed by the report are advisory only; stored totals come
		// from the dataset file, and totals selection recomputes from the
		// merged records.
		if imp.Totals != nil && !imp.Totals.Equal(ComputeTotals(records)) {
			log.Printf("Warning: %s report's claimed totals disagree with its daily records", imp.Provider)
		}

		result := MergeDaily(ds.Daily, records)
		outcome := ResolveConflicts(ds.Daily, result.Conflicts, conflictStrategy(opts))

		pr.Added = len(result.Added)
		// Resolved conflicts count as replacements for reporting.
		pr.Replaced = len(result.Replaced) + len(outcome.Resolved)
		pr.Unchanged = len(result.Unchanged)
		pr.ConflictsResolved = outcome.Resolved
		pr.ConflictsKept = outcome.Skipped
		report.Providers = append(report.Providers, pr)
	}

	combined := Combine(file.Providers)
	rc.ReconcileDataset(combined.Daily, "combined", true)

	names := sortedProviderNames(file.Providers)
	for _, name := range names {
		if err := ValidateRecords(file.Providers[name].SortedDaily(), name); err != nil {
			return nil, nil, err
		}
	}
	if err := ValidateRecords(combined.SortedDaily(), "combined"); err != nil {
		return nil, nil, err
	}

	totalsOpts := TotalsOptions{Interactive: opts.Interactive, DryRun: opts.DryRun, Ask: opts.Ask}
	for _, name := range names {
		ds := file.Providers[name]
		choice := SelectTotals(name, ds.SortedDaily(), ds.Totals, totalsOpts)
		ds.Totals = &choice.Totals
		report.Totals = append(report.Totals, TotalsDecision{Label: name, Source: choice.Source, Changed: choice.Changed})
	}
	combinedChoice := SelectTotals("combined", combined.SortedDaily(), file.CombinedTotals, totalsOpts)
	combined.Totals = &combinedChoice.Totals
	report.Totals = append(report.Totals, TotalsDecision{Label: "combined", Source: combinedChoice.Source, Changed: combinedChoice.Changed})

	report.Reconciliations = rc.Reconciliations
	return report, combined, nil
}

// conflictStrategy maps the run options onto a resolution policy. Dry run
// always previews; accept-lower is a deliberate operator override.
func conflictStrategy(opts RunOptions) ConflictStrategy {
	switch {
	case opts.DryRun:
		return DryRunPreview{AcceptLower: opts.AcceptLower}
	case opts.AcceptLower:
		return AutoAccept{}
	case opts.Interactive:
		return Interactive{Ask: opts.Ask}
	default:
		return AutoKeep{}
	}
}

func sortedProviderNames(providers map[string]*ProviderDataset) []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
