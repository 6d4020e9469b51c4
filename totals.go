package main

import "log"

// TotalsOptions controls how a stored/computed disagreement is resolved.
type TotalsOptions struct {
	Interactive bool
	DryRun      bool
	// Ask is consulted once on a genuine mismatch when Interactive is set.
	// Returning true switches to the computed totals.
	Ask func(prompt string) bool
}

// TotalsChoice is the selector's outcome for one dataset.
type TotalsChoice struct {
	Totals  Totals
	Source  string // "computed" or "stored"
	Changed bool
}

// SelectTotals decides whether a dataset's stored aggregate totals should be
// replaced by totals recomputed from its (now merged) daily records.
//
// Stored totals win by default on a genuine mismatch: they may be
// operator-entered, and discarding them silently would lose data. Computed
// totals win when there is nothing stored, when stored is a zero placeholder,
// or when the records have simply moved ahead of a stale stored block.
func SelectTotals(label string, daily []DailyRecord, stored *Totals, opts TotalsOptions) TotalsChoice {
	computed := ComputeTotals(daily)

	if stored == nil {
		return TotalsChoice{Totals: computed, Source: "computed", Changed: true}
	}
	if stored.Equal(computed) {
		return TotalsChoice{Totals: computed, Source: "computed", Changed: false}
	}

	// Zero placeholder, or records moved ahead of a stale stored block.
	if stored.IsZero() || computed.TotalTokens > stored.TotalTokens ||
		computed.TotalCost > stored.TotalCost+costTolerance {
		if opts.DryRun {
			log.Printf("%s: totals would update to %s tokens / $%.4f (stored %s / $%.4f)",
				label, formatTokens(computed.TotalTokens), computed.TotalCost,
				formatTokens(stored.TotalTokens), stored.TotalCost)
			return TotalsChoice{Totals: *stored, Source: "stored", Changed: false}
		}
		return TotalsChoice{Totals: computed, Source: "computed", Changed: true}
	}

	// Genuine mismatch: computed is behind stored in some dimension.
	if opts.DryRun {
		log.Printf("%s: stored totals (%s tokens / $%.4f) disagree with computed (%s tokens / $%.4f); keeping stored",
			label, formatTokens(stored.TotalTokens), stored.TotalCost,
			formatTokens(computed.TotalTokens), computed.TotalCost)
		return TotalsChoice{Totals: *stored, Source: "stored", Changed: false}
	}
	if !opts.Interactive || opts.Ask == nil {
		return TotalsChoice{Totals: *stored, Source: "stored", Changed: false}
	}

	prompt := sprintTotalsPrompt(label, *stored, computed)
	if opts.Ask(prompt) {
		return TotalsChoice{Totals: computed, Source: "computed", Changed: true}
	}
	return TotalsChoice{Totals: *stored, Source: "stored", Changed: false}
}
