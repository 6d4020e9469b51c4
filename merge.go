package main

import "fmt"

// MergeResult classifies every incoming date from one merge pass.
// Added/Replaced/Unchanged carry dates only; conflicts carry both records so
// the resolver can show what would be lost.
type MergeResult struct {
	Added     []string
	Replaced  []string
	Unchanged []string
	Conflicts []MergeConflict
}

// replacementBetter reports whether the incoming record should replace the
// existing one for the same date: strictly more total tokens wins, then
// strictly higher total cost, then strictly more breakdown entries. The
// tie-break order is load-bearing: changing it would silently alter which
// historical data wins on every re-merge.
func replacementBetter(incoming, existing DailyRecord) bool {
	if incoming.TotalTokens != existing.TotalTokens {
		return incoming.TotalTokens > existing.TotalTokens
	}
	if incoming.TotalCost != existing.TotalCost {
		return incoming.TotalCost > existing.TotalCost
	}
	return len(incoming.ModelBreakdowns) > len(existing.ModelBreakdowns)
}

// MergeDaily merges an incoming list of records into an existing date-keyed
// dataset, mutating it in place. Dates that would lose tokens are classified
// as conflicts and left unwritten for the conflict resolver to decide.
func MergeDaily(existing map[string]DailyRecord, incoming []DailyRecord) MergeResult {
	var result MergeResult
	for _, rec := range incoming {
		current, ok := existing[rec.Date]
		switch {
		case !ok:
			existing[rec.Date] = rec
			result.Added = append(result.Added, rec.Date)
		case replacementBetter(rec, current):
			existing[rec.Date] = rec
			result.Replaced = append(result.Replaced, rec.Date)
		case rec.TotalTokens < current.TotalTokens:
			result.Conflicts = append(result.Conflicts, MergeConflict{
				Date:     rec.Date,
				Existing: current,
				Incoming: rec,
			})
		default:
			result.Unchanged = append(result.Unchanged, rec.Date)
		}
	}
	return result
}

// Resolution is one strategy's decision for a conflict. Preview decisions
// are reported but never applied to the dataset.
type Resolution struct {
	TakeIncoming bool
	Preview      bool
}

// ConflictStrategy decides what to do with a date whose incoming record
// carries fewer tokens than the existing one. The same resolver logic runs
// under an auto policy, a CLI prompt, or a scripted test harness.
type ConflictStrategy interface {
	Resolve(c MergeConflict) Resolution
}

// AutoAccept always takes the incoming (lower-token) record. This is the
// operator's explicit accept-lower override.
type AutoAccept struct{}

func (AutoAccept) Resolve(MergeConflict) Resolution {
	return Resolution{TakeIncoming: true}
}

// AutoKeep always keeps the existing record and reports the conflict as
// unresolved. This is the non-interactive default: recorded usage is never
// silently reduced.
type AutoKeep struct{}

func (AutoKeep) Resolve(MergeConflict) Resolution {
	return Resolution{TakeIncoming: false}
}

// Interactive asks once per conflict. Ask receives a one-line prompt and
// returns true to replace.
type Interactive struct {
	Ask func(prompt string) bool
}

func (s Interactive) Resolve(c MergeConflict) Resolution {
	prompt := fmt.Sprintf("%s: replace %s tokens ($%.4f) with %s tokens ($%.4f)?",
		c.Date,
		formatTokens(c.Existing.TotalTokens), c.Existing.TotalCost,
		formatTokens(c.Incoming.TotalTokens), c.Incoming.TotalCost)
	return Resolution{TakeIncoming: s.Ask(prompt)}
}

// DryRunPreview classifies each conflict the way a real run would (replace
// when AcceptLower is set, keep otherwise) without mutating anything.
type DryRunPreview struct {
	AcceptLower bool
}

func (s DryRunPreview) Resolve(MergeConflict) Resolution {
	return Resolution{TakeIncoming: s.AcceptLower, Preview: true}
}

// ResolveOutcome lists which conflict dates were replaced and which kept
// their existing record.
type ResolveOutcome struct {
	Resolved []string
	Skipped  []string
}

// ResolveConflicts runs the strategy over each conflict in order, applying
// replacements to the target dataset unless the decision is a preview.
func ResolveConflicts(target map[string]DailyRecord, conflicts []MergeConflict, strategy ConflictStrategy) ResolveOutcome {
	var outcome ResolveOutcome
	for _, c := range conflicts {
		res := strategy.Resolve(c)
		if res.TakeIncoming {
			if !res.Preview {
				target[c.Date] = c.Incoming
			}
			outcome.Resolved = append(outcome.Resolved, c.Date)
		} else {
			outcome.Skipped = append(outcome.Skipped, c.Date)
		}
	}
	return outcome
}
