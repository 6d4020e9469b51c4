package main

import (
	"fmt"
	"math"
	"strings"
)

// RunContext accumulates the audit trail for one merge run. It is threaded
// through explicitly and returned to the caller rather than held in package
// state, so tests can assert against it.
type RunContext struct {
	Reconciliations []ReconciliationRecord
}

// Reconcile recomputes a record's authoritative total cost as the sum of its
// per-model breakdown costs, rounded to 8 decimals, and corrects the record
// when the stated total drifts beyond costTolerance. Records without a
// breakdown pass through unchanged.
//
// logAudit controls whether the correction is recorded; imports from
// third-party report commands drift constantly and would flood the audit
// trail, so callers suppress it for those.
func (rc *RunContext) Reconcile(rec *DailyRecord, context string, logAudit bool) {
	if len(rec.ModelBreakdowns) == 0 {
		return
	}

	var sum float64
	for _, b := range rec.ModelBreakdowns {
		sum += b.Cost
	}
	sum = roundCost(sum)

	if absFloat(sum-rec.TotalCost) <= costTolerance {
		return
	}

	if logAudit {
		rc.Reconciliations = append(rc.Reconciliations, ReconciliationRecord{
			Context: context,
			Date:    rec.Date,
			Field:   "totalCost",
			Before:  rec.TotalCost,
			After:   sum,
			Delta:   sum - rec.TotalCost,
		})
	}
	rec.TotalCost = sum
}

// ReconcileAll applies Reconcile to every record in place.
func (rc *RunContext) ReconcileAll(records []DailyRecord, context string, logAudit bool) {
	for i := range records {
		rc.Reconcile(&records[i], context, logAudit)
	}
}

// ReconcileDataset applies Reconcile to every record of a date-keyed dataset.
func (rc *RunContext) ReconcileDataset(daily map[string]DailyRecord, context string, logAudit bool) {
	for date, rec := range daily {
		rc.Reconcile(&rec, context, logAudit)
		daily[date] = rec
	}
}

// maxValidationDump bounds how many offending dates a validation error lists.
const maxValidationDump = 10

// ValidateRecords is the last line of defense before writing output: every
// record's stated total cost must equal its breakdown-cost sum within
// costTolerance. A violation means the reconciler was bypassed somewhere and
// the run must abort before any file is written.
func ValidateRecords(records []DailyRecord, label string) error {
	type violation struct {
		date  string
		delta float64
	}

	var bad []violation
	for _, rec := range records {
		if len(rec.ModelBreakdowns) == 0 {
			continue
		}
		var sum float64
		for _, b := range rec.ModelBreakdowns {
			sum += b.Cost
		}
		sum = roundCost(sum)
		if absFloat(sum-rec.TotalCost) > costTolerance {
			bad = append(bad, violation{date: rec.Date, delta: sum - rec.TotalCost})
		}
	}

	if len(bad) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d record(s) with totalCost mismatch:", label, len(bad))
	for i, v := range bad {
		if i == maxValidationDump {
			fmt.Fprintf(&sb, " ... and %d more", len(bad)-maxValidationDump)
			break
		}
		fmt.Fprintf(&sb, " %s (delta %+.6f)", v.date, v.delta)
	}
	return fmt.Errorf("%s", sb.String())
}

// roundCost rounds a cost sum to 8 decimal digits, enough to absorb float
// accumulation noise without losing sub-cent precision.
func roundCost(f float64) float64 {
	return math.Round(f*1e8) / 1e8
}
