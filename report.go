package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// formatTokens formats a token count in a human-readable way
func formatTokens(tokens int64) string {
	if tokens == 0 {
		return "0"
	}

	switch {
	case tokens >= 1_000_000_000:
		return fmt.Sprintf("%.1fb", float64(tokens)/1_000_000_000.0)
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fm", float64(tokens)/1_000_000.0)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fk", float64(tokens)/1_000.0)
	default:
		return strconv.FormatInt(tokens, 10)
	}
}

// RenderRunReport prints the per-provider merge summary table followed by
// the audit trail and totals decisions.
func RenderRunReport(report *RunReport) {
	if report.DryRun {
		fmt.Println("Dry run - no files were modified.")
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})))
	table.Header([]string{"Provider", "Imported", "Added", "Replaced", "Unchanged", "Conflicts kept"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.PerColumn = []tw.Align{
			tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignRight, tw.AlignRight,
		}
	})

	for _, pr := range report.Providers {
		if pr.FetchErr != nil {
			table.Append([]string{pr.Provider, "fetch failed", "-", "-", "-", "-"})
			continue
		}
		table.Append([]string{
			pr.Provider,
			strconv.Itoa(pr.Imported),
			strconv.Itoa(pr.Added),
			strconv.Itoa(pr.Replaced),
			strconv.Itoa(pr.Unchanged),
			strconv.Itoa(len(pr.ConflictsKept)),
		})
	}
	table.Render()

	for _, pr := range report.Providers {
		for _, date := range pr.ConflictsResolved {
			if report.DryRun {
				fmt.Printf("%s %s: would accept lower-token record\n", pr.Provider, date)
			} else {
				fmt.Printf("%s %s: accepted lower-token record\n", pr.Provider, date)
			}
		}
		for _, date := range pr.ConflictsKept {
			fmt.Printf("%s %s: incoming record has fewer tokens, kept existing (use -accept-lower to override)\n", pr.Provider, date)
		}
	}

	if n := len(report.Reconciliations); n > 0 {
		fmt.Printf("Reconciled %d record(s):\n", n)
		for _, rec := range report.Reconciliations {
			fmt.Printf("  %s %s: %s %.6f -> %.6f (delta %+.6f)\n",
				rec.Context, rec.Date, rec.Field, rec.Before, rec.After, rec.Delta)
		}
	}

	for _, td := range report.Totals {
		if td.Source == "stored" {
			fmt.Printf("%s: kept stored totals\n", td.Label)
		} else if td.Changed {
			fmt.Printf("%s: totals recomputed from daily records\n", td.Label)
		}
	}
}

// sprintTotalsPrompt builds the yes/no prompt for a genuine stored/computed
// totals disagreement.
func sprintTotalsPrompt(label string, stored, computed Totals) string {
	return fmt.Sprintf("%s: replace stored totals (%s tokens, $%.4f) with computed (%s tokens, $%.4f)?",
		label,
		formatTokens(stored.TotalTokens), stored.TotalCost,
		formatTokens(computed.TotalTokens), computed.TotalCost)
}
