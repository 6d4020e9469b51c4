package main

// costTolerance is the tolerance for all cost comparisons: a record's stated
// totalCost and the sum of its per-model breakdown costs are considered equal
// when they differ by no more than this.
const costTolerance = 1e-4

// ModelBreakdown is the per-model slice of a day's usage.
type ModelBreakdown struct {
	ModelName           string  `json:"modelName"`
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens"`
	CacheReadTokens     int64   `json:"cacheReadTokens"`
	Cost                float64 `json:"cost"`
}

// DailyRecord is one calendar day's aggregated usage for one provider,
// keyed by ISO date (YYYY-MM-DD).
type DailyRecord struct {
	Date                string           `json:"date"`
	InputTokens         int64            `json:"inputTokens"`
	OutputTokens        int64            `json:"outputTokens"`
	CacheCreationTokens int64            `json:"cacheCreationTokens"`
	CacheReadTokens     int64            `json:"cacheReadTokens"`
	TotalTokens         int64            `json:"totalTokens"`
	TotalCost           float64          `json:"totalCost"`
	ModelsUsed          []string         `json:"modelsUsed"`
	ModelBreakdowns     []ModelBreakdown `json:"modelBreakdowns"`
}

// Totals aggregates the numeric fields of a set of daily records.
type Totals struct {
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens"`
	CacheReadTokens     int64   `json:"cacheReadTokens"`
	TotalTokens         int64   `json:"totalTokens"`
	TotalCost           float64 `json:"totalCost"`
}

// IsZero reports whether every field is zero. An all-zero stored totals block
// is treated as a placeholder rather than operator-entered data.
func (t Totals) IsZero() bool {
	return t.InputTokens == 0 && t.OutputTokens == 0 &&
		t.CacheCreationTokens == 0 && t.CacheReadTokens == 0 &&
		t.TotalTokens == 0 && t.TotalCost == 0
}

// Equal compares token fields exactly and cost within costTolerance.
func (t Totals) Equal(o Totals) bool {
	return t.InputTokens == o.InputTokens &&
		t.OutputTokens == o.OutputTokens &&
		t.CacheCreationTokens == o.CacheCreationTokens &&
		t.CacheReadTokens == o.CacheReadTokens &&
		t.TotalTokens == o.TotalTokens &&
		absFloat(t.TotalCost-o.TotalCost) <= costTolerance
}

// Add accumulates one record into the totals.
func (t *Totals) Add(r DailyRecord) {
	t.InputTokens += r.InputTokens
	t.OutputTokens += r.OutputTokens
	t.CacheCreationTokens += r.CacheCreationTokens
	t.CacheReadTokens += r.CacheReadTokens
	t.TotalTokens += r.TotalTokens
	t.TotalCost += r.TotalCost
}

// ComputeTotals sums a list of daily records elementwise.
func ComputeTotals(daily []DailyRecord) Totals {
	var t Totals
	for _, r := range daily {
		t.Add(r)
	}
	return t
}

// ProviderDataset holds one provider's date-keyed records and its stored
// aggregate totals. Totals is nil when the source file carried none.
type ProviderDataset struct {
	Daily  map[string]DailyRecord
	Totals *Totals
}

// NewProviderDataset returns an empty dataset ready to merge into.
func NewProviderDataset() *ProviderDataset {
	return &ProviderDataset{Daily: make(map[string]DailyRecord)}
}

// SortedDaily returns the records ordered ascending by date, the order the
// dataset file is serialized in.
func (d *ProviderDataset) SortedDaily() []DailyRecord {
	records := make([]DailyRecord, 0, len(d.Daily))
	for _, r := range d.Daily {
		records = append(records, r)
	}
	sortRecordsByDate(records)
	return records
}

// MergeConflict is a merge situation where incoming data would reduce the
// recorded token count for a date. It exists only during a run; every
// conflict is either resolved by policy or reported before the run ends.
type MergeConflict struct {
	Date     string
	Existing DailyRecord
	Incoming DailyRecord
}

// ReconciliationRecord is an audit entry for a totalCost correction. It is
// reported at the end of the run, never persisted in the dataset file.
type ReconciliationRecord struct {
	Context string
	Date    string
	Field   string
	Before  float64
	After   float64
	Delta   float64
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func sortRecordsByDate(records []DailyRecord) {
	// Dates are ISO YYYY-MM-DD, so lexicographic order is chronological.
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if records[i].Date > records[j].Date {
				records[i], records[j] = records[j], records[i]
			}
		}
	}
}
