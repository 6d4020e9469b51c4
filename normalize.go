package main

import "math"

// The normalizer coerces arbitrary decoded JSON into typed records so that
// everything downstream is total: malformed input degrades to zero-valued
// fields instead of failing. Empty dates are not rejected here; callers drop
// them before merging.

// asFloat returns v as a finite float64, or 0 for anything else.
func asFloat(v any) float64 {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// asInt truncates a finite numeric value to int64, or returns 0. Values
// beyond int64 range clamp rather than hit the implementation-defined
// overflow conversion.
func asInt(v any) int64 {
	f := asFloat(v)
	// float64(math.MaxInt64) is exactly 2^63, one past the largest int64.
	if f >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	if f <= float64(math.MinInt64) {
		return math.MinInt64
	}
	return int64(f)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asSlice(v any) []any {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	return s
}

func asObject(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m
}

// NormalizeRecord coerces one decoded JSON value into a DailyRecord.
func NormalizeRecord(v any) DailyRecord {
	obj := asObject(v)
	rec := DailyRecord{
		Date:                asString(obj["date"]),
		InputTokens:         asInt(obj["inputTokens"]),
		OutputTokens:        asInt(obj["outputTokens"]),
		CacheCreationTokens: asInt(obj["cacheCreationTokens"]),
		CacheReadTokens:     asInt(obj["cacheReadTokens"]),
		TotalTokens:         asInt(obj["totalTokens"]),
		TotalCost:           asFloat(obj["totalCost"]),
		ModelsUsed:          []string{},
		ModelBreakdowns:     []ModelBreakdown{},
	}

	for _, m := range asSlice(obj["modelsUsed"]) {
		if name := asString(m); name != "" {
			rec.ModelsUsed = append(rec.ModelsUsed, name)
		}
	}

	for _, b := range asSlice(obj["modelBreakdowns"]) {
		bObj := asObject(b)
		rec.ModelBreakdowns = append(rec.ModelBreakdowns, ModelBreakdown{
			ModelName:           asString(bObj["modelName"]),
			InputTokens:         asInt(bObj["inputTokens"]),
			OutputTokens:        asInt(bObj["outputTokens"]),
			CacheCreationTokens: asInt(bObj["cacheCreationTokens"]),
			CacheReadTokens:     asInt(bObj["cacheReadTokens"]),
			Cost:                asFloat(bObj["cost"]),
		})
	}

	return rec
}

// NormalizeRecords coerces a decoded JSON array into daily records.
// A non-array value yields an empty list.
func NormalizeRecords(v any) []DailyRecord {
	items := asSlice(v)
	records := make([]DailyRecord, 0, len(items))
	for _, item := range items {
		records = append(records, NormalizeRecord(item))
	}
	return records
}

// NormalizeTotals coerces a decoded JSON value into aggregate totals.
func NormalizeTotals(v any) Totals {
	obj := asObject(v)
	return Totals{
		InputTokens:         asInt(obj["inputTokens"]),
		OutputTokens:        asInt(obj["outputTokens"]),
		CacheCreationTokens: asInt(obj["cacheCreationTokens"]),
		CacheReadTokens:     asInt(obj["cacheReadTokens"]),
		TotalTokens:         asInt(obj["totalTokens"]),
		TotalCost:           asFloat(obj["totalCost"]),
	}
}

// NormalizeImport extracts daily records and optional totals from a
// provider's native report shape: either a bare array of records or an
// object with "daily" and (optionally) "totals".
func NormalizeImport(v any) ([]DailyRecord, *Totals) {
	if _, ok := v.([]any); ok {
		return NormalizeRecords(v), nil
	}

	obj := asObject(v)
	records := NormalizeRecords(obj["daily"])
	if _, ok := obj["totals"]; !ok {
		return records, nil
	}
	totals := NormalizeTotals(obj["totals"])
	return records, &totals
}
