package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Dataset file layout:
//
//	{
//	  "totals": <combined totals>,
//	  "<provider>": {"daily": [...], "totals": {...}},
//	  ...
//	}
//
// Provider keys are whatever the file contains; providers we no longer fetch
// are preserved and still take part in combining.

// storedDataset is the serialized form of one provider's dataset.
type storedDataset struct {
	Daily  []DailyRecord `json:"daily"`
	Totals Totals        `json:"totals"`
}

// DatasetFile is the decoded on-disk dataset: per-provider datasets plus the
// stored combined totals (nil when the file carried none).
type DatasetFile struct {
	Providers      map[string]*ProviderDataset
	CombinedTotals *Totals
}

// LoadDatasetFile reads and normalizes the dataset at path. A missing file
// yields an empty dataset; a file that is not valid JSON is an error, since
// overwriting it could destroy data the normalizer cannot see.
func LoadDatasetFile(path string) (*DatasetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &DatasetFile{Providers: make(map[string]*ProviderDataset)}, nil
		}
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}

	file := &DatasetFile{Providers: make(map[string]*ProviderDataset)}
	for key, value := range asObject(root) {
		if key == "totals" {
			totals := NormalizeTotals(value)
			file.CombinedTotals = &totals
			continue
		}

		obj := asObject(value)
		ds := NewProviderDataset()
		for _, rec := range NormalizeRecords(obj["daily"]) {
			if rec.Date == "" {
				continue
			}
			ds.Daily[rec.Date] = rec
		}
		if _, ok := obj["totals"]; ok {
			totals := NormalizeTotals(obj["totals"])
			ds.Totals = &totals
		}
		file.Providers[key] = ds
	}
	return file, nil
}

// EncodeDatasetFile serializes the merged datasets. Every provider dataset
// must have its totals chosen by this point. Daily records are sorted by
// date and map keys are serialized deterministically, so identical datasets
// always produce identical bytes.
func EncodeDatasetFile(providers map[string]*ProviderDataset, combined Totals) ([]byte, error) {
	root := make(map[string]any, len(providers)+1)
	root["totals"] = combined
	for name, ds := range providers {
		// "totals" is the combined-totals root key; a provider under that
		// name would overwrite it and be read back as combined totals.
		if name == "totals" {
			return nil, fmt.Errorf("%q is a reserved key and cannot be a provider name", name)
		}
		if ds.Totals == nil {
			return nil, fmt.Errorf("provider %s has no selected totals", name)
		}
		root[name] = storedDataset{Daily: ds.SortedDaily(), Totals: *ds.Totals}
	}

	data, err := json.Marshal(root, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return nil, fmt.Errorf("encoding dataset: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteDatasetFile writes the serialized dataset atomically, skipping the
// write entirely when the file already holds identical bytes. Returns
// whether a write happened.
func WriteDatasetFile(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("creating dataset directory: %w", err)
	}

	// Temp file in the same directory so the rename is atomic.
	f, err := os.CreateTemp(dir, ".ccmerge-")
	if err != nil {
		return false, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, fmt.Errorf("writing dataset: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return false, fmt.Errorf("syncing dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return false, fmt.Errorf("setting dataset permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return false, fmt.Errorf("replacing dataset: %w", err)
	}
	return true, nil
}
