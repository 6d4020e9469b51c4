package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "", "Path to config file (default ~/.ccmerge.yaml)")
	datasetPath := flag.String("file", "", "Dataset file to merge into (overrides config)")
	flag.StringVar(datasetPath, "f", "", "Dataset file (shorthand)")
	outPath := flag.String("out", "", "Write the merged dataset here instead of the input file")
	dryRun := flag.Bool("dry-run", false, "Report intended changes without writing anything")
	flag.BoolVar(dryRun, "n", false, "Dry run (shorthand)")
	acceptLower := flag.Bool("accept-lower", false, "Accept incoming records even when they reduce recorded tokens")
	noInput := flag.Bool("no-input", false, "Never prompt, even on a terminal")
	noFetch := flag.Bool("no-fetch", false, "Skip provider fetches; merge and validate existing data only")
	showVer := flag.Bool("version", false, "Show version")
	flag.BoolVar(showVer, "v", false, "Show version (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Merges per-provider AI usage reports into one dataset file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConflicts:\n")
		fmt.Fprintf(os.Stderr, "  An import that would reduce a date's recorded tokens is a conflict.\n")
		fmt.Fprintf(os.Stderr, "  By default the existing record is kept and the conflict reported.\n")
		fmt.Fprintf(os.Stderr, "  On a terminal you are asked per conflict; -accept-lower always takes\n")
		fmt.Fprintf(os.Stderr, "  the incoming record; -dry-run previews either way without writing.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                      # fetch, merge, write\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -n                   # preview only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f data/usage.json   # explicit dataset file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -no-fetch            # revalidate what is on disk\n", os.Args[0])
	}

	flag.Parse()

	if *showVer {
		fmt.Printf("ccmerge version %s\n", version)
		return
	}

	cfgPath := *configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = defaultConfigPath()
		if err != nil {
			log.Fatalf("Failed to locate config: %v", err)
		}
	}
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", cfgPath, err)
	}

	dataset := cfg.Dataset
	if *datasetPath != "" {
		dataset = *datasetPath
	}
	output := dataset
	if *outPath != "" {
		output = *outPath
	}

	file, err := LoadDatasetFile(dataset)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var imports []ProviderFetch
	if !*noFetch {
		imports = FetchProviders(cfg.Providers)
	}

	opts := RunOptions{
		DryRun:      *dryRun,
		AcceptLower: *acceptLower,
		Interactive: !*noInput && !*dryRun && term.IsTerminal(int(os.Stdin.Fd())),
		Ask:         askYesNo(os.Stdin),
	}

	report, combined, err := MergeRun(file, imports, opts)
	if err != nil {
		log.Fatalf("Validation failed, nothing written: %v", err)
	}

	RenderRunReport(report)

	if *dryRun {
		return
	}

	data, err := EncodeDatasetFile(file.Providers, *combined.Totals)
	if err != nil {
		log.Fatalf("%v", err)
	}
	wrote, err := WriteDatasetFile(output, data)
	if err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}
	if wrote {
		fmt.Printf("Wrote %s\n", output)
	} else {
		fmt.Println("Dataset unchanged.")
	}
}

// askYesNo returns a blocking prompt function over r. Only "y"/"yes"
// (case-insensitive) count as yes.
func askYesNo(r *os.File) func(prompt string) bool {
	reader := bufio.NewReader(r)
	return func(prompt string) bool {
		fmt.Printf("%s [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
