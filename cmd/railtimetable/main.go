// Command railtimetable merges a British bulk CIF timetable file (and,
// optionally, a directory of VSTP JSON overlay messages) into one
// in-memory schedule, then reports a summary of what was built.
// Grounded on the teacher's cmd/converter/main.go: stdlib flag parsing, a
// staged progress narration, and per-stage timing.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/railtimetable/importer"
	"github.com/theoremus-urban-solutions/railtimetable/railerr"
)

func main() {
	var (
		cifPath  = flag.String("cif", "", "Path to the bulk CIF timetable file (required)")
		vstpDir  = flag.String("vstp-dir", "", "Optional directory of VSTP JSON overlay messages, applied after the bulk file")
		logLevel = flag.String("log-level", "info", "zerolog level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	if *cifPath == "" {
		fmt.Fprintln(os.Stderr, "missing required -cif flag")
		flag.Usage()
		os.Exit(2)
	}

	im := importer.New(importer.WithLogger(log))

	fmt.Println("=== STAGE 1: Bulk CIF file ===")
	start := time.Now()
	cifResult, err := applyCIFFile(im, *cifPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bulk CIF apply failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Applied %s in %v (%d warnings)\n", *cifPath, time.Since(start), len(cifResult.Warnings))
	for _, w := range cifResult.Warnings {
		log.Warn().Str("stage", w.Stage).Msg(w.Message)
	}

	if *vstpDir != "" {
		fmt.Println("\n=== STAGE 2: VSTP overlay messages ===")
		start = time.Now()
		applied, warnings, err := applyVSTPDir(im, *vstpDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "VSTP apply failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Applied %d VSTP message(s) in %v (%d warnings)\n", applied, time.Since(start), warnings)
	}

	fmt.Println("\n=== STAGE 3: Summary ===")
	printSummary(im)
}

func applyCIFFile(im *importer.Importer, path string) (*railerr.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return im.ApplyCIF(f)
}

func applyVSTPDir(im *importer.Importer, dir string) (applied int, warnings int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return applied, warnings, fmt.Errorf("reading %s: %w", name, err)
		}
		result, err := im.ApplyVSTP(data)
		if err != nil {
			return applied, warnings, fmt.Errorf("applying %s: %w", name, err)
		}
		applied++
		warnings += len(result.Warnings)
	}
	return applied, warnings, nil
}

func printSummary(im *importer.Importer) {
	trainCount := 0
	bySource := map[string]int{}
	for _, trains := range im.Schedule.Trains {
		for _, t := range trains {
			trainCount++
			if t.Source != nil {
				bySource[t.Source.String()]++
			} else {
				bySource["unknown"]++
			}
		}
	}

	fmt.Printf("Distinct train UIDs: %d\n", len(im.Schedule.Trains))
	fmt.Printf("Total train instances: %d\n", trainCount)

	keys := make([]string, 0, len(bySource))
	for k := range bySource {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %d\n", k, bySource[k])
	}
}
