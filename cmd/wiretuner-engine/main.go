// Command wiretuner-engine is the CLI surface of spec.md §6.5: export a
// bounded event range from a document for bug reports, or import one into a
// fresh document. Flag-based, one subcommand per invocation, mirroring the
// teacher's effects/catalog/cmd/schema/main.go tool shape.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"wiretuner/engine/internal/debugexport"
	"wiretuner/engine/internal/engine"
	"wiretuner/engine/internal/ids"
	"wiretuner/engine/internal/telemetry"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "wiretuner-engine: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: wiretuner-engine export --document-id --start --end --output [--verbose]")
	fmt.Fprintln(os.Stderr, "       wiretuner-engine import --document-id --input [--skip-validation] [--verbose]")
}

// documentPath is the CLI's fixed convention for locating a document's
// backing bbolt file given only its id: <document-id>.wiretuner in the
// current directory, matching the orchestrator's FileExtension.
func documentPath(documentID string) string {
	return documentID + ".wiretuner"
}

// diagnosticLogger returns a telemetry.Logger writing to stderr when verbose
// is set, or a no-op Logger otherwise, so callers depend on the narrow
// telemetry.Logger contract rather than printing directly.
func diagnosticLogger(verbose bool) telemetry.Logger {
	if !verbose {
		return telemetry.LoggerFunc(nil)
	}
	return telemetry.WrapLogger(log.New(os.Stderr, "", 0))
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	documentID := fs.String("document-id", "", "document id to export from")
	start := fs.Int64("start", 0, "first sequence to export (inclusive)")
	end := fs.Int64("end", 0, "last sequence to export (inclusive)")
	output := fs.String("output", "", "path to write the export JSON")
	verbose := fs.Bool("verbose", false, "print diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *documentID == "" {
		return fmt.Errorf("--document-id is required")
	}
	if *output == "" {
		return fmt.Errorf("--output is required")
	}

	logger := diagnosticLogger(*verbose)

	ctx := context.Background()
	eng := engine.New()
	defer eng.Close(ctx)

	path := documentPath(*documentID)
	logger.Printf("opening %s", path)
	doc, loadResult, err := eng.Open(ctx, ids.DocumentID(*documentID), path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	logger.Printf("replayed %d events (max sequence %d)", loadResult.EventsReplayed, loadResult.MaxSequence)

	exported, err := doc.Export(ctx, *start, *end)
	if err != nil {
		return fmt.Errorf("export range [%d, %d]: %w", *start, *end, err)
	}

	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(*output, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Printf("exported %d events to %s", exported.Metadata.EventCount, *output)
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	documentID := fs.String("document-id", "", "document id to import into")
	input := fs.String("input", "", "path to an export JSON file")
	skipValidation := fs.Bool("skip-validation", false, "skip schema validation of the export file")
	verbose := fs.Bool("verbose", false, "print diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *documentID == "" {
		return fmt.Errorf("--document-id is required")
	}
	if *input == "" {
		return fmt.Errorf("--input is required")
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var exported debugexport.Document
	if err := json.Unmarshal(raw, &exported); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	logger := diagnosticLogger(*verbose)

	ctx := context.Background()
	eng := engine.New()
	defer eng.Close(ctx)

	path := documentPath(*documentID)
	logger.Printf("creating %s", path)
	doc, err := eng.Create(ctx, ids.DocumentID(*documentID), path, *documentID)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	defer doc.Close()

	if err := doc.Import(ctx, exported, *skipValidation); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if _, err := doc.Save(ctx); err != nil {
		return fmt.Errorf("save imported document: %w", err)
	}

	logger.Printf("imported %d events into %s", len(exported.Events), path)
	return nil
}
