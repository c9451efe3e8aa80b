package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/wmcfinance/echeque-processor/internal/docsource"
	"github.com/wmcfinance/echeque-processor/internal/logger"
	"github.com/wmcfinance/echeque-processor/internal/mapping"
	"github.com/wmcfinance/echeque-processor/internal/pipeline"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(log)
	case "mappings":
		runMappings(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("E-Cheque Processor CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  process   Extract, rename and route cheque PDFs from a directory")
	fmt.Println("  mappings  Inspect the payee mapping table")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runProcess(log zerolog.Logger) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	dir := fs.String("dir", "", "Directory containing cheque PDFs")
	mappingPath := fs.String("mapping", "", "Payee mapping table (.xlsx or .csv)")
	outDir := fs.String("out", "", "Directory to write renamed cheques (defaults to -dir)")
	promptPath := fs.String("prompt", "", "File with a custom extraction prompt")
	strict := fs.Bool("strict", false, "Reject responses that fail schema validation")
	model := fs.String("model", pipeline.DefaultModelName, "Extraction model name")
	fs.Parse(os.Args[2:])

	if *dir == "" {
		log.Fatal().Msg("Error: -dir is required")
	}
	if *outDir == "" {
		*outDir = *dir
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is not set")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	table := loadTable(log, *mappingPath)

	docs, err := docsource.FromDir(*dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read cheque directory")
	}
	if len(docs) == 0 {
		fmt.Println("No PDF files found.")
		return
	}

	extractor := pipeline.NewGeminiExtractor(apiKey, log)
	extractor.Model = *model

	processor := pipeline.NewProcessor(extractor, table, pipeline.NewValidator(*strict), log)
	if *promptPath != "" {
		promptBytes, err := os.ReadFile(*promptPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *promptPath).Msg("Failed to read prompt file")
		}
		processor.Prompt = pipeline.BuildPrompt(string(promptBytes))
	}

	progress := func(message string, fraction float64) {
		fmt.Printf("[%3.0f%%] %s\n", fraction*100, message)
	}

	results, procErrs := processor.ProcessBatch(ctx, docs, progress)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	for _, result := range results {
		outPath := filepath.Join(*outDir, result.GeneratedFilename)
		if err := os.WriteFile(outPath, result.PDFData, 0o644); err != nil {
			log.Error().
				Err(err).
				Str("filename", result.GeneratedFilename).
				Msg("Failed to write output file")
			continue
		}
		fmt.Printf("%-40s -> %s  [%s / %s / %s]\n",
			result.OriginalFilename,
			result.GeneratedFilename,
			result.RoutingTarget,
			result.GLCode,
			result.Record.NextStep,
		)
	}

	if len(procErrs) > 0 {
		fmt.Printf("\n%d of %d file(s) failed:\n", len(procErrs), len(docs))
		for _, pe := range procErrs {
			fmt.Printf("  %s: %v\n", pe.Filename, pe.Err)
		}
	}
	fmt.Printf("\nProcessed %d/%d file(s) successfully.\n", len(results), len(docs))
}

func runMappings(log zerolog.Logger) {
	fs := flag.NewFlagSet("mappings", flag.ExitOnError)
	mappingPath := fs.String("mapping", "", "Payee mapping table (.xlsx or .csv)")
	payee := fs.String("payee", "", "Resolve a single payee instead of listing all rules")
	fs.Parse(os.Args[2:])

	table := loadTable(log, *mappingPath)

	if *payee != "" {
		target, glCode := table.Resolve(*payee)
		fmt.Printf("Payee:          %s\n", *payee)
		fmt.Printf("Routing target: %s\n", target)
		fmt.Printf("GL code:        %s\n", glCode)
		return
	}

	rules := table.Rules()
	if len(rules) == 0 {
		fmt.Println("No mapping rules loaded.")
		return
	}
	fmt.Printf("%-45s %-25s %s\n", "PAYEE", "ROUTING TARGET", "GL CODE")
	for _, rule := range rules {
		fmt.Printf("%-45s %-25s %s\n", rule.Payee, rule.RoutingTarget, rule.GLCode)
	}
}

// loadTable loads the mapping table, degrading to an empty table on failure so
// a bad spreadsheet never blocks a batch.
func loadTable(log zerolog.Logger, path string) *mapping.Table {
	table, err := mapping.Load(path, mapping.ModeCollapse)
	if err != nil {
		log.Warn().
			Err(err).
			Str("path", path).
			Msg("Failed to load mapping table, continuing without mappings")
		return mapping.Empty()
	}
	return table
}
