package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"gripe/internal/render"
	"gripe/internal/worker"
)

var (
	concurrency   int
	batchOutDir   string
	batchTimeout  time.Duration
	batchArtifact bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "File multiple complaints from a file in parallel",
	Long: `Batch files complaints concurrently:
- Read complaint inputs from a YAML or JSON file
- File them in parallel with a configurable worker count
- Each complaint runs the full pipeline independently
- Optionally write JSON/Markdown artifacts per complaint

Example:
  gripe batch complaints.yaml
  gripe batch complaints.yaml --concurrency 8 --artifacts --output-dir ./filed
  gripe batch complaints.yaml --llm --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchFile,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().BoolVar(&batchArtifact, "artifacts", false, "write JSON and Markdown artifacts per complaint")
	batchCmd.Flags().StringVar(&batchOutDir, "output-dir", "./gripe-artifacts", "artifact output directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	addLLMFlags(batchCmd)
}

func runBatchFile(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Gripe Batch Filing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg := loadConfig()
	cfg.Concurrency.Workers = concurrency
	if err := configureLLM(cfg); err != nil {
		return err
	}
	if llmEnabled {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n\n", llmProvider, llmModel)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	// Provider rate limit only matters when notes are generated
	var ratePerS float64
	var burst int
	if eng.AnnotationEnabled() {
		ratePerS = cfg.LLM.RatePerS
		burst = cfg.LLM.RateBurst
	}

	filer := worker.NewBatchFiler(eng, concurrency, ratePerS, burst)

	fmt.Fprintf(os.Stderr, "⚙️  Reading complaints from file...\n")
	results, err := filer.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d complaints\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Filing with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	renderer := render.NewRenderer(eng.Rules())

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %q: %v\n", result.Input.Summary, result.Error)
			continue
		}

		successCount++
		c := result.Complaint

		if batchArtifact {
			if _, err := renderer.WriteJSON(c, batchOutDir); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", c.ComplaintID, err)
				continue
			}
			if _, err := renderer.WriteMarkdown(c, batchOutDir); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", c.ComplaintID, err)
				continue
			}
		}

		fmt.Fprintf(os.Stderr, "✓ %s  %s/%s -> %s\n",
			c.ComplaintID, c.PrimaryCategory, c.Severity, c.RoutingTarget)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d complaints\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	if batchArtifact {
		fmt.Fprintf(os.Stderr, "  Output:    %s\n", batchOutDir)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
