package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gripe/internal/engine"
	"gripe/internal/model"
	"gripe/internal/render"
)

var (
	quickIntent    string
	quickObserved  string
	quickExpected  string
	quickFrequency string
	quickContext   string
	quickTimeout   time.Duration

	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// quickCmd represents the quick command
var quickCmd = &cobra.Command{
	Use:   "quick <summary>",
	Short: "File a complaint in one shot without the interactive flow",
	Long: `Quick files a complaint from flags, skipping the conversational
intake. The record still runs through the full pipeline: classification,
clustering, routing, and persistence.

Example:
  gripe quick "App crashes when uploading files" \
    --intent "Upload a file" \
    --observed "The app crashes" \
    --expected "The file uploads" \
    --frequency intermittent`,
	Args: cobra.ExactArgs(1),
	RunE: runQuick,
}

func init() {
	rootCmd.AddCommand(quickCmd)

	quickCmd.Flags().StringVar(&quickIntent, "intent", "", "what you were trying to accomplish")
	quickCmd.Flags().StringVar(&quickObserved, "observed", "", "what actually happened")
	quickCmd.Flags().StringVar(&quickExpected, "expected", "", "what you expected to happen")
	quickCmd.Flags().StringVar(&quickFrequency, "frequency", "", "once, intermittent, persistent or unknown")
	quickCmd.Flags().StringVar(&quickContext, "context", "", "additional context")
	quickCmd.Flags().DurationVar(&quickTimeout, "timeout", 1*time.Minute, "overall filing timeout")

	addLLMFlags(quickCmd)
}

// addLLMFlags registers the shared triage-note flags on a command
func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM triage note generation")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// configureLLM applies the triage-note flags to the configuration. The
// note never affects classification; it only annotates the record.
func configureLLM(cfg *model.Config) error {
	if !llmEnabled {
		cfg.LLM.Provider = ""
		return nil
	}

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s", llmProvider)
	}

	return nil
}

func runQuick(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), quickTimeout)
	defer cancel()

	cfg := loadConfig()
	if err := configureLLM(cfg); err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	in := engine.QuickFileInput{
		Summary:  args[0],
		Intent:   quickIntent,
		Observed: quickObserved,
		Expected: quickExpected,
		Context:  quickContext,
	}
	if quickFrequency != "" {
		freq := model.Frequency(quickFrequency)
		if !freq.Valid() {
			return fmt.Errorf("invalid frequency %q (use once, intermittent, persistent or unknown)", quickFrequency)
		}
		in.Frequency = freq
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Filing: %s\n", in.Summary)
	}

	c, err := eng.QuickFile(ctx, in)
	if err != nil {
		return fmt.Errorf("file complaint: %w", err)
	}

	renderer := render.NewRenderer(eng.Rules())
	fmt.Println(renderer.Confirmation(c))
	return nil
}
