package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gripe/internal/render"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show complaint statistics",
	Long: `Stats summarizes the stored complaints by category, severity,
and lifecycle status.

Example:
  gripe stats`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(eng.Rules())
	fmt.Println(renderer.Stats(eng.Stats()))
	return nil
}
