package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gripe/internal/render"
	"gripe/internal/store"
	"gripe/internal/util"
)

var (
	viewJSON      bool
	viewMarkdown  bool
	viewOutputDir string
)

// viewCmd represents the view command
var viewCmd = &cobra.Command{
	Use:   "view <complaint-id>",
	Short: "View a stored complaint",
	Long: `View prints a stored complaint, optionally writing JSON and
Markdown artifacts.

Example:
  gripe view CMP-2026-02-02-AX4F9Q
  gripe view CMP-2026-02-02-AX4F9Q --json --md --output-dir ./artifacts`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "write a JSON artifact")
	viewCmd.Flags().BoolVar(&viewMarkdown, "md", false, "write a Markdown artifact")
	viewCmd.Flags().StringVar(&viewOutputDir, "output-dir", "", "artifact directory (default from config)")
}

func runView(cmd *cobra.Command, args []string) error {
	id := args[0]
	if !util.ValidID(id) {
		return fmt.Errorf("invalid complaint ID: %s", id)
	}

	cfg := loadConfig()
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	c, err := eng.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("complaint not found: %s", id)
		}
		return err
	}

	renderer := render.NewRenderer(eng.Rules())
	fmt.Println(renderer.Summary(c))

	dir := viewOutputDir
	if dir == "" {
		dir = cfg.Output.ArtifactDir
	}
	if dir == "" {
		dir = "./gripe-artifacts"
	}

	if viewJSON {
		path, err := renderer.WriteJSON(c, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ JSON artifact: %s\n", path)
	}
	if viewMarkdown {
		path, err := renderer.WriteMarkdown(c, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown artifact: %s\n", path)
	}

	return nil
}
