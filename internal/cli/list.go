package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gripe/internal/model"
	"gripe/internal/render"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list {category|severity|status} <value>",
	Short: "List stored complaints by category, severity, or status",
	Long: `List complaints from one index bucket.

Example:
  gripe list category model_behavior
  gripe list severity critical
  gripe list status in_progress`,
	Args: cobra.ExactArgs(2),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	var complaints []*model.Complaint
	switch args[0] {
	case "category":
		cat := model.Category(args[1])
		if !cat.Valid() {
			return fmt.Errorf("unknown category: %s", args[1])
		}
		complaints = eng.ListByCategory(cat)
	case "severity":
		sev := model.Severity(args[1])
		if !sev.Valid() {
			return fmt.Errorf("unknown severity: %s", args[1])
		}
		complaints = eng.ListBySeverity(sev)
	case "status":
		status := model.Status(args[1])
		if !status.Valid() {
			return fmt.Errorf("unknown status: %s", args[1])
		}
		complaints = eng.ListByStatus(status)
	default:
		return fmt.Errorf("unknown list dimension %q (use category, severity, or status)", args[0])
	}

	if len(complaints) == 0 {
		fmt.Printf("No complaints found for %s %s.\n", args[0], args[1])
		return nil
	}

	renderer := render.NewRenderer(eng.Rules())
	fmt.Printf("Found %d complaint(s):\n\n", len(complaints))
	for _, c := range complaints {
		summary := c.UserSummary
		if len(summary) > 60 {
			summary = summary[:57] + "..."
		}
		fmt.Printf("%s %s  %s %-8s  %-12s  %s\n",
			renderer.CategoryEmoji(c.PrimaryCategory), c.ComplaintID,
			render.SeverityEmoji(c.Severity), c.Severity, c.Status, summary)
	}
	return nil
}
