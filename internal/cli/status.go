package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gripe/internal/lifecycle"
	"gripe/internal/model"
	"gripe/internal/store"
	"gripe/internal/util"
)

var (
	resolveNote  string
	reopenReason string
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <complaint-id> <status>",
	Short: "Update a complaint's lifecycle status",
	Long: `Update applies a lifecycle transition. Only declared transitions
are allowed; the change is recorded in the audit trail.

Example:
  gripe update CMP-2026-02-02-AX4F9Q in_progress`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <complaint-id>",
	Short: "Mark a complaint resolved",
	Long: `Resolve transitions the complaint to resolved, optionally
recording how it was resolved.

Example:
  gripe resolve CMP-2026-02-02-AX4F9Q --note "Fixed in release 2.3"`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

// closeCmd represents the close command
var closeCmd = &cobra.Command{
	Use:   "close <complaint-id>",
	Short: "Close a resolved complaint",
	Args:  cobra.ExactArgs(1),
	RunE:  runClose,
}

// reopenCmd represents the reopen command
var reopenCmd = &cobra.Command{
	Use:   "reopen <complaint-id>",
	Short: "Reopen a closed complaint",
	Long: `Reopen transitions a closed complaint back into the active
lifecycle. Records are never deleted; reopening is the only way back.

Example:
  gripe reopen CMP-2026-02-02-AX4F9Q --reason "Issue came back after update"`,
	Args: cobra.ExactArgs(1),
	RunE: runReopen,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(reopenCmd)

	resolveCmd.Flags().StringVar(&resolveNote, "note", "", "resolution note for the audit trail")
	reopenCmd.Flags().StringVar(&reopenReason, "reason", "", "reason for reopening")
}

func transitionError(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("complaint not found: %s", id)
	}
	var ite *lifecycle.InvalidTransitionError
	if errors.As(err, &ite) {
		return fmt.Errorf("cannot change %s from %s to %s", id, ite.From, ite.To)
	}
	return err
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, raw := args[0], args[1]
	if !util.ValidID(id) {
		return fmt.Errorf("invalid complaint ID: %s", id)
	}

	status := model.Status(raw)
	if !status.Valid() {
		statuses := make([]string, 0, len(model.Statuses()))
		for _, s := range model.Statuses() {
			statuses = append(statuses, string(s))
		}
		return fmt.Errorf("unknown status %q (valid: %s)", raw, strings.Join(statuses, ", "))
	}

	cfg := loadConfig()
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	c, err := eng.UpdateStatus(id, status)
	if err != nil {
		return transitionError(err, id)
	}

	fmt.Printf("✓ %s is now %s\n", c.ComplaintID, c.Status)
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	id := args[0]
	cfg := loadConfig()
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	c, err := eng.Resolve(id, resolveNote)
	if err != nil {
		return transitionError(err, id)
	}

	fmt.Printf("✓ %s resolved\n", c.ComplaintID)
	return nil
}

func runClose(cmd *cobra.Command, args []string) error {
	id := args[0]
	cfg := loadConfig()
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	c, err := eng.Close(id)
	if err != nil {
		return transitionError(err, id)
	}

	fmt.Printf("✓ %s closed\n", c.ComplaintID)
	return nil
}

func runReopen(cmd *cobra.Command, args []string) error {
	id := args[0]
	cfg := loadConfig()
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	c, err := eng.Reopen(id, reopenReason)
	if err != nil {
		return transitionError(err, id)
	}

	fmt.Printf("✓ %s reopened\n", c.ComplaintID)
	return nil
}
