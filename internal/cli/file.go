package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gripe/internal/intake"
	"gripe/internal/model"
	"gripe/internal/render"
)

var fileTimeout time.Duration

// fileCmd represents the file command
var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "File a complaint through the interactive intake conversation",
	Long: `File starts a conversational intake session: describe the issue,
answer a few clarifying questions, and the complaint is classified,
clustered, routed, and saved.

Intake asks only for fields that are still missing and gives up after a
few rounds, filling the rest with placeholders rather than blocking.

Example:
  gripe file`,
	Args: cobra.NoArgs,
	RunE: runFile,
}

func init() {
	rootCmd.AddCommand(fileCmd)

	fileCmd.Flags().DurationVar(&fileTimeout, "timeout", 5*time.Minute, "overall filing timeout")
	addLLMFlags(fileCmd)
}

func runFile(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), fileTimeout)
	defer cancel()

	cfg := loadConfig()
	if err := configureLLM(cfg); err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	in := bufio.NewScanner(os.Stdin)
	readLine := func() (string, bool) {
		fmt.Print("> ")
		if !in.Scan() {
			return "", false
		}
		return strings.TrimSpace(in.Text()), true
	}

	fmt.Println("\n--- Filing New Complaint ---")
	fmt.Println("Please describe your issue:")
	initial, ok := readLine()
	if !ok {
		return fmt.Errorf("no input")
	}
	if initial == "" {
		return fmt.Errorf("please provide a description")
	}
	if verbose && !eng.Rules().IsTrigger(initial) {
		fmt.Fprintln(os.Stderr, "Note: input doesn't match the usual complaint phrasing; filing anyway.")
	}

	session := intake.NewSession(cfg.Intake.MaxClarificationRounds, nil, eng.Sanitize)
	c := eng.NewComplaint(initial)

	fmt.Printf("\n%s\n", session.Start(c))

	for !session.IsComplete() {
		answer, ok := readLine()
		if !ok {
			break
		}
		fmt.Printf("\n%s\n", session.ProcessResponse(answer))
	}

	// Optional follow-ups; empty answers skip
	fmt.Println(session.AskForFrequency())
	if answer, ok := readLine(); ok && answer != "" {
		if !session.SetFrequency(model.Frequency(answer)) {
			fmt.Println("(Unrecognized frequency, keeping 'unknown'.)")
		}
	}

	fmt.Println(session.AskForContext())
	if answer, ok := readLine(); ok && answer != "" {
		session.SetContext(answer)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "\n%s\n", session.Summary())
	}

	if err := eng.Process(ctx, c); err != nil {
		return fmt.Errorf("process complaint: %w", err)
	}

	renderer := render.NewRenderer(eng.Rules())
	fmt.Printf("\n%s\n", renderer.Confirmation(c))
	fmt.Println("\n✓ Complaint filed successfully!")
	return nil
}
