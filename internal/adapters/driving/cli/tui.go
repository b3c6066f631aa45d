package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/dochaven/docq-cli/internal/adapters/driving/tui"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
)

var tuiCollection string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive ask session",
	Long: `Launch an interactive terminal session for asking questions against a
collection.

Controls:
  Enter - Ask the typed question
  Esc   - Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiCollection, "collection", "c", "default",
		"collection to query")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Panic recovery keeps the terminal usable and surfaces the trace.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if queryService == nil {
		return errors.New("query service not configured")
	}

	if err := tui.Run(queryService, tuiCollection, driving.QueryOptions{}); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
