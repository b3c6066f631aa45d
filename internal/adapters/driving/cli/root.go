// Package cli implements the docq command-line interface using cobra.
// Commands are thin: they parse flags, call driving ports, and format
// output. Service wiring happens in cmd/docq.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dochaven/docq-cli/internal/core/ports/driven"
	"github.com/dochaven/docq-cli/internal/core/ports/driving"
	"github.com/dochaven/docq-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by cmd/docq before Execute.
var (
	ingestService     driving.IngestService
	queryService      driving.QueryService
	collectionService driving.CollectionService
	configStore       driven.ConfigStore
	extractorRegistry driven.ExtractorRegistry
)

// Services bundles the driving ports the CLI depends on.
type Services struct {
	Ingest      driving.IngestService
	Query       driving.QueryService
	Collections driving.CollectionService
	Config      driven.ConfigStore
	Extractors  driven.ExtractorRegistry
}

// SetServices wires the core services into the CLI commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	collectionService = s.Collections
	configStore = s.Config
	extractorRegistry = s.Extractors
}

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "docq",
	Short: "Ask questions about your documents",
	Long: `docq ingests documents into named collections and answers
natural-language questions about them.

Answers are grounded in your documents when retrieval confidence is
high enough; otherwise docq falls back to the model's general knowledge
and says so.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose logging to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
