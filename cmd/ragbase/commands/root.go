// Package commands defines all Cobra CLI commands for the ragbase binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/ragbase/ragbase-go/internal/audit"
	"github.com/ragbase/ragbase-go/internal/config"
	"github.com/ragbase/ragbase-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ragbase",
		Short: "RAGBase — chat with your PDF documents, powered by LLMs",
		Long: `RAGBase is a local-first document assistant.

Upload PDF documents into a vector knowledge base and ask questions about
them; answers are generated from the retrieved document context. It also
ships an email triage agent for customer support workflows and a stdio
file-tool session for LLM tool-calling experiments.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.ragbase/config.yaml).
See 'ragbase --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.ragbase/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewAskCmd(),
		NewIngestCmd(),
		NewSupportCmd(),
		NewFiletoolsCmd(),
		NewVersionCmd(),
	)

	return root
}
