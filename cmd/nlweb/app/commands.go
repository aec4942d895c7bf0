// Package app provides the command-line interface of the NLWeb query server.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nlweb-ai/nlweb-go/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:               "nlweb",
	DisableAutoGenTag: true,
	Short:             "NLWeb is a natural-language query server over pluggable search backends",
	Long: `NLWeb answers natural-language queries by fanning them out over the
configured search backends, merging the results and optionally summarizing
them with a chat model. It serves a JSON and SSE HTTP API plus an MCP
(Model Context Protocol) surface for AI clients.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help.
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
}

// NewRootCmd creates the root command for the NLWeb CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Error binding debug flag: %v", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
