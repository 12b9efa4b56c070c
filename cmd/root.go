// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"

	// Register built-in reporters.
	_ "firestige.xyz/chatsniff/plugins"
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatsniff",
	Short: "chatsniff - passive observer for a TCP chat protocol",
	Long: `chatsniff passively captures the server-to-client traffic of a fixed-layout
TCP chat protocol. It follows room membership from join and leave messages and
reports every distinct broadcast together with the clients that received it.

Nothing is ever injected into the observed connections.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults only when empty)")

	rootCmd.AddCommand(sniffCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(validateCmd)
}
