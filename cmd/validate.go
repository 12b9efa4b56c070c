package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"firestige.xyz/chatsniff/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate the configuration without capturing anything, then print
the effective configuration (defaults and CHATSNIFF_* overrides applied).

Examples:
  chatsniff validate -c chatsniff.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("INVALID: %w", err)
		}
		out, err := yaml.Marshal(map[string]*config.GlobalConfig{"chatsniff": cfg})
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "# VALID")
		_, err = w.Write(out)
		return err
	},
}
