// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a generated instance as YAML",
		Long: `Generates one instance from the configured source and seed and writes
it in the format accepted by --instance.

Example:
  prdyn generate --source linear-discrete --buyers 4 --goods 3 --seed 7 -o market.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			inst, err := buildInstance(cfg, cfg.Instance.Seed)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("output")
			if path == "" || path == "-" {
				return inst.WriteYAML(cmd.OutOrStdout())
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			if err := inst.WriteYAML(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	addMarketFlags(cmd.Flags())
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")

	return cmd
}
