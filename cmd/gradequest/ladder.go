package main

import (
	"fmt"

	"github.com/SAP-F-2025/gradequest-service/internal/config"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLadderCmd() *cobra.Command {
	var sc config.ScoringConfig
	var list bool

	cmd := &cobra.Command{
		Use:   "ladder",
		Short: "Print a rank ladder",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, name := range scoring.Presets() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			policy, err := sc.LoadPolicy()
			if err != nil {
				return exitError(2, "%v", err)
			}
			color.New(color.FgCyan, color.Bold).Fprintf(out, "%s\n", policy.Name)
			if policy.Description != "" {
				fmt.Fprintln(out, policy.Description)
			}
			renderLadder(out, policy)
			fmt.Fprintf(out, "rank floor on override: %t, rewards suppressed on override: %t\n",
				policy.RankFloorOnOverride, policy.SuppressRewardsOnOverride)
			return nil
		},
	}

	cmd.Flags().StringVar(&sc.Ladder, "ladder", "", "preset name (default "+scoring.DefaultLadder+")")
	cmd.Flags().StringVar(&sc.LadderFile, "file", "", "ladder YAML file")
	cmd.Flags().BoolVar(&list, "list", false, "list preset names")

	return cmd
}
