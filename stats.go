package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(envFile *string) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's adherence statistics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.dashboardService().GetStats(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("failed to compute adherence stats: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user whose statistics are printed")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
