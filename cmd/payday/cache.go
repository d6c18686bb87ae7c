package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheResetCmd)
}

// dayMaintainer is implemented by stores that keep days between runs.
type dayMaintainer interface {
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the persistent working-day store",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print how many days the store holds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDayStore(cmd, func(a *app, s dayMaintainer) error {
			n, err := s.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d days\n", a.cfg.Storage.Path, n)
			return nil
		})
	},
}

var cacheResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every stored day so the next run refetches the calendar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDayStore(cmd, func(a *app, s dayMaintainer) error {
			n, err := s.Count(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.Reset(cmd.Context()); err != nil {
				return err
			}
			a.logger.Info("day store reset", zap.String("path", a.cfg.Storage.Path), zap.Int("removed", n))
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d days\n", n)
			return nil
		})
	},
}

func withDayStore(cmd *cobra.Command, fn func(*app, dayMaintainer) error) error {
	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, ok := a.store.(dayMaintainer)
	if !ok {
		return fmt.Errorf("storage driver %q keeps no days between runs", a.cfg.Storage.Driver)
	}
	return fn(a, s)
}
