// Command callctl is the operator CLI for the call ledger. It opens the same
// SQLite database the server writes and offers read-only inspection plus the
// maintenance sweeps normally run by the background reaper.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nkhandel/go-call-digest-backend/internal/domain"
	"github.com/nkhandel/go-call-digest-backend/internal/repo"
	"gorm.io/gorm"
)

var dbPath string

func main() {
	root := &cobra.Command{
		Use:           "callctl",
		Short:         "Inspect and maintain the call-digest ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "calls.db", "path to the SQLite ledger")

	root.AddCommand(statsCmd(), inspectCmd(), sweepCmd())

	if err := root.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func openLedger() (*gorm.DB, error) {
	db, err := repo.OpenSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", dbPath, err)
	}
	return db, nil
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger totals by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openLedger()
			if err != nil {
				return err
			}
			s, err := repo.CallStats(cmd.Context(), db)
			if err != nil {
				return err
			}
			bold := color.New(color.Bold)
			bold.Println("Ledger")
			fmt.Printf("  total:      %d\n", s.Total)
			color.Green("  published:  %d", s.Published)
			color.Red("  failed:     %d", s.Failed)
			color.Yellow("  claimed:    %d", s.Claimed)
			color.Yellow("  processing: %d", s.Processing)
			return nil
		},
	}
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <call-id>",
		Short: "Show one call record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openLedger()
			if err != nil {
				return err
			}
			rec, err := repo.GetCall(cmd.Context(), db, args[0])
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("call %s not found", args[0])
			}
			if err != nil {
				return err
			}
			printRecord(rec)
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	var (
		failed    bool
		olderThan time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Release stale claims (or purge old failed rows with --failed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openLedger()
			if err != nil {
				return err
			}
			cutoff := time.Now().UTC().Add(-olderThan)
			var (
				n    int64
				verb string
			)
			if failed {
				n, err = repo.SweepFailed(cmd.Context(), db, cutoff)
				verb = "purged failed rows"
			} else {
				n, err = repo.SweepStale(cmd.Context(), db, cutoff)
				verb = "released stale claims"
			}
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Printf("nothing to sweep (cutoff %s)\n", cutoff.Format(time.RFC3339))
				return nil
			}
			color.Green("%s: %d (cutoff %s)", verb, n, cutoff.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().BoolVar(&failed, "failed", false, "purge failed rows instead of releasing stale claims")
	cmd.Flags().DurationVar(&olderThan, "older-than", 2*time.Hour, "minimum age for a row to be swept")
	return cmd
}

func printRecord(rec *domain.CallRecord) {
	bold := color.New(color.Bold)
	bold.Printf("Call %s\n", rec.CallID)

	status := color.YellowString(rec.Status)
	switch rec.Status {
	case domain.StatusPublished:
		status = color.GreenString(rec.Status)
	case domain.StatusFailed:
		status = color.RedString(rec.Status)
	}
	fmt.Printf("  status:     %s\n", status)
	fmt.Printf("  from:       %s\n", rec.FromNumber)
	fmt.Printf("  to:         %s\n", rec.ToNumber)
	fmt.Printf("  duration:   %ds\n", rec.DurationSeconds)
	if rec.Direction != "" {
		fmt.Printf("  direction:  %s\n", rec.Direction)
	}
	if rec.AgentName != "" {
		fmt.Printf("  agent:      %s\n", rec.AgentName)
	}
	fmt.Printf("  claimed at: %s\n", rec.ClaimedAt.Format(time.RFC3339))
	if rec.CompletedAt != nil {
		fmt.Printf("  completed:  %s\n", rec.CompletedAt.Format(time.RFC3339))
	}
	if rec.LastError != "" {
		color.Red("  last error: %s", rec.LastError)
	}
	if rec.Summary != "" {
		fmt.Printf("  summary:    %s\n", rec.Summary)
	}
}
