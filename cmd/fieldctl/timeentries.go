package main

import (
	"context"
	"fmt"
	"sort"

	"fieldpro-backend/client"
	"fieldpro-backend/collection"
	"fieldpro-backend/models"

	"github.com/spf13/cobra"
)

var timeDate string

var timeCmd = &cobra.Command{
	Use:               "time",
	Short:             "Time tracking",
	PersistentPreRunE: requireLogin,
}

var timeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries; --status is active or completed",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.NewTimeEntryStore(collection.WithNotifier[models.TimeEntry](notifier()))
		err := store.Load(cmd.Context(), func(ctx context.Context) ([]models.TimeEntry, error) {
			return api.ListTimeEntries(ctx, timeDate)
		})
		if err != nil {
			return err
		}
		entries := store.View(collection.Criteria{Status: listStatus, Search: listSearch})

		t := newTable(cmd.OutOrStdout(), "JOB", "START", "END", "HOURS", "BILLABLE", "DESCRIPTION")
		for _, e := range entries {
			end := "running"
			if e.EndTime != nil {
				end = e.EndTime.Local().Format("15:04")
			}
			t.row(shortID(e.JobID), e.StartTime.Local().Format("2006-01-02 15:04"), end,
				fmt.Sprintf("%.2f", e.Duration().Hours()), fmt.Sprint(e.IsBillable), orDash(e.Description))
		}
		t.flush()

		perDay := client.HoursPerDay(entries)
		days := make([]string, 0, len(perDay))
		for d := range perDay {
			days = append(days, d)
		}
		sort.Strings(days)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d entries, %d billable\n", len(entries), client.BillableCount(entries))
		for _, d := range days {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s  %.2fh\n", d, perDay[d])
		}
		return nil
	},
}

func init() {
	addListFlags(timeListCmd)
	timeListCmd.Flags().StringVar(&timeDate, "date", "", "Only entries started on this day (YYYY-MM-DD)")

	timeCmd.AddCommand(timeListCmd)
	rootCmd.AddCommand(timeCmd)
}
