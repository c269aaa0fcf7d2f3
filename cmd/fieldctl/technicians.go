package main

import (
	"fmt"
	"strconv"

	"fieldpro-backend/client"
	"fieldpro-backend/models"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var localStats bool

var techniciansCmd = &cobra.Command{
	Use:               "technicians",
	Short:             "Technician workload",
	PersistentPreRunE: requireLogin,
}

var techniciansStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Jobs, hours and revenue per technician",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !localStats {
			stats, err := api.TechnicianReport(cmd.Context())
			if err != nil {
				return err
			}
			printTechnicianStats(cmd, stats)
			return nil
		}

		var (
			techs   []models.Technician
			jobs    []models.Job
			entries []models.TimeEntry
		)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() (err error) { techs, err = api.ListTechnicians(ctx); return })
		g.Go(func() (err error) { jobs, err = api.ListJobs(ctx); return })
		g.Go(func() (err error) { entries, err = api.ListTimeEntries(ctx, ""); return })
		if err := g.Wait(); err != nil {
			return err
		}
		printTechnicianStats(cmd, client.TechnicianStats(techs, jobs, entries))
		return nil
	},
}

func printTechnicianStats(cmd *cobra.Command, stats []models.TechnicianStats) {
	t := newTable(cmd.OutOrStdout(), "TECHNICIAN", "JOBS", "COMPLETED", "RATE", "HOURS", "REVENUE")
	for _, s := range stats {
		t.row(s.Name, strconv.Itoa(s.TotalJobs), strconv.Itoa(s.CompletedJobs),
			fmt.Sprintf("%.0f%%", s.CompletionRate), fmt.Sprintf("%.2f", s.TotalHours),
			client.FormatMoney(s.TotalRevenue))
	}
	t.flush()
}

func init() {
	techniciansStatsCmd.Flags().BoolVar(&localStats, "local", false, "Compute from the job and time entry lists instead of the server report")

	techniciansCmd.AddCommand(techniciansStatsCmd)
	rootCmd.AddCommand(techniciansCmd)
}
