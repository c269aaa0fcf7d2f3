package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fieldpro-backend/client"
	"fieldpro-backend/collection"
	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	listStatus string
	listSearch string
)

var (
	jobTitle      string
	jobClient     string
	jobService    string
	jobDate       string
	jobCost       float64
	jobPriority   string
	jobTechnician string
	jobNotes      string
)

var jobsCmd = &cobra.Command{
	Use:               "jobs",
	Short:             "List and manage jobs",
	PersistentPreRunE: requireLogin,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, filtered by --status and --search",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.NewJobStore(collection.WithNotifier[models.Job](notifier()))
		if err := store.Load(cmd.Context(), api.ListJobs); err != nil {
			return err
		}
		jobs := store.View(collection.Criteria{Status: listStatus, Search: listSearch})

		t := newTable(cmd.OutOrStdout(), "ID", "TITLE", "CLIENT", "TECHNICIAN", "STATUS", "SCHEDULED", "AMOUNT")
		for _, j := range jobs {
			t.row(shortID(j.ID), j.Title, orDash(j.ClientName), orDash(j.TechnicianName),
				j.Status, day(j.ScheduledDate), client.FormatMoney(j.BillableAmount()))
		}
		t.flush()

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d jobs, %.0f%% completed, %s billable\n",
			len(jobs), client.CompletionRate(jobs),
			client.FormatMoney(collection.Sum(jobs, models.Job.BillableAmount)))
		return nil
	},
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Schedule a new job",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := uuid.Parse(jobClient)
		if err != nil {
			return fmt.Errorf("invalid --client: %w", err)
		}
		scheduled, err := parseDate(jobDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		in := models.JobInput{
			Title:         jobTitle,
			ClientID:      clientID,
			ServiceType:   jobService,
			Priority:      jobPriority,
			ScheduledDate: scheduled,
			EstimatedCost: jobCost,
		}
		if jobTechnician != "" {
			techID, err := uuid.Parse(jobTechnician)
			if err != nil {
				return fmt.Errorf("invalid --technician: %w", err)
			}
			in.AssignedTechnicianID = &techID
		}

		store := client.NewJobStore(collection.WithNotifier[models.Job](notifier()))
		job, err := store.Create(cmd.Context(), func(ctx context.Context) (models.Job, error) {
			return api.CreateJob(ctx, in)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created job %s (%s)\n", job.ID, job.Title)
		return nil
	},
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id> <status>",
	Short: "Move a job to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}
		to := args[1]

		store := client.NewJobStore(collection.WithNotifier[models.Job](notifier()))
		if err := store.Load(cmd.Context(), api.ListJobs); err != nil {
			return err
		}
		for _, j := range store.Items() {
			if j.ID == id && !models.CanTransitionJob(j.Status, to) {
				actions := models.JobActions(j.Status)
				if len(actions) == 0 {
					return fmt.Errorf("job is %s and cannot change status", j.Status)
				}
				return fmt.Errorf("job is %s, it can move to: %s", j.Status, strings.Join(actions, ", "))
			}
		}

		job, err := store.Update(cmd.Context(), func(ctx context.Context) (models.Job, error) {
			return api.UpdateJobStatus(ctx, id, to, jobNotes)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Job %s is now %s\n", job.Title, job.Status)
		return nil
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}
		store := client.NewJobStore(
			collection.WithNotifier[models.Job](notifier()),
			collection.WithConfirmer[models.Job](confirmer(cmd)),
		)
		return reportDeclined(cmd, store.Delete(cmd.Context(), id.String(), "Delete job "+shortID(id)+"?",
			func(ctx context.Context) error { return api.DeleteJob(ctx, id) }))
	},
}

func reportDeclined(cmd *cobra.Command, err error) error {
	if errors.Is(err, collection.ErrDeleteDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return nil
	}
	if err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
	}
	return err
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&listStatus, "status", collection.StatusAll, "Only show this status")
	cmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive text search")
}

func init() {
	addListFlags(jobsListCmd)

	jobsCreateCmd.Flags().StringVar(&jobTitle, "title", "", "Job title")
	jobsCreateCmd.Flags().StringVar(&jobClient, "client", "", "Client id")
	jobsCreateCmd.Flags().StringVar(&jobService, "service", "", "Service type")
	jobsCreateCmd.Flags().StringVar(&jobDate, "date", "", "Scheduled date (YYYY-MM-DD or RFC 3339)")
	jobsCreateCmd.Flags().Float64Var(&jobCost, "cost", 0, "Estimated cost")
	jobsCreateCmd.Flags().StringVar(&jobPriority, "priority", models.PriorityMedium, "low, medium, high or urgent")
	jobsCreateCmd.Flags().StringVar(&jobTechnician, "technician", "", "Assigned technician id")
	_ = jobsCreateCmd.MarkFlagRequired("client")
	_ = jobsCreateCmd.MarkFlagRequired("date")

	jobsStatusCmd.Flags().StringVar(&jobNotes, "notes", "", "Note recorded with the change")

	jobsCmd.AddCommand(jobsListCmd, jobsCreateCmd, jobsStatusCmd, jobsDeleteCmd)
	rootCmd.AddCommand(jobsCmd)
}
