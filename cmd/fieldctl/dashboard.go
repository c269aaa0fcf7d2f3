package main

import (
	"context"
	"fmt"
	"time"

	"fieldpro-backend/client"
	"fieldpro-backend/collection"
	"fieldpro-backend/models"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Short:   "Business overview",
	PreRunE: requireLogin,
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs := client.NewJobStore()
		clients := client.NewClientStore()
		invoices := client.NewInvoiceStore()
		inventory := client.NewInventoryStore()

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error { return jobs.Load(ctx, api.ListJobs) })
		g.Go(func() error { return clients.Load(ctx, api.ListClients) })
		g.Go(func() error { return invoices.Load(ctx, api.ListInvoices) })
		g.Go(func() error {
			return inventory.Load(ctx, func(ctx context.Context) ([]models.InventoryItem, error) {
				return api.ListInventory(ctx, false)
			})
		})
		if err := g.Wait(); err != nil {
			return err
		}

		allJobs := jobs.Items()
		today := time.Now().Format("2006-01-02")
		out := cmd.OutOrStdout()
		if session.User != nil {
			fmt.Fprintf(out, "%s\n\n", session.User.CompanyName)
		}
		fmt.Fprintf(out, "Jobs:         %d (%d today, %.0f%% completed)\n", len(allJobs),
			collection.Count(allJobs, func(j models.Job) bool { return j.ScheduledDate.Local().Format("2006-01-02") == today }),
			client.CompletionRate(allJobs))
		fmt.Fprintf(out, "Clients:      %d\n", len(clients.Items()))
		fmt.Fprintf(out, "Outstanding:  %s (%d overdue)\n",
			client.FormatMoney(client.OutstandingTotal(invoices.Items())), client.OverdueCount(invoices.Items()))
		fmt.Fprintf(out, "Paid:         %s\n", client.FormatMoney(client.PaidRevenue(invoices.Items())))
		fmt.Fprintf(out, "Low stock:    %d items\n", client.LowStockCount(inventory.Items()))
		fmt.Fprintf(out, "Stock value:  %s\n", client.FormatMoney(client.InventoryValue(inventory.Items())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
