package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fieldpro-backend/client"
	"fieldpro-backend/collection"
	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	invoiceClient   string
	invoiceJobs     []string
	invoiceDue      string
	invoiceTax      float64
	invoiceDiscount float64
	invoiceNotes    string
)

var invoicesCmd = &cobra.Command{
	Use:               "invoices",
	Short:             "List and manage invoices",
	PersistentPreRunE: requireLogin,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, filtered by --status and --search",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.NewInvoiceStore(collection.WithNotifier[models.Invoice](notifier()))
		if err := store.Load(cmd.Context(), api.ListInvoices); err != nil {
			return err
		}
		invoices := store.View(collection.Criteria{Status: listStatus, Search: listSearch})

		t := newTable(cmd.OutOrStdout(), "NUMBER", "STATUS", "DUE", "PAID", "TOTAL")
		for _, inv := range invoices {
			paid := "-"
			if inv.PaidDate != nil {
				paid = day(*inv.PaidDate)
			}
			t.row(inv.InvoiceNumber, inv.Status, day(inv.DueDate), paid, client.FormatMoney(inv.TotalAmount))
		}
		t.flush()

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d invoices, %s outstanding (%d overdue), %s paid\n",
			len(invoices), client.FormatMoney(client.OutstandingTotal(invoices)),
			client.OverdueCount(invoices), client.FormatMoney(client.PaidRevenue(invoices)))
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Bill a client for one or more jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, err := uuid.Parse(invoiceClient)
		if err != nil {
			return fmt.Errorf("invalid --client: %w", err)
		}
		jobIDs := make([]uuid.UUID, 0, len(invoiceJobs))
		for _, raw := range invoiceJobs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", raw, err)
			}
			jobIDs = append(jobIDs, id)
		}
		due := time.Now().AddDate(0, 0, 30)
		if invoiceDue != "" {
			if due, err = parseDate(invoiceDue); err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
		}

		store := client.NewInvoiceStore(collection.WithNotifier[models.Invoice](notifier()))
		inv, err := store.Create(cmd.Context(), func(ctx context.Context) (models.Invoice, error) {
			return api.CreateInvoice(ctx, models.InvoiceInput{
				ClientID:       clientID,
				JobIDs:         jobIDs,
				DueDate:        due,
				TaxRate:        invoiceTax,
				DiscountAmount: invoiceDiscount,
				Notes:          invoiceNotes,
			})
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created invoice %s for %s\n", inv.InvoiceNumber, client.FormatMoney(inv.TotalAmount))
		return nil
	},
}

var invoicesStatusCmd = &cobra.Command{
	Use:   "status <invoice-id> <status>",
	Short: "Mark an invoice sent, paid or overdue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid invoice id: %w", err)
		}
		to := args[1]

		store := client.NewInvoiceStore(collection.WithNotifier[models.Invoice](notifier()))
		if err := store.Load(cmd.Context(), api.ListInvoices); err != nil {
			return err
		}
		for _, inv := range store.Items() {
			if inv.ID == id && !models.CanTransitionInvoice(inv.Status, to) {
				actions := models.InvoiceActions(inv.Status)
				if len(actions) == 0 {
					return fmt.Errorf("invoice is %s and cannot change status", inv.Status)
				}
				return fmt.Errorf("invoice is %s, it can move to: %s", inv.Status, strings.Join(actions, ", "))
			}
		}

		inv, err := store.Update(cmd.Context(), func(ctx context.Context) (models.Invoice, error) {
			return api.UpdateInvoiceStatus(ctx, id, to)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s is now %s\n", inv.InvoiceNumber, inv.Status)
		return nil
	},
}

func init() {
	addListFlags(invoicesListCmd)

	invoicesCreateCmd.Flags().StringVar(&invoiceClient, "client", "", "Client id")
	invoicesCreateCmd.Flags().StringSliceVar(&invoiceJobs, "job", nil, "Job id (repeatable)")
	invoicesCreateCmd.Flags().StringVar(&invoiceDue, "due", "", "Due date, defaults to 30 days from now")
	invoicesCreateCmd.Flags().Float64Var(&invoiceTax, "tax-rate", 0, "Tax rate as a fraction, e.g. 0.08")
	invoicesCreateCmd.Flags().Float64Var(&invoiceDiscount, "discount", 0, "Discount amount")
	invoicesCreateCmd.Flags().StringVar(&invoiceNotes, "notes", "", "Notes printed on the invoice")
	_ = invoicesCreateCmd.MarkFlagRequired("client")
	_ = invoicesCreateCmd.MarkFlagRequired("job")

	invoicesCmd.AddCommand(invoicesListCmd, invoicesCreateCmd, invoicesStatusCmd)
	rootCmd.AddCommand(invoicesCmd)
}
