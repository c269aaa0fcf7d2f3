package main

import (
	"context"
	"fmt"
	"strconv"

	"fieldpro-backend/client"
	"fieldpro-backend/collection"
	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var newClient models.ClientInput

var clientsCmd = &cobra.Command{
	Use:               "clients",
	Short:             "List and manage clients",
	PersistentPreRunE: requireLogin,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients, filtered by --search",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.NewClientStore(collection.WithNotifier[models.Client](notifier()))
		if err := store.Load(cmd.Context(), api.ListClients); err != nil {
			return err
		}
		clients := store.View(collection.Criteria{Search: listSearch})

		t := newTable(cmd.OutOrStdout(), "ID", "NAME", "EMAIL", "PHONE", "JOBS", "REVENUE")
		for _, c := range clients {
			t.row(shortID(c.ID), c.Name, c.Email, c.Phone, strconv.Itoa(c.TotalJobs), client.FormatMoney(c.TotalRevenue))
		}
		t.flush()

		revenue := func(c models.Client) float64 { return c.TotalRevenue }
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d clients, %s lifetime revenue, %s average\n",
			len(clients), client.FormatMoney(collection.Sum(clients, revenue)),
			client.FormatMoney(collection.Average(clients, revenue)))
		return nil
	},
}

var clientsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a client",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.NewClientStore(collection.WithNotifier[models.Client](notifier()))
		created, err := store.Create(cmd.Context(), func(ctx context.Context) (models.Client, error) {
			return api.CreateClient(ctx, newClient)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created client %s (%s)\n", created.ID, created.Name)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <client-id>",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid client id: %w", err)
		}
		store := client.NewClientStore(
			collection.WithNotifier[models.Client](notifier()),
			collection.WithConfirmer[models.Client](confirmer(cmd)),
		)
		return reportDeclined(cmd, store.Delete(cmd.Context(), id.String(), "Delete client "+shortID(id)+"?",
			func(ctx context.Context) error { return api.DeleteClient(ctx, id) }))
	},
}

func init() {
	clientsListCmd.Flags().StringVar(&listSearch, "search", "", "Case-insensitive text search")

	clientsCreateCmd.Flags().StringVar(&newClient.Name, "name", "", "Client name")
	clientsCreateCmd.Flags().StringVar(&newClient.Email, "email", "", "Contact email")
	clientsCreateCmd.Flags().StringVar(&newClient.Phone, "phone", "", "Phone number")
	clientsCreateCmd.Flags().StringVar(&newClient.Address, "address", "", "Service address")
	clientsCreateCmd.Flags().StringVar(&newClient.ContactPerson, "contact", "", "Contact person")

	clientsCmd.AddCommand(clientsListCmd, clientsCreateCmd, clientsDeleteCmd)
	rootCmd.AddCommand(clientsCmd)
}
