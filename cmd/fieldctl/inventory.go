package main

import (
	"context"
	"fmt"
	"strconv"

	"fieldpro-backend/client"
	"fieldpro-backend/collection"
	"fieldpro-backend/models"

	"github.com/spf13/cobra"
)

var lowStockOnly bool

var inventoryCmd = &cobra.Command{
	Use:               "inventory",
	Short:             "Inspect inventory",
	PersistentPreRunE: requireLogin,
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items; --status filters by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.NewInventoryStore(collection.WithNotifier[models.InventoryItem](notifier()))
		err := store.Load(cmd.Context(), func(ctx context.Context) ([]models.InventoryItem, error) {
			return api.ListInventory(ctx, lowStockOnly)
		})
		if err != nil {
			return err
		}
		items := store.View(collection.Criteria{Status: listStatus, Search: listSearch})

		t := newTable(cmd.OutOrStdout(), "SKU", "NAME", "CATEGORY", "STOCK", "MIN", "VALUE", "")
		for _, it := range items {
			flag := ""
			switch {
			case it.IsOutOfStock():
				flag = "OUT"
			case it.IsLowStock():
				flag = "LOW"
			}
			t.row(orDash(it.SKU), it.Name, it.Category, strconv.Itoa(it.StockQuantity),
				strconv.Itoa(it.MinStockLevel), client.FormatMoney(it.StockValue()), flag)
		}
		t.flush()

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d items, %d low on stock, %s on hand\n",
			len(items), client.LowStockCount(items), client.FormatMoney(client.InventoryValue(items)))
		return nil
	},
}

func init() {
	addListFlags(inventoryListCmd)
	inventoryListCmd.Flags().BoolVar(&lowStockOnly, "low-stock", false, "Only items at or below their minimum")

	inventoryCmd.AddCommand(inventoryListCmd)
	rootCmd.AddCommand(inventoryCmd)
}
