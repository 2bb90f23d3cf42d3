package cli

import (
	"fmt"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  `List, add, edit, and delete clients. Deleting a client never changes invoices already issued to it.`,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		search, _ := cmd.Flags().GetString("search")

		clients, err := appInstance.Repo.Clients.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}
		clients = service.FilterClients(clients, search)

		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		// Print table header
		fmt.Printf("%-9s %-28s %-30s %-15s\n", "ID", "Name", "Email", "Phone")
		fmt.Println("------------------------------------------------------------------------------------")

		for _, client := range clients {
			fmt.Printf("%-9s %-28s %-30s %-15s\n",
				shortID(client.ID),
				truncate(client.Name, 28),
				truncate(client.Email, 30),
				truncate(client.Phone, 15),
			)
		}

		fmt.Printf("\nTotal: %d client(s)\n", len(clients))
		return nil
	},
}

var clientsShowCmd = &cobra.Command{
	Use:   "show [id_or_name]",
	Short: "Show client details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := resolveClient(ctx, args[0])
		if err != nil {
			return err
		}

		invoices, err := appInstance.Repo.Invoices.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}
		count := 0
		billed := decimal.Zero
		for _, inv := range invoices {
			if inv.ClientID == client.ID {
				count++
				billed = billed.Add(inv.Total)
			}
		}

		fmt.Printf("ID:       %s\n", client.ID)
		fmt.Printf("Name:     %s\n", client.Name)
		fmt.Printf("Email:    %s\n", client.Email)
		fmt.Printf("Phone:    %s\n", client.Phone)
		fmt.Printf("Address:  %s\n", client.Address)
		fmt.Printf("Created:  %s\n", client.CreatedAt.Local().Format("2006-01-02 15:04"))
		fmt.Printf("Invoices: %d (%s billed)\n", count, money(billed))
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		email, _ := cmd.Flags().GetString("email")
		phone, _ := cmd.Flags().GetString("phone")
		address, _ := cmd.Flags().GetString("address")

		client := domain.NewClient(args[0], email)
		client.Phone = phone
		client.Address = address

		if err := appInstance.Repo.Clients.Add(ctx, client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Printf("✓ Client created: %s (ID: %s)\n", client.Name, shortID(client.ID))
		return nil
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit [id_or_name]",
	Short: "Edit an existing client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		client, err := resolveClient(ctx, args[0])
		if err != nil {
			return err
		}

		name, _ := flags.GetString("name")
		email, _ := flags.GetString("email")
		phone, _ := flags.GetString("phone")
		address, _ := flags.GetString("address")

		patch := domain.ClientPatch{
			Name:    stringFlag(flags.Changed("name"), name),
			Email:   stringFlag(flags.Changed("email"), email),
			Phone:   stringFlag(flags.Changed("phone"), phone),
			Address: stringFlag(flags.Changed("address"), address),
		}
		if patch.IsEmpty() {
			fmt.Println("Nothing to change")
			return nil
		}

		updated, err := appInstance.Repo.Clients.Update(ctx, client.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Printf("✓ Client updated: %s\n", updated.Name)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_name]",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := resolveClient(ctx, args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete client %s? Existing invoices keep their copy of the client.", client.Name)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.Repo.Clients.Delete(ctx, client.ID); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}

		fmt.Printf("✓ Client deleted: %s\n", client.Name)
		return nil
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsShowCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsEditCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)

	// List flags
	clientsListCmd.Flags().String("search", "", "Filter by name or email")

	// Add flags
	clientsAddCmd.Flags().String("email", "", "Client email (required)")
	clientsAddCmd.MarkFlagRequired("email")
	clientsAddCmd.Flags().String("phone", "", "Client phone")
	clientsAddCmd.Flags().String("address", "", "Billing address")

	// Edit flags
	clientsEditCmd.Flags().String("name", "", "New name")
	clientsEditCmd.Flags().String("email", "", "New email")
	clientsEditCmd.Flags().String("phone", "", "New phone")
	clientsEditCmd.Flags().String("address", "", "New address")

	// Delete flags
	clientsDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
