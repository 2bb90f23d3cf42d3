package cli

import (
	"fmt"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/service"
	"github.com/spf13/cobra"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Manage the service catalogue",
	Long: `List, add, edit, and delete services. A service is a pricing template: applying it to a
line item copies its name and price once.`,
}

var servicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all services",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		search, _ := cmd.Flags().GetString("search")

		services, err := appInstance.Repo.Services.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list services: %w", err)
		}
		services = service.FilterServices(services, search)

		if len(services) == 0 {
			fmt.Println("No services found")
			return nil
		}

		fmt.Printf("%-9s %-25s %-35s %14s\n", "ID", "Name", "Description", "Price")
		fmt.Println("--------------------------------------------------------------------------------------")

		for _, s := range services {
			fmt.Printf("%-9s %-25s %-35s %14s\n",
				shortID(s.ID),
				truncate(s.Name, 25),
				truncate(s.Description, 35),
				money(s.Price),
			)
		}

		fmt.Printf("\nTotal: %d service(s)\n", len(services))
		return nil
	},
}

var servicesAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		priceStr, _ := cmd.Flags().GetString("price")
		description, _ := cmd.Flags().GetString("description")

		price, err := parseMoney(priceStr)
		if err != nil {
			return err
		}

		s := domain.NewService(args[0], price)
		s.Description = description

		if err := appInstance.Repo.Services.Add(ctx, s); err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}

		fmt.Printf("✓ Service created: %s (ID: %s)\n", s.Name, shortID(s.ID))
		fmt.Printf("  Price: %s\n", money(s.Price))
		return nil
	},
}

var servicesEditCmd = &cobra.Command{
	Use:   "edit [id_or_name]",
	Short: "Edit an existing service",
	Long:  `Edit a service. Line items already priced from it keep their rate.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		s, err := resolveService(ctx, args[0])
		if err != nil {
			return err
		}

		name, _ := flags.GetString("name")
		description, _ := flags.GetString("description")

		patch := domain.ServicePatch{
			Name:        stringFlag(flags.Changed("name"), name),
			Description: stringFlag(flags.Changed("description"), description),
		}
		if flags.Changed("price") {
			priceStr, _ := flags.GetString("price")
			price, err := parseMoney(priceStr)
			if err != nil {
				return err
			}
			patch.Price = &price
		}
		if patch.IsEmpty() {
			fmt.Println("Nothing to change")
			return nil
		}

		updated, err := appInstance.Repo.Services.Update(ctx, s.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to update service: %w", err)
		}

		fmt.Printf("✓ Service updated: %s (%s)\n", updated.Name, money(updated.Price))
		return nil
	},
}

var servicesDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_name]",
	Short: "Delete a service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := resolveService(ctx, args[0])
		if err != nil {
			return err
		}

		if err := appInstance.Repo.Services.Delete(ctx, s.ID); err != nil {
			return fmt.Errorf("failed to delete service: %w", err)
		}

		fmt.Printf("✓ Service deleted: %s\n", s.Name)
		return nil
	},
}

func init() {
	servicesCmd.AddCommand(servicesListCmd)
	servicesCmd.AddCommand(servicesAddCmd)
	servicesCmd.AddCommand(servicesEditCmd)
	servicesCmd.AddCommand(servicesDeleteCmd)

	servicesListCmd.Flags().String("search", "", "Filter by name or description")

	servicesAddCmd.Flags().String("price", "0", "Unit price")
	servicesAddCmd.Flags().String("description", "", "Description")

	servicesEditCmd.Flags().String("name", "", "New name")
	servicesEditCmd.Flags().String("price", "", "New unit price")
	servicesEditCmd.Flags().String("description", "", "New description")
}
