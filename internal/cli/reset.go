package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the store",
	Long: `Reset data in the store.

Examples:
  billbook reset invoices    # Delete all invoices and the draft
  billbook reset all         # Wipe everything: clients, services, invoices, settings`,
}

var resetInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Delete all invoices and the current draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will delete ALL invoices and the current draft. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.Repo.ResetInvoices(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reset invoices: %w", err)
		}

		fmt.Println("All invoices have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: clients, services, invoices, settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will delete ALL data (clients, services, invoices, company profile, theme). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.Repo.ResetAll(cmd.Context()); err != nil {
			return fmt.Errorf("failed to reset data: %w", err)
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetInvoicesCmd)
	resetCmd.AddCommand(resetAllCmd)

	resetCmd.PersistentFlags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
