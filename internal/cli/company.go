package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show or change the company profile printed on invoices",
}

var companyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := appInstance.Repo.Settings.Company(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Name:     %s\n", info.Name)
		fmt.Printf("Email:    %s\n", info.Email)
		fmt.Printf("Address:  %s\n", info.Address)
		fmt.Printf("Website:  %s\n", info.Website)
		if info.Logo != "" {
			fmt.Printf("Logo:     %s\n", truncate(info.Logo, 60))
		}
		return nil
	},
}

var companySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the company profile",
	Long:  `Change fields of the company profile. Fields not given keep their current value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		info, err := appInstance.Repo.Settings.Company(ctx)
		if err != nil {
			return err
		}

		changed := false
		for name, field := range map[string]*string{
			"name":    &info.Name,
			"email":   &info.Email,
			"address": &info.Address,
			"website": &info.Website,
			"logo":    &info.Logo,
		} {
			if flags.Changed(name) {
				*field, _ = flags.GetString(name)
				changed = true
			}
		}
		if !changed {
			fmt.Println("Nothing to change")
			return nil
		}

		if err := appInstance.Repo.Settings.SetCompany(ctx, info); err != nil {
			return fmt.Errorf("failed to save company profile: %w", err)
		}

		fmt.Printf("✓ Company profile saved: %s\n", info.Name)
		return nil
	},
}

func init() {
	companyCmd.AddCommand(companyShowCmd)
	companyCmd.AddCommand(companySetCmd)

	companySetCmd.Flags().String("name", "", "Company name")
	companySetCmd.Flags().String("email", "", "Contact email")
	companySetCmd.Flags().String("address", "", "Postal address")
	companySetCmd.Flags().String("website", "", "Website")
	companySetCmd.Flags().String("logo", "", "Logo URL or base64 data")
}
