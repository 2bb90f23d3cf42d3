package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show revenue and invoice statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := appInstance.ReportService.Dashboard(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(strings.Repeat("=", 50))
		fmt.Println("Dashboard")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Printf("Total revenue:    %s\n", money(d.TotalRevenue))
		fmt.Printf("Outstanding:      %s\n", money(d.Outstanding))
		fmt.Printf("Average invoice:  %s\n", money(d.AverageInvoice))
		fmt.Printf("Clients:          %d\n", d.ClientCount)
		fmt.Printf("Invoices:         %d (%d paid, %d unpaid)\n", d.InvoiceCount, d.PaidCount, d.UnpaidCount)

		if len(d.Monthly) > 0 {
			fmt.Println()
			fmt.Println("Revenue by month:")
			for _, m := range d.Monthly {
				fmt.Printf("  %-10s %14s\n", m.Label(), money(m.Amount))
			}
		}

		if len(d.TopServices) > 0 {
			fmt.Println()
			fmt.Println("Top services:")
			for i, s := range d.TopServices {
				fmt.Printf("  %d. %-36s %4d\n", i+1, truncate(s.Description, 36), s.Count)
			}
		}
		return nil
	},
}
