package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/andy/billbook/internal/billing"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/export"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage saved invoices",
	Long:  `List, inspect, export and delete saved invoices, and toggle them between Unpaid and Paid.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		search, _ := cmd.Flags().GetString("search")

		var status *domain.InvoiceStatus
		if cmd.Flags().Changed("status") {
			statusStr, _ := cmd.Flags().GetString("status")
			s, err := domain.ParseInvoiceStatus(statusStr)
			if err != nil {
				return err
			}
			status = &s
		}

		invoices, err := appInstance.InvoiceService.ListInvoices(ctx, search, status)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		fmt.Printf("%-9s %-12s %-24s %-11s %-11s %14s %-7s\n", "ID", "Number", "Client", "Date", "Due", "Total", "Status")
		fmt.Println("-----------------------------------------------------------------------------------------------")

		for _, invoice := range invoices {
			fmt.Printf("%-9s %-12s %-24s %-11s %-11s %14s %-7s\n",
				shortID(invoice.ID),
				truncate(invoice.InvoiceNumber, 12),
				truncate(invoice.ClientSnapshot.Name, 24),
				invoice.Date,
				invoice.DueDate,
				money(invoice.Total),
				invoice.Status,
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id_or_number]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := resolveInvoice(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printInvoice(invoice, "Invoice")
		return nil
	},
}

var invoicesToggleCmd = &cobra.Command{
	Use:   "toggle [id_or_number]",
	Short: "Toggle an invoice between Unpaid and Paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		updated, err := appInstance.InvoiceService.ToggleStatus(ctx, invoice.ID)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Invoice %s marked as %s\n", updated.InvoiceNumber, updated.Status)
		return nil
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_number]",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete invoice %s?", invoice.InvoiceNumber)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.InvoiceService.DeleteInvoice(ctx, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		fmt.Printf("✓ Invoice deleted: %s\n", invoice.InvoiceNumber)
		return nil
	},
}

var invoicesExportCmd = &cobra.Command{
	Use:   "export [id_or_number]",
	Short: "Export an invoice as PDF",
	Long: `Export an invoice as a PDF named <Client>_<Date>.pdf.

Use --out to choose the directory, or --out - to write the PDF to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		req, err := exportRequest(cmd)
		if err != nil {
			return err
		}
		res, err := appInstance.InvoiceService.ExportInvoice(ctx, invoice.ID, req)
		if err != nil {
			return err
		}
		return reportExport(res, req)
	},
}

// exportRequest reads --mode and --out; "-" as the output selects blob mode to stdout
func exportRequest(cmd *cobra.Command) (export.Request, error) {
	modeStr, _ := cmd.Flags().GetString("mode")
	out, _ := cmd.Flags().GetString("out")

	mode, err := export.ParseMode(modeStr)
	if err != nil {
		return export.Request{}, err
	}
	if out == "-" || mode == export.ModeBlob {
		return export.Request{Mode: export.ModeBlob}, nil
	}
	if out == "" {
		out = appInstance.Config.Invoice.OutputDir
	}
	return export.Request{Mode: export.ModeFile, Dir: out}, nil
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "Output directory, or - for stdout (defaults to invoice.output_dir)")
	cmd.Flags().String("mode", "file", "Export mode: file or blob (blob writes the PDF to stdout)")
}

func reportExport(res *export.Result, req export.Request) error {
	if req.Mode == export.ModeBlob {
		if _, err := os.Stdout.Write(res.Data); err != nil {
			return fmt.Errorf("failed to write PDF: %w", err)
		}
		return nil
	}
	fmt.Printf("✓ Exported %s\n", res.Path)
	return nil
}

func printInvoice(invoice *domain.Invoice, title string) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%s: %s\n", title, invoice.InvoiceNumber)
	fmt.Println(strings.Repeat("=", 80))
	client := invoice.ClientSnapshot.Name
	if client == "" {
		client = "(no client selected)"
	}
	fmt.Printf("Client:  %s\n", client)
	if invoice.ClientSnapshot.Email != "" {
		fmt.Printf("         %s\n", invoice.ClientSnapshot.Email)
	}
	if invoice.ClientSnapshot.Address != "" {
		fmt.Printf("         %s\n", invoice.ClientSnapshot.Address)
	}
	fmt.Printf("Date:    %s\n", invoice.Date)
	fmt.Printf("Due:     %s\n", invoice.DueDate)
	if invoice.Status != "" {
		fmt.Printf("Status:  %s\n", invoice.Status)
	}
	fmt.Println()

	if len(invoice.Items) > 0 {
		fmt.Println("Line Items:")
		fmt.Println(strings.Repeat("-", 80))
		fmt.Printf("%-3s %-40s %6s %13s %14s\n", "#", "Description", "Qty", "Rate", "Amount")
		fmt.Println(strings.Repeat("-", 80))

		for i, item := range invoice.Items {
			fmt.Printf("%-3d %-40s %6d %13s %14s\n",
				i+1,
				truncate(item.Description, 40),
				item.Quantity,
				money(item.Rate),
				money(billing.LineTotal(item)),
			)
		}
		fmt.Println(strings.Repeat("-", 80))
	} else {
		fmt.Println("No line items")
	}

	fmt.Println()
	fmt.Printf("Subtotal:  %s\n", money(invoice.Subtotal))
	fmt.Printf("Tax (%s%%): %s\n", billing.FormatRate(invoice.TaxRate), money(invoice.TaxAmount))
	fmt.Printf("Total:     %s\n", money(invoice.Total))
	if invoice.Notes != "" {
		fmt.Println()
		fmt.Printf("Notes: %s\n", invoice.Notes)
	}
	fmt.Println(strings.Repeat("=", 80))
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesToggleCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesExportCmd)

	// List flags
	invoicesListCmd.Flags().String("search", "", "Filter by client name or invoice number")
	invoicesListCmd.Flags().String("status", "", "Filter by status (paid, unpaid)")

	invoicesDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	addExportFlags(invoicesExportCmd)
}
