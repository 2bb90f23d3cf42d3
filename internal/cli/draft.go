package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Build an invoice",
	Long: `Build an invoice step by step. The draft is saved after every change, so it survives
restarts until it is saved as an invoice or discarded.

Examples:
  billbook draft new
  billbook draft client "Acme Corp"
  billbook draft add-item --service "Web Design" --qty 2
  billbook draft add-item --description "Hosting" --rate 1500
  billbook draft set --tax 10 --due +30
  billbook draft save`,
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current draft with live totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := appInstance.InvoiceService.CurrentDraft(cmd.Context())
		if err != nil {
			return err
		}
		printInvoice(draft, "Draft")
		return nil
	},
}

var draftNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new draft, replacing the current one",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			current, err := appInstance.Repo.Settings.Draft(cmd.Context())
			if err != nil {
				return err
			}
			if current != nil && len(current.Items) > 0 &&
				!confirmPrompt("Discard the current draft and start a new one?") {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		draft, err := appInstance.InvoiceService.NewDraft(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("✓ New draft %s (due %s)\n", draft.InvoiceNumber, draft.DueDate)
		return nil
	},
}

var draftClientCmd = &cobra.Command{
	Use:   "client [id_or_name]",
	Short: "Select the client to bill",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		none, _ := cmd.Flags().GetBool("none")
		if none {
			if _, err := appInstance.InvoiceService.SelectClient(ctx, ""); err != nil {
				return err
			}
			fmt.Println("✓ Client cleared")
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("a client is required (or --none to clear it)")
		}

		client, err := resolveClient(ctx, args[0])
		if err != nil {
			return err
		}
		if _, err := appInstance.InvoiceService.SelectClient(ctx, client.ID); err != nil {
			return err
		}
		fmt.Printf("✓ Billing %s\n", client.Name)
		return nil
	},
}

var draftAddItemCmd = &cobra.Command{
	Use:   "add-item",
	Short: "Add a line item",
	Long:  `Add a line item. With --service, the service name and price are copied onto it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		draft, err := appInstance.InvoiceService.AddItem(ctx)
		if err != nil {
			return err
		}
		itemID := draft.Items[len(draft.Items)-1].ID

		if flags.Changed("service") {
			ref, _ := flags.GetString("service")
			svc, err := resolveService(ctx, ref)
			if err != nil {
				return err
			}
			if draft, err = appInstance.InvoiceService.ApplyService(ctx, itemID, svc.ID); err != nil {
				return err
			}
		}

		patch, err := itemPatch(cmd)
		if err != nil {
			return err
		}
		if patch != nil {
			if draft, err = appInstance.InvoiceService.UpdateItem(ctx, itemID, *patch); err != nil {
				return err
			}
		}

		item := draft.Items[len(draft.Items)-1]
		fmt.Printf("✓ Item %d added: %s (%d × %s)\n", len(draft.Items), item.Description, item.Quantity, money(item.Rate))
		fmt.Printf("  Draft total: %s\n", money(draft.Total))
		return nil
	},
}

var draftSetItemCmd = &cobra.Command{
	Use:   "set-item [item]",
	Short: "Change a line item",
	Long:  `Change a line item, given by its row number from 'draft show', its ID, or its description.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		draft, err := appInstance.InvoiceService.CurrentDraft(ctx)
		if err != nil {
			return err
		}
		itemID, err := resolveItem(draft, args[0])
		if err != nil {
			return err
		}

		patch, err := itemPatch(cmd)
		if err != nil {
			return err
		}
		if patch == nil {
			fmt.Println("Nothing to change")
			return nil
		}

		draft, err = appInstance.InvoiceService.UpdateItem(ctx, itemID, *patch)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Item updated. Draft total: %s\n", money(draft.Total))
		return nil
	},
}

var draftApplyServiceCmd = &cobra.Command{
	Use:   "apply-service [item] [service]",
	Short: "Copy a service's name and price onto a line item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		draft, err := appInstance.InvoiceService.CurrentDraft(ctx)
		if err != nil {
			return err
		}
		itemID, err := resolveItem(draft, args[0])
		if err != nil {
			return err
		}
		svc, err := resolveService(ctx, args[1])
		if err != nil {
			return err
		}

		draft, err = appInstance.InvoiceService.ApplyService(ctx, itemID, svc.ID)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Applied %s (%s). Draft total: %s\n", svc.Name, money(svc.Price), money(draft.Total))
		return nil
	},
}

var draftRemoveItemCmd = &cobra.Command{
	Use:   "remove-item [item]",
	Short: "Remove a line item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		draft, err := appInstance.InvoiceService.CurrentDraft(ctx)
		if err != nil {
			return err
		}
		itemID, err := resolveItem(draft, args[0])
		if err != nil {
			return err
		}

		draft, err = appInstance.InvoiceService.RemoveItem(ctx, itemID)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Item removed. Draft total: %s\n", money(draft.Total))
		return nil
	},
}

var draftSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the draft's number, dates, notes or tax rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()
		now := time.Now()

		number, _ := flags.GetString("number")
		notes, _ := flags.GetString("notes")

		patch := domain.DraftPatch{
			InvoiceNumber: stringFlag(flags.Changed("number"), number),
			Notes:         stringFlag(flags.Changed("notes"), notes),
		}

		if flags.Changed("date") {
			dateStr, _ := flags.GetString("date")
			date, err := parseDate(dateStr, now)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			patch.Date = &date
		}
		if flags.Changed("due") {
			dueStr, _ := flags.GetString("due")
			due, err := parseDate(dueStr, now)
			if err != nil {
				return fmt.Errorf("invalid due date: %w", err)
			}
			patch.DueDate = &due
		}
		if flags.Changed("tax") {
			taxStr, _ := flags.GetString("tax")
			tax, err := parseMoney(taxStr)
			if err != nil {
				return fmt.Errorf("invalid tax rate: %w", err)
			}
			patch.TaxRate = &tax
		}

		draft, err := appInstance.InvoiceService.SetDetails(ctx, patch)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Draft %s updated. Total: %s\n", draft.InvoiceNumber, money(draft.Total))
		return nil
	},
}

var draftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the draft as an invoice",
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := appInstance.InvoiceService.Save(cmd.Context())
		if invoice != nil {
			fmt.Printf("✓ Invoice saved: %s for %s (%s)\n", invoice.InvoiceNumber, invoice.ClientSnapshot.Name, money(invoice.Total))
		}
		return err
	},
}

var draftDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Throw the current draft away",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("Discard the current draft?") {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := appInstance.InvoiceService.DiscardDraft(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("✓ Draft discarded")
		return nil
	},
}

var draftExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the draft as PDF without saving it",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := exportRequest(cmd)
		if err != nil {
			return err
		}
		res, err := appInstance.InvoiceService.ExportDraft(cmd.Context(), req)
		if err != nil {
			return err
		}
		return reportExport(res, req)
	},
}

// itemPatch collects --description, --qty and --rate; nil when none were given
func itemPatch(cmd *cobra.Command) (*domain.LineItemPatch, error) {
	flags := cmd.Flags()
	var patch domain.LineItemPatch
	changed := false

	if flags.Changed("description") {
		description, _ := flags.GetString("description")
		patch.Description = &description
		changed = true
	}
	if flags.Changed("qty") {
		qtyStr, _ := flags.GetString("qty")
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q", qtyStr)
		}
		patch.Quantity = &qty
		changed = true
	}
	if flags.Changed("rate") {
		rateStr, _ := flags.GetString("rate")
		rate, err := parseMoney(rateStr)
		if err != nil {
			return nil, err
		}
		patch.Rate = &rate
		changed = true
	}

	if !changed {
		return nil, nil
	}
	return &patch, nil
}

func addItemFlags(cmd *cobra.Command) {
	cmd.Flags().String("description", "", "Line item description")
	cmd.Flags().String("qty", "", "Quantity")
	cmd.Flags().String("rate", "", "Unit rate")
}

func init() {
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftNewCmd)
	draftCmd.AddCommand(draftClientCmd)
	draftCmd.AddCommand(draftAddItemCmd)
	draftCmd.AddCommand(draftSetItemCmd)
	draftCmd.AddCommand(draftApplyServiceCmd)
	draftCmd.AddCommand(draftRemoveItemCmd)
	draftCmd.AddCommand(draftSetCmd)
	draftCmd.AddCommand(draftSaveCmd)
	draftCmd.AddCommand(draftDiscardCmd)
	draftCmd.AddCommand(draftExportCmd)

	draftNewCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	draftDiscardCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	draftClientCmd.Flags().Bool("none", false, "Clear the selected client")

	addItemFlags(draftAddItemCmd)
	draftAddItemCmd.Flags().String("service", "", "Service to price the item from")
	addItemFlags(draftSetItemCmd)

	draftSetCmd.Flags().String("number", "", "Invoice number")
	draftSetCmd.Flags().String("date", "", "Invoice date (YYYY-MM-DD, today, tomorrow, +N)")
	draftSetCmd.Flags().String("due", "", "Due date (YYYY-MM-DD, today, tomorrow, +N)")
	draftSetCmd.Flags().String("notes", "", "Notes printed on the invoice")
	draftSetCmd.Flags().String("tax", "", "Tax rate in percent")

	addExportFlags(draftExportCmd)
}
