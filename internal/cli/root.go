package cli

import (
	"context"
	"fmt"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/config"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "billbook",
	Short: "An offline invoice manager for small businesses",
	Long: `Billbook keeps your clients, services and invoices in an encrypted local store
and exports invoices as PDF documents.

By default, running billbook without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd.Context(), cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

// Close releases the app, if one was started
func Close() error {
	if appInstance == nil {
		return nil
	}
	return appInstance.Close()
}

// initApp builds the app on first use. Help and completion never reach here, so they
// never prompt for the store key.
func initApp(ctx context.Context, cmd *cobra.Command) error {
	if appInstance != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	memory, _ := cmd.Flags().GetBool("memory")
	configPath, _ := cmd.Flags().GetString("config")

	var (
		a   *app.App
		err error
	)
	if memory {
		path := configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		cfg, cerr := config.Load(path)
		if cerr != nil {
			return fmt.Errorf("failed to load config: %w", cerr)
		}
		a, err = app.NewInMemory(ctx, cfg)
	} else {
		a, err = app.New(ctx, configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	appInstance = a
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $BILLBOOK_CONFIG or ~/.config/billbook/config.yaml)")
	rootCmd.PersistentFlags().Bool("memory", false, "Use a throwaway in-memory store (nothing is saved)")

	// Add all subcommands
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(companyCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
