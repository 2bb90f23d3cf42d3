package cli

import (
	"fmt"

	"github.com/andy/billbook/internal/domain"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show the TUI colour theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := appInstance.Repo.Settings.Theme(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(theme)
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := appInstance.Repo.Settings.ToggleTheme(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to toggle theme: %w", err)
		}
		fmt.Printf("✓ Theme set to %s\n", theme)
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set [light|dark]",
	Short:     "Choose the colour theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.ThemeLight), string(domain.ThemeDark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, err := domain.ParseTheme(args[0])
		if err != nil {
			return err
		}
		return setTheme(cmd, theme)
	},
}

func setTheme(cmd *cobra.Command, theme domain.Theme) error {
	if err := appInstance.Repo.Settings.SetTheme(cmd.Context(), theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	fmt.Printf("✓ Theme set to %s\n", theme)
	return nil
}

func init() {
	themeCmd.AddCommand(themeToggleCmd)
	themeCmd.AddCommand(themeSetCmd)
}
