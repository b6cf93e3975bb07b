package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tgienger/synergy/internal/appstate"
	"github.com/tgienger/synergy/internal/config"
	"github.com/tgienger/synergy/internal/db"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "synergy %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	var envHelp bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envHelp {
				help, err := config.EnvHelp()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), help)
				return nil
			}
			cfg, path, err := loadConfig(o)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, out)
			return nil
		},
	}
	showCmd.Flags().BoolVar(&envHelp, "env", false, "list the environment variables instead")

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

// withState opens storage and hands fn the application context
func withState(o *rootOptions, fn func(*db.DB, *appstate.Context) error) error {
	cfg, _, err := loadConfig(o)
	if err != nil {
		return err
	}
	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(database, appstate.New(database, "cli", appstate.Theme(cfg.UI.Theme)))
}

func newSettingsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect stored session settings",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every stored setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(o, func(database *db.DB, _ *appstate.Context) error {
				settings, err := database.ListSettings()
				if err != nil {
					return err
				}
				if len(settings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No settings stored.")
					return nil
				}
				keys := make([]string, 0, len(settings))
				for k := range settings {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", k, settings[k])
				}
				return nil
			})
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored setting, including the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(o, func(database *db.DB, _ *appstate.Context) error {
				if err := database.ClearSettings(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Settings cleared.")
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, resetCmd)
	return cmd
}

func newLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(o, func(_ *db.DB, state *appstate.Context) error {
				u, ok := state.User()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
					return nil
				}
				if err := state.SignOut(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s.\n", u.Email)
				return nil
			})
		},
	}
}

func newThemeCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(appstate.ThemeLight), string(appstate.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(o, func(_ *db.DB, state *appstate.Context) error {
				if len(args) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), state.Theme())
					return nil
				}
				theme, err := appstate.ParseTheme(args[0])
				if errors.Is(err, appstate.ErrUnknownTheme) {
					return fmt.Errorf("theme must be light or dark, got %q", args[0])
				}
				if err != nil {
					return err
				}
				if err := state.SetTheme(theme); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s.\n", theme)
				return nil
			})
		},
	}
}
