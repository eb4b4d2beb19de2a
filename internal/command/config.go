package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/config"
)

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSetCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			cfg = cfg.Redacted()
			if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
				return writeJSON(cmd, cfg)
			}
			text, err := config.Encode(cfg)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, text)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <section.field> <value>",
		Short: "Change a setting in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				var err error
				if path, err = config.Path(); err != nil {
					return writeCommandError(cmd, err)
				}
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return writeCommandError(cmd, err)
			}
			if err := cfg.Validate(); err != nil {
				return writeCommandError(cmd, err)
			}
			if err := config.Save(path, cfg); err != nil {
				return writeCommandError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
			return nil
		},
	}
}
