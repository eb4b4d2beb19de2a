package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "auradm"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "auradm - direct messages in the terminal",
		Long:          "auradm is a terminal client for direct messages, calls and photo comments.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().String("config", "", "config file (default ~/.config/auradm/config.toml)")
	cmd.PersistentFlags().String("log-file", "", "log file, - for stderr")
	cmd.PersistentFlags().String("base-url", "", "API base URL")
	cmd.PersistentFlags().String("token", "", "bearer token")

	cmd.AddCommand(
		NewChatCmd(),
		NewThreadsCmd(),
		NewOpenCmd(),
		NewMessagesCmd(),
		NewSendCmd(),
		NewRmCmd(),
		NewReactCmd(),
		NewSearchCmd(),
		NewCallCmd(),
		NewLikeCmd(),
		NewCommentsCmd(),
		NewWatchCmd(),
		NewConfigCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}
