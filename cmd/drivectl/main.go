package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/templui/drive/cmd/drivectl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "drivectl",
		Short:        "Admin tools for drive",
		SilenceUsage: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			cmd.InitLogger()
		},
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UsersCmd())
	rootCmd.AddCommand(cmd.LinksCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
