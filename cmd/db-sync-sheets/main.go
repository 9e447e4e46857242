package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uhppoted/db-sync-sheets/commands"
)

var options = commands.Options{
	Config: "",
	Debug:  false,
}

func main() {
	root := &cobra.Command{
		Use:           fmt.Sprintf("%v %v", commands.APP, commands.SyncCmd.Usage()),
		Short:         commands.SyncCmd.Description(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.SyncCmd.Execute(cmd.Context(), &options, args...)
		},
	}

	root.PersistentFlags().StringVar(&options.Config, "config", options.Config, fmt.Sprintf("YAML configuration file (defaults to %v if it exists)", commands.DEFAULT_CONFIG))
	root.PersistentFlags().BoolVar(&options.Debug, "debug", options.Debug, "Enables debug logging")

	commands.SyncCmd.Flags(root.Flags())

	root.AddCommand(&cobra.Command{
		Use:   commands.VersionCmd.Name(),
		Short: commands.VersionCmd.Description(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.VersionCmd.Execute(cmd.OutOrStdout())
		},
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: %v\n\n", err)
		os.Exit(1)
	}
}
