package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"churchadmin/internal/seed"
)

// seedCmd loads members, presets and events from a YAML file
var seedCmd = &cobra.Command{
	Use:   "seed FILE",
	Short: "Load members, presets and events from a YAML seed file",
	Long: `Load a YAML seed file. Members are only created when the directory is
empty; presets and events are always added, so run this once per file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := seed.Load(args[0])
		if err != nil {
			return err
		}
		a, cleanup, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := a.ApplySeed(cmd.Context(), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d members, %d presets, %d events\n", res.Members, res.Presets, res.Events)
		return nil
	},
}
