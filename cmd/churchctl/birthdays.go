package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	birthdaysDays int
	birthdaysSend bool
)

// birthdaysCmd prints upcoming birthdays and can send the digest by hand
var birthdaysCmd = &cobra.Command{
	Use:   "birthdays",
	Short: "List upcoming birthdays or send the digest now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		ctx := cmd.Context()

		if birthdaysSend {
			if err := a.SendDigest(ctx, ""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "birthday digest processed")
			return nil
		}

		events, err := a.Calendar.UpcomingBirthdays(ctx, birthdaysDays)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no birthdays in the next %d days\n", birthdaysDays)
			return nil
		}
		for _, ev := range events {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", ev.Date, ev.Title)
		}
		return nil
	},
}

func init() {
	birthdaysCmd.Flags().IntVar(&birthdaysDays, "days", 30, "How many days ahead to list")
	birthdaysCmd.Flags().BoolVar(&birthdaysSend, "send", false, "Send the birthday digest email now")
}
