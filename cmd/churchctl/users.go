package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	userName     string
	userPassword string
)

// usersCmd manages administrator accounts
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		users, err := a.Auth.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tADMIN\tPROVIDER")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", u.ID, u.Email, u.Name, u.IsAdmin, u.OAuthProvider)
		}
		return tw.Flush()
	},
}

var usersCreateAdminCmd = &cobra.Command{
	Use:   "create-admin EMAIL",
	Short: "Create an administrator, or promote an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		ctx := cmd.Context()

		if existing, err := a.UserByEmail(ctx, args[0]); err == nil {
			if err := a.Auth.SetAdmin(ctx, existing.ID, true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an administrator\n", existing.Email)
			return nil
		}

		name := userName
		if name == "" {
			name = args[0]
		}
		user, err := a.Auth.Register(ctx, args[0], userPassword, name)
		if err != nil {
			return err
		}
		if !user.IsAdmin {
			if err := a.Auth.SetAdmin(ctx, user.ID, true); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created administrator %s (id %d)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	usersCreateAdminCmd.Flags().StringVar(&userName, "name", "", "Display name (default: the email)")
	usersCreateAdminCmd.Flags().StringVar(&userPassword, "password", "", "Password for a new account (at least 8 characters)")
	usersCmd.AddCommand(usersListCmd, usersCreateAdminCmd)
}
