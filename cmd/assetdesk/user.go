package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/erazemk/assetdesk/internal/auth"
	"github.com/erazemk/assetdesk/internal/model"
	"github.com/erazemk/assetdesk/internal/store"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage console accounts",
	}

	var role string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account with a generated password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.ValidRole(role) {
				return fmt.Errorf("invalid role %q", role)
			}
			database, err := a.openDatabase(false)
			if err != nil {
				return err
			}
			defer database.Close()

			password, err := auth.GeneratePassword(generatedPasswordLength)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			user, err := store.CreateUser(cmd.Context(), database, args[0], hash, role)
			if err != nil {
				return err
			}

			a.log.Info("user created", zap.String("new_user", user.Username), zap.String("role", user.Role))
			fmt.Fprintf(a.out, "User %s (%s) created.\n  Password: %s\n", user.Username, user.Role, password)
			return nil
		},
	}
	add.Flags().StringVarP(&role, "role", "r", model.RoleUser, "admin, manager or user")

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := a.openDatabase(false)
			if err != nil {
				return err
			}
			defer database.Close()

			users, err := store.ListUsers(cmd.Context(), database)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tROLE")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
