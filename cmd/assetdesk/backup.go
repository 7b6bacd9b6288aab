package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/assetdesk/internal/model"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list, delete and restore database backups",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the database into a new archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := a.openDatabase(false)
			if err != nil {
				return err
			}
			defer database.Close()
			c, err := a.backups(database)
			if err != nil {
				return err
			}

			b, err := c.Create(cmd.Context(), model.SystemActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Backup created: %s (%d bytes)\n", b.Filename, b.Size)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List archives, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := a.openDatabase(false)
			if err != nil {
				return err
			}
			defer database.Close()
			c, err := a.backups(database)
			if err != nil {
				return err
			}

			backups, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILENAME\tCREATED\tSIZE")
			for _, b := range backups {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", b.Filename, b.CreatedAt.Format(time.DateTime), b.Size)
			}
			return tw.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete <filename>...",
		Short: "Delete archives; nothing is deleted if any name is unknown",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDatabase(false)
			if err != nil {
				return err
			}
			defer database.Close()
			c, err := a.backups(database)
			if err != nil {
				return err
			}

			if err := c.Delete(cmd.Context(), model.SystemActor, args...); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %d backup(s).\n", len(args))
			return nil
		},
	}

	var confirmed bool
	restore := &cobra.Command{
		Use:   "restore <filename>",
		Short: "Replace all data with the contents of one archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("restore replaces all current data; pass --yes to confirm")
			}
			database, err := a.openDatabase(false)
			if err != nil {
				return err
			}
			defer database.Close()
			c, err := a.backups(database)
			if err != nil {
				return err
			}

			if err := c.Restore(cmd.Context(), model.SystemActor, args); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Restored %s.\n", args[0])
			return nil
		},
	}
	restore.Flags().BoolVarP(&confirmed, "yes", "y", false, "confirm the restore")

	cmd.AddCommand(create, list, del, restore)
	return cmd
}
