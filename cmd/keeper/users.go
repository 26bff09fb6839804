package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keeper/internal/sqlite"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and migrate credential records",
	}
	cmd.AddCommand(newUsersListCmd(a))
	cmd.AddCommand(newUsersImportCmd(a))
	cmd.AddCommand(newUsersMigrateCmd(a))
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			users, err := store.Users()
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if a.flagJSON {
				type userView struct {
					UserID    string `json:"user_id"`
					Username  string `json:"username"`
					Role      string `json:"role"`
					CreatedAt string `json:"created_at,omitempty"`
				}
				views := make([]userView, 0, len(users))
				for _, u := range users {
					v := userView{UserID: u.UserID, Username: u.Username, Role: u.Role}
					if !u.CreatedAt.IsZero() {
						v.CreatedAt = u.CreatedAt.Format(time.RFC3339)
					}
					views = append(views, v)
				}
				return writeJSON(out, views)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USERNAME\tROLE\tCREATED")
			for _, u := range users {
				created := ""
				if !u.CreatedAt.IsZero() {
					created = u.CreatedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Username, u.Role, created)
			}
			return tw.Flush()
		},
	}
}

func newUsersImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <users.txt>",
		Short: "Import a legacy comma-delimited users file",
		Long:  "Import lines of the form username,hash or username,hash,role. Existing usernames are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return userError(fmt.Errorf("open %s: %w", args[0], err))
			}
			defer f.Close()

			store, err := a.openStore()
			if err != nil {
				return err
			}
			imported, skipped, err := store.ImportLegacy(f)
			if err != nil {
				return classify(err)
			}

			if a.flagJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"imported": imported, "skipped": skipped})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users (%d skipped)\n", imported, skipped)
			return nil
		},
	}
}

func newUsersMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Copy credential records into the database users table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			users, err := store.Users()
			if err != nil {
				return classify(err)
			}

			var added int64
			err = sqlite.WithLoader(cmd.Context(), a.loaderConfig(), func(l *sqlite.Loader) error {
				ctx := cmd.Context()
				if err := l.EnsureUsersTable(ctx); err != nil {
					return err
				}
				n, err := l.UpsertUsers(ctx, users)
				added = n
				return err
			})
			if err != nil {
				return classify(err)
			}

			if a.flagJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]int64{"migrated": added, "total": int64(len(users))})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d of %d users into %s\n", added, len(users), sqlite.UsersTable)
			return nil
		},
	}
}
