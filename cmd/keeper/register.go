package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

func newRegisterCmd(a *app) *cobra.Command {
	var password, confirm string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Register a new user",
		Long:  "Register a new user. The password is taken from --password (checked against --confirm when given) or read from stdin followed by a confirmation line; a mismatch is rejected.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if err := types.ValidateUsername(username); err != nil {
				return userError(err)
			}
			pw, err := readConfirmedSecret(cmd.InOrStdin(), password, confirm, "password")
			if err != nil {
				return err
			}
			if err := types.ValidatePassword(pw); err != nil {
				return userError(err)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			res, err := store.RegisterUser(username, pw)
			if err != nil {
				return classify(err)
			}
			if res == types.AuthAlreadyExists {
				return userError(fmt.Errorf("username %q already exists", username))
			}

			if a.flagJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"username": username, "result": res.String()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %q registered successfully\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "repeat of --password")
	return cmd
}
