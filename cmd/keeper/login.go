package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keeper/pkg/types"
)

func newLoginCmd(a *app) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Check a username and password",
		Long:  "Check a username and password. The password is taken from --password or read from the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			pw, err := readSecret(cmd.InOrStdin(), password, "password")
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			res, err := store.LoginUser(username, pw)
			if err != nil {
				return classify(err)
			}

			if a.flagJSON {
				if err := writeJSON(cmd.OutOrStdout(), map[string]string{"username": username, "result": res.String()}); err != nil {
					return sysError(err)
				}
				if res != types.AuthSuccess {
					return userError(errors.New(res.String()))
				}
				return nil
			}

			switch res {
			case types.AuthSuccess:
				fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", username)
				return nil
			case types.AuthNoUsersYet:
				return userError(errors.New("no users registered yet"))
			case types.AuthUserNotFound:
				return userError(errors.New("username not found"))
			default:
				return userError(errors.New("invalid password"))
			}
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	return cmd
}
