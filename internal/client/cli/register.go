package cli

import (
	"errors"
	"fmt"

	"github.com/mkuznecovs/healthmon/internal/client/config"
	"github.com/spf13/cobra"
)

func newRegisterCmd(cfg *config.Config) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" {
				return errors.New("username and email are required")
			}
			if password == "" {
				var err error
				if password, err = promptPassword("Password: "); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			app, err := NewApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.Client.Register(ctx, username, email, password); err != nil {
				return describeSyncError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account %q created (free tier)\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}
