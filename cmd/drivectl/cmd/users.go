package cmd

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/templui/drive/internal/repository"
	"github.com/templui/drive/internal/service"
)

func UsersCmd() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	var name string
	create := &cobra.Command{
		Use:   "create <email>",
		Short: "Create an account; the password is read from DRIVE_PASSWORD",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			password := os.Getenv("DRIVE_PASSWORD")
			if password == "" {
				return fmt.Errorf("DRIVE_PASSWORD is not set")
			}
			if name == "" {
				name = args[0]
			}

			return withDB(c.Context(), func(database *sqlx.DB) error {
				// No email service and no token signing: only Register is used
				auth := service.NewAuthService(repository.NewUserRepository(database), nil, "", 0)

				user, err := auth.Register(c.Context(), args[0], name, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "created user %s (%s)\n", user.ID, user.Email)
				return nil
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name (defaults to the email)")

	users.AddCommand(create)
	return users
}
