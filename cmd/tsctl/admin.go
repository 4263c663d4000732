package main

import (
	"errors"
	"fmt"

	"timesheet/internal/service"

	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Give an existing member a password and the admin role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmail == "" || adminPassword == "" {
			return errors.New("--email and --password are required")
		}
		_, db, err := openDB()
		if err != nil {
			return err
		}
		m, err := service.NewAuthService(db).SetAdminPassword(cmd.Context(), adminEmail, adminPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d) is now an admin\n", m.Email, m.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "member email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "new password, at least 8 characters")
}
