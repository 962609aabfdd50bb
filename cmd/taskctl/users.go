package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var createUser user.RegisterRequest

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		// same rules as POST /auth/register
		v := validator.New()
		v.SetTagName("binding")
		if err := v.Struct(createUser); err != nil {
			return fmt.Errorf("invalid user: %w", err)
		}

		return withStore(10*time.Second, func(ctx context.Context, store *postgres.Store) error {
			svc := service.NewAuthService(store, auth.NewManager(cfg.JWTSecret, cfg.JWTTTL()), nil, logger)

			u, err := svc.Register(ctx, createUser)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", u.ID, u.Username)
			return nil
		})
	},
}

var deleteUserID int64

var usersDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a user; their memberships go and their tasks become unassigned",
	RunE: func(cmd *cobra.Command, args []string) error {
		if deleteUserID <= 0 {
			return errors.New("--id is required")
		}

		return withStore(10*time.Second, func(ctx context.Context, store *postgres.Store) error {
			svc := service.NewAuthService(store, auth.NewManager(cfg.JWTSecret, cfg.JWTTTL()), nil, logger)

			if err := svc.DeleteUser(ctx, deleteUserID); err != nil {
				if errors.Is(err, user.ErrNotFound) {
					return fmt.Errorf("user %d not found", deleteUserID)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d\n", deleteUserID)
			return nil
		})
	},
}

func init() {
	f := usersCreateCmd.Flags()
	f.StringVar(&createUser.Username, "username", "", "username (required)")
	f.StringVar(&createUser.Email, "email", "", "email (required)")
	f.StringVar(&createUser.Password, "password", "", "password, at least 8 characters (required)")
	f.StringVar(&createUser.FirstName, "first-name", "", "first name (required)")
	f.StringVar(&createUser.LastName, "last-name", "", "last name (required)")
	for _, name := range []string{"username", "email", "password", "first-name", "last-name"} {
		_ = usersCreateCmd.MarkFlagRequired(name)
	}

	usersDeleteCmd.Flags().Int64Var(&deleteUserID, "id", 0, "user id (required)")
	_ = usersDeleteCmd.MarkFlagRequired("id")

	usersCmd.AddCommand(usersCreateCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}
