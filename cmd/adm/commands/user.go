package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"civicapp/internal/models"
	"civicapp/internal/observability"
	"civicapp/internal/services"
	contextutils "civicapp/internal/utils"

	"github.com/spf13/cobra"
)

// UserCommands returns the user management commands
func UserCommands(userService *services.UserService, logger *observability.Logger, databaseURL string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long: `User management commands for the civic platform.

Available commands:
  list           - List all users
  set-role       - Change the role of a user
  reset-password - Reset password for a specific user`,
	}

	// Add subcommands
	userCmd.AddCommand(listCmd(userService, logger, databaseURL))
	userCmd.AddCommand(setRoleCmd(userService, logger))
	userCmd.AddCommand(resetPasswordCmd(userService, logger))

	return userCmd
}

// listCmd returns the list command
func listCmd(userService *services.UserService, logger *observability.Logger, databaseURL string) *cobra.Command {
	var roleFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Long:  `List all users in the database with their basic information.`,
		RunE:  runListUsers(userService, logger, databaseURL, &roleFilter),
	}

	cmd.Flags().StringVar(&roleFilter, "role", "", "Only list users with this role (CITIZEN, POLITICIAN, MODERATOR, ADMIN)")

	return cmd
}

// setRoleCmd returns the set-role command
func setRoleCmd(userService *services.UserService, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role [email] [role]",
		Short: "Change the role of a user",
		Long:  `Change the role of a user identified by email. Role must be one of CITIZEN, POLITICIAN, MODERATOR, ADMIN.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runSetRole(userService, logger),
	}
}

// resetPasswordCmd returns the reset-password command
func resetPasswordCmd(userService *services.UserService, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [email]",
		Short: "Reset password for a user",
		Long:  `Reset the password for a specific user. If email is not provided, you will be prompted for it.`,
		RunE:  runResetPassword(userService, logger),
	}
}

// runListUsers returns a function that lists all users
func runListUsers(userService *services.UserService, logger *observability.Logger, databaseURL string, roleFilter *string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		// Show diagnostic information
		logger.Info(ctx, "Admin command diagnostics", map[string]interface{}{"config_file": os.Getenv("CIVICAPP_CONFIG_FILE"), "database_url": maskDatabaseURL(databaseURL)})

		var users []models.User
		var err error
		if *roleFilter != "" {
			role := models.Role(strings.ToUpper(*roleFilter))
			if !role.IsValid() {
				return contextutils.ErrorWithContextf("unknown role '%s'", *roleFilter)
			}
			users, err = userService.GetUsersByRole(ctx, role)
		} else {
			users, err = userService.GetAllUsers(ctx)
		}
		if err != nil {
			logger.Error(ctx, "Failed to get users", err, map[string]interface{}{})
			return contextutils.WrapError(err, "failed to get users")
		}

		if len(users) == 0 {
			logger.Info(ctx, "No users found in the database", nil)
			return nil
		}

		// Print header to stdout (user-facing table)
		fmt.Printf("%-5s %-25s %-30s %-12s %-20s %-8s %-10s\n", "ID", "Name", "Email", "Role", "Constituency", "Enabled", "Created")
		fmt.Println(strings.Repeat("-", 115))

		// Print each user
		for _, user := range users {
			constituency := "N/A"
			if user.Constituency.Valid {
				constituency = user.Constituency.String
			}

			enabled := "No"
			if user.Enabled {
				enabled = "Yes"
			}

			fmt.Printf("%-5d %-25s %-30s %-12s %-20s %-8s %-10s\n",
				user.ID,
				user.FullName,
				user.Email,
				user.Role,
				constituency,
				enabled,
				user.CreatedAt.Format("2006-01-02"),
			)
		}

		logger.Info(ctx, "Listed users", map[string]interface{}{"total": len(users)})
		return nil
	}
}

// runSetRole returns a function that changes a user's role
func runSetRole(userService *services.UserService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		email := args[0]
		role := models.Role(strings.ToUpper(args[1]))
		if !role.IsValid() {
			return contextutils.ErrorWithContextf("unknown role '%s'", args[1])
		}

		user, err := userService.GetUserByEmail(ctx, email)
		if err != nil {
			logger.Error(ctx, "Failed to get user", err, map[string]interface{}{"email": email})
			return contextutils.WrapErrorf(err, "failed to get user '%s'", email)
		}

		if err := userService.UpdateUserRole(ctx, user.ID, role); err != nil {
			logger.Error(ctx, "Failed to update role", err, map[string]interface{}{"email": email, "user_id": user.ID, "role": role})
			return contextutils.WrapErrorf(err, "failed to update role for user '%s'", email)
		}

		fmt.Printf("Role of user '%s' (ID: %d) set to %s\n", email, user.ID, role)
		logger.Info(ctx, "User role updated", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
			"role":    role,
		})

		return nil
	}
}

// runResetPassword returns a function that resets a user's password
func runResetPassword(userService *services.UserService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		var email string
		var newPassword string

		// Get email from args or prompt
		if len(args) > 0 {
			email = args[0]
		} else {
			fmt.Print("Enter email: ")
			if _, err := fmt.Scanln(&email); err != nil {
				return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read email: %v", err)
			}
		}

		if email == "" {
			return contextutils.ErrorWithContextf("email is required")
		}

		// Prompt for password securely
		fmt.Print("Enter new password: ")
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read password: %v", err)
		}
		newPassword = string(passwordBytes)
		fmt.Println() // New line after password input

		if newPassword == "" {
			return contextutils.ErrorWithContextf("password cannot be empty")
		}

		// Confirm password
		fmt.Print("Confirm new password: ")
		confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read password confirmation: %v", err)
		}
		confirmPassword := string(confirmBytes)
		fmt.Println() // New line after password input

		if newPassword != confirmPassword {
			return contextutils.ErrorWithContextf("passwords do not match")
		}

		logger.Info(ctx, "Resetting password for user", map[string]interface{}{
			"email": email,
		})

		// Get user by email
		user, err := userService.GetUserByEmail(ctx, email)
		if err != nil {
			logger.Error(ctx, "Failed to get user", err, map[string]interface{}{"email": email})
			return contextutils.WrapErrorf(err, "failed to get user '%s'", email)
		}

		// Update the password
		err = userService.UpdateUserPassword(ctx, user.ID, newPassword)
		if err != nil {
			logger.Error(ctx, "Failed to update password", err, map[string]interface{}{
				"email":   email,
				"user_id": user.ID,
			})
			return contextutils.WrapErrorf(err, "failed to update password for user '%s'", email)
		}

		fmt.Printf("Password successfully reset for user '%s' (ID: %d)\n", email, user.ID)
		logger.Info(ctx, "Password reset successful", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})

		return nil
	}
}
