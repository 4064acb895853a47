package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/database/users"
)

// CreateUserCommand creates a local account for AUTH_MODE=jwt.
type CreateUserCommand struct {
	Login        string
	Password     string
	Admin        bool
	DatabasePath string

	// loadConfig is swapped in tests.
	loadConfig func() *config.Config
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{loadConfig: config.NewConfig}
}

// Command exposes the account creation as a cobra subcommand.
func (c *CreateUserCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account for token authentication",
		Long: `Create a user account stored in the configured database.

Admins receive ROLE_ADMIN and ROLE_USER, other accounts ROLE_USER only.

Examples:
  bookcatalog create-user --login admin --password 'change-me-please' --admin
  bookcatalog create-user --login reader --password 'another-secret' --db ./data/bookcatalog.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.Run(cmd.Context()); err != nil {
				return err
			}
			role := "user"
			if c.Admin {
				role = "admin"
			}
			cmd.Printf("Created %s %q\n", role, c.Login)
			return nil
		},
	}

	cmd.Flags().StringVar(&c.Login, "login", "", "login for the new account (required)")
	cmd.Flags().StringVar(&c.Password, "password", "", "password, at least 8 characters (required)")
	cmd.Flags().BoolVar(&c.Admin, "admin", false, "grant ROLE_ADMIN")
	cmd.Flags().StringVar(&c.DatabasePath, "db", "", "SQLite database path (overrides DATABASE_PATH)")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// Run opens the database and stores the account.
func (c *CreateUserCommand) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := c.loadConfig()
	if c.DatabasePath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = c.DatabasePath
	}
	cfg.Database.LogLevel = "silent"

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Error("error closing database")
		}
	}()

	tokens, err := auth.NewTokenProvider(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token provider: %w", err)
	}

	service := auth.NewService(users.NewRepository(db.DB), tokens, cfg.Auth)
	if _, err := service.CreateUser(ctx, c.Login, c.Password, c.Admin); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
