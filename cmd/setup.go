package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	return nil
}

// SetupConfig creates the config file from the template when missing and stores any credentials given by flag or
// imported from a legacy simple_discogs.conf.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = defaultConfigPath
	}

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		config = shared.DefaultConfig()
	}

	creds := config.Credentials.Discogs
	changed := false

	if legacy := cmd.String("legacy"); legacy != "" {
		imported, err := shared.LoadLegacyCredentials(legacy)
		if err != nil {
			return err
		}
		r.logger.Info("imported legacy credentials", "file", legacy, "user", imported.UserID)
		creds, changed = imported, true
	}
	if userID := cmd.String("user-id"); userID != "" {
		creds.UserID, changed = userID, true
	}
	if token := cmd.String("token"); token != "" {
		creds.Token, changed = token, true
	}

	if changed {
		if err := creds.Validate(); err != nil {
			return err
		}
		config.Credentials.Discogs = creds
		if err := shared.SaveConfig(configPath, config); err != nil {
			return err
		}
		r.config = config
		r.writePlain("✓ Discogs credentials saved for %s\n", creds.UserID)
	}

	r.writePlain("✓ Config ready at %s\n", configPath)
	if err := config.Credentials.Discogs.Validate(); err != nil {
		r.writePlainln("Next steps:")
		r.writePlain("1. Set credentials.discogs.user_id and token in %s (or MIXTAPE_DISCOGS_USER_ID / MIXTAPE_DISCOGS_TOKEN)\n", configPath)
		r.writePlain("2. Run 'mixtape collection refresh'\n")
	}
	return nil
}
