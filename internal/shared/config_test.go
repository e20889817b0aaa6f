package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./mixtape.db" {
			t.Errorf("expected database path ./mixtape.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Discogs.BaseURL != "https://api.discogs.com" {
			t.Errorf("expected discogs base URL https://api.discogs.com, got %s", config.Discogs.BaseURL)
		}

		if config.Discogs.PerPage != 100 {
			t.Errorf("expected per_page 100, got %d", config.Discogs.PerPage)
		}

		if config.Discogs.Timeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", config.Discogs.Timeout())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[credentials.discogs]
user_id = "digger"
token = "abc123"

[discogs]
timeout_seconds = 5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Credentials.Discogs.UserID != "digger" {
			t.Errorf("expected user_id digger, got %s", config.Credentials.Discogs.UserID)
		}
		if config.Discogs.Timeout() != 5*time.Second {
			t.Errorf("expected 5s timeout, got %v", config.Discogs.Timeout())
		}
		if config.Discogs.PerPage != 100 {
			t.Errorf("expected per_page to keep default 100, got %d", config.Discogs.PerPage)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		body := "MIXTAPE_DISCOGS_TOKEN=from-dotenv\nMIXTAPE_DISCOGS_USER_ID=dotenv-user\n"
		if err := os.WriteFile(envPath, []byte(body), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Setenv(EnvDiscogsUserID, "env-user")
		t.Setenv(EnvDiscogsToken, "")
		t.Setenv(EnvDatabasePath, "")

		config := DefaultConfig()
		if err := config.ApplyEnv(envPath); err != nil {
			t.Fatalf("ApplyEnv failed: %v", err)
		}

		if config.Credentials.Discogs.UserID != "env-user" {
			t.Errorf("expected process variable to win, got %s", config.Credentials.Discogs.UserID)
		}
		if config.Credentials.Discogs.Token != "from-dotenv" {
			t.Errorf("expected empty variable to fall back to .env, got %s", config.Credentials.Discogs.Token)
		}
		if config.Database.Path != "./mixtape.db" {
			t.Errorf("expected database path to be unchanged, got %s", config.Database.Path)
		}
	})

	t.Run("ApplyEnv Missing File", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("missing .env should be ignored, got %v", err)
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Credentials.Discogs = DiscogsCredentials{UserID: "digger", Token: "abc"}
		config.Server.Port = 8080

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if loaded.Credentials.Discogs.UserID != "digger" || loaded.Server.Port != 8080 {
			t.Errorf("expected saved values, got %+v", loaded)
		}

		if err := SaveConfig(path, nil); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for nil config, got %v", err)
		}
		if err := SaveConfig(filepath.Join(t.TempDir(), "missing", "config.toml"), config); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestDiscogsCredentials(t *testing.T) {
	tt := []struct {
		name    string
		creds   DiscogsCredentials
		wantErr bool
	}{
		{name: "valid", creds: DiscogsCredentials{UserID: "digger", Token: "abc"}},
		{name: "missing user", creds: DiscogsCredentials{Token: "abc"}, wantErr: true},
		{name: "missing token", creds: DiscogsCredentials{UserID: "digger"}, wantErr: true},
		{name: "template placeholders", creds: DefaultConfig().Credentials.Discogs, wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.creds.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestLoadLegacyCredentials(t *testing.T) {
	t.Run("reads simple_discogs.conf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "simple_discogs.conf")
		body := `{"discogs_user_id": "digger", "discogs_user_token": "abc123"}`
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("failed to write credentials: %v", err)
		}

		creds, err := LoadLegacyCredentials(path)
		if err != nil {
			t.Fatalf("LoadLegacyCredentials failed: %v", err)
		}
		if creds.UserID != "digger" || creds.Token != "abc123" {
			t.Errorf("unexpected credentials: %+v", creds)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "simple_discogs.conf")
		if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
			t.Fatalf("failed to write credentials: %v", err)
		}

		if _, err := LoadLegacyCredentials(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
