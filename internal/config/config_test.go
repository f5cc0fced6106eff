package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8081",
		ShutdownTimeout: 10 * time.Second,
		AuthRateLimit:   20,
		DataBackend:     "memory",
		SQLiteDBPath:    "./test.db",
		Currency:        "BDT",
		PasswordScheme:  "plaintext",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid memory backend config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name: "valid sqlite backend config",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.PasswordScheme = "bcrypt"
				c.LogFormat = "JSON"
				c.DefaultYear = 2026
			},
			wantErr: false,
		},
		{
			name:        "auth rate limit below one",
			mutate:      func(c *Config) { c.AuthRateLimit = 0 },
			wantErr:     true,
			errorString: "invalid auth rate limit 0: must be at least 1",
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [memory sqlite]",
		},
		{
			name: "sqlite backend missing database path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "unknown currency",
			mutate:      func(c *Config) { c.Currency = "XYZ" },
			wantErr:     true,
			errorString: "unknown currency 'XYZ'",
		},
		{
			name:        "invalid password scheme",
			mutate:      func(c *Config) { c.PasswordScheme = "md5" },
			wantErr:     true,
			errorString: "invalid password scheme 'md5'",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "trace" },
			wantErr:     true,
			errorString: "invalid log level 'trace'",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "negative default year",
			mutate:      func(c *Config) { c.DefaultYear = -1 },
			wantErr:     true,
			errorString: "invalid default year -1",
		},
		{
			name:        "shutdown timeout too short",
			mutate:      func(c *Config) { c.ShutdownTimeout = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid shutdown timeout 10ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.Currency = "???"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Count(err.Error(), "\n- ") != 2 {
		t.Fatalf("expected two aggregated problems, got %q", err.Error())
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "CURRENCY", "PASSWORD_SCHEME", "LOG_LEVEL", "LOG_FORMAT", "DEFAULT_YEAR", "SHUTDOWN_TIMEOUT", "DATA_DIR", "AUTH_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "memory" {
			t.Errorf("Load() DataBackend = %v, want memory", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/budget.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/budget.db", cfg.SQLiteDBPath)
		}
		if cfg.Currency != "BDT" {
			t.Errorf("Load() Currency = %v, want BDT", cfg.Currency)
		}
		if cfg.PasswordScheme != "plaintext" {
			t.Errorf("Load() PasswordScheme = %v, want plaintext", cfg.PasswordScheme)
		}
		if cfg.DefaultYear != 0 {
			t.Errorf("Load() DefaultYear = %v, want 0", cfg.DefaultYear)
		}
		if cfg.AuthRateLimit != 20 {
			t.Errorf("Load() AuthRateLimit = %v, want 20", cfg.AuthRateLimit)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults must validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "sqlite")
		t.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		t.Setenv("CURRENCY", "eur")
		t.Setenv("DEFAULT_YEAR", "2028")
		t.Setenv("SHUTDOWN_TIMEOUT", "3s")
		t.Setenv("AUTH_RATE_LIMIT", "5")

		cfg := Load()

		if cfg.AuthRateLimit != 5 {
			t.Errorf("Load() AuthRateLimit = %v, want 5", cfg.AuthRateLimit)
		}

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/test.db", cfg.SQLiteDBPath)
		}
		if cfg.Currency != "EUR" {
			t.Errorf("Load() Currency = %v, want EUR", cfg.Currency)
		}
		if cfg.DefaultYear != 2028 {
			t.Errorf("Load() DefaultYear = %v, want 2028", cfg.DefaultYear)
		}
		if cfg.ShutdownTimeout != 3*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 3s", cfg.ShutdownTimeout)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("DEFAULT_YEAR", "soon")
		t.Setenv("SHUTDOWN_TIMEOUT", "never")

		cfg := Load()

		if cfg.DefaultYear != 0 {
			t.Errorf("Load() DefaultYear = %v, want 0 (default for invalid input)", cfg.DefaultYear)
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 10s (default for invalid input)", cfg.ShutdownTimeout)
		}
	})
}

func TestConfig_Year(t *testing.T) {
	now := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := validConfig()
	if got := cfg.Year(now); got != 2027 {
		t.Errorf("Year() = %d, want 2027", got)
	}
	cfg.DefaultYear = 2030
	if got := cfg.Year(now); got != 2030 {
		t.Errorf("Year() = %d, want 2030", got)
	}
}
