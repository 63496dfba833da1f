package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigYAML = `# test config
database:
  host: db.local
  port: 5433
  user: pos
  password: secret
  database: restaurant_pos

rabbitmq:
  host: mq.local
  port: 5672
  user: guest
  password: guest

server:
  port: 8080
  shutdown_timeout: 5
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfigYAML), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTestConfig(t))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Host != "db.local" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "db.local")
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("database.port = %d, want 5433", cfg.Database.Port)
	}
	if cfg.RabbitMQ.Port != 5672 {
		t.Errorf("rabbitmq.port = %d, want 5672", cfg.RabbitMQ.Port)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DATABASE_HOST", "override.local")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(writeTestConfig(t))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Host != "override.local" {
		t.Errorf("database.host = %q, want env override", cfg.Database.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "h", Port: 5432, User: "u", Password: "p", Database: "d",
	}}
	want := "postgres://u:p@h:5432/d?sslmode=disable"
	if got := cfg.DatabaseURL(); got != want {
		t.Errorf("DatabaseURL() = %q, want %q", got, want)
	}
}
