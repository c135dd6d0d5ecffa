package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.Addr != ":8080" || c.DBDriver != "sqlite" || c.DBPath != "najdeno.sqlite3" {
		t.Errorf("unexpected defaults %+v", c)
	}
	if !c.ForceFoundOnScan || !c.NearbyInStore {
		t.Error("expected both behavior flags on by default")
	}
	if c.SMTPPort != 587 || c.MailTimeout != 10*time.Second {
		t.Errorf("unexpected mail defaults: port %d timeout %v", c.SMTPPort, c.MailTimeout)
	}
	if c.MailEnabled() || c.RedisEnabled() {
		t.Error("mail and redis should be off by default")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if c.DSN() != "najdeno.sqlite3" {
		t.Errorf("unexpected DSN %q", c.DSN())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	c, err := FromEnv(envMap(map[string]string{
		"NAJDENO_DB_DRIVER":           "postgres",
		"DATABASE_URL":                "postgres://u:p@localhost/najdeno",
		"NAJDENO_FORCE_FOUND_ON_SCAN": "false",
		"NAJDENO_NEARBY_IN_STORE":     "0",
		"SMTP_HOST":                   "smtp.example.com",
		"SMTP_PORT":                   "465",
		"REDIS_ADDR":                  "localhost:6379",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.ForceFoundOnScan || c.NearbyInStore {
		t.Error("expected both behavior flags off")
	}
	if !c.MailEnabled() || c.SMTPPort != 465 {
		t.Errorf("unexpected mail config %+v", c)
	}
	if !c.RedisEnabled() {
		t.Error("expected redis enabled")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if c.DSN() != "postgres://u:p@localhost/najdeno" {
		t.Errorf("unexpected DSN %q", c.DSN())
	}
}

func TestFromEnvInvalid(t *testing.T) {
	for _, env := range []map[string]string{
		{"SMTP_PORT": "abc"},
		{"SMTP_TIMEOUT": "soon"},
		{"NAJDENO_FORCE_FOUND_ON_SCAN": "maybe"},
		{"NAJDENO_NEARBY_IN_STORE": "perhaps"},
	} {
		if _, err := FromEnv(envMap(env)); err == nil {
			t.Errorf("expected error for %v", env)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite", Config{DBDriver: "sqlite", DBPath: "x.db", SMTPPort: 25}, false},
		{"sqlite without path", Config{DBDriver: "sqlite", SMTPPort: 25}, true},
		{"postgres without url", Config{DBDriver: "postgres", SMTPPort: 25}, true},
		{"unknown driver", Config{DBDriver: "mysql", SMTPPort: 25}, true},
		{"bad port", Config{DBDriver: "sqlite", DBPath: "x.db", SMTPPort: 70000}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("NAJDENO_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("NAJDENO_ADDR", "")
	os.Unsetenv("NAJDENO_ADDR")

	c, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":9999" {
		t.Errorf("expected addr from .env, got %q", c.Addr)
	}
}
