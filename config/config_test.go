package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coursegate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "{}")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %s, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "coursegate.db" {
		t.Errorf("DSN = %s, want coursegate.db", cfg.Database.DSN)
	}
	if cfg.Plans.Mode != "static" {
		t.Errorf("Plans.Mode = %s, want static", cfg.Plans.Mode)
	}
	if cfg.Events.Buffer != 256 {
		t.Errorf("Events.Buffer = %d, want 256", cfg.Events.Buffer)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %s, want info", cfg.Logging.Level)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %s, want /metrics", cfg.Metrics.Path)
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
database:
  driver: memory
plans:
  mode: static
  pro_users:
    - alice
    - bob
events:
  enabled: true
  buffer: 64
logging:
  level: debug
  format: console
metrics:
  enabled: true
  path: /internal/metrics
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("server = %s:%d, want 127.0.0.1:9090", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("Driver = %s, want memory", cfg.Database.Driver)
	}
	if len(cfg.Plans.ProUsers) != 2 || cfg.Plans.ProUsers[0] != "alice" {
		t.Errorf("ProUsers = %v, want [alice bob]", cfg.Plans.ProUsers)
	}
	if !cfg.Events.Enabled || cfg.Events.Buffer != 64 {
		t.Errorf("events = %+v, want enabled with buffer 64", cfg.Events)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Metrics.Path != "/internal/metrics" {
		t.Errorf("Metrics.Path = %s, want /internal/metrics", cfg.Metrics.Path)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/var/lib/coursegate.db")
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: ${TEST_DB_PATH}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "/var/lib/coursegate.db" {
		t.Errorf("DSN = %s, want /var/lib/coursegate.db", cfg.Database.DSN)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("COURSEGATE_SERVER_PORT", "9999")
	t.Setenv("COURSEGATE_PLANS_PRO_USERS", "carol, dave")
	path := writeConfig(t, `
server:
  port: 8080
plans:
  mode: static
  pro_users:
    - alice
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if len(cfg.Plans.ProUsers) != 2 || cfg.Plans.ProUsers[0] != "carol" || cfg.Plans.ProUsers[1] != "dave" {
		t.Errorf("ProUsers = %v, want [carol dave]", cfg.Plans.ProUsers)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/coursegate.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for unknown driver")
	}
}

func TestLoad_InvalidPlanMode(t *testing.T) {
	path := writeConfig(t, `
plans:
  mode: oracle
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for unknown plan mode")
	}
}

func TestLoad_RemoteModeRequiresURL(t *testing.T) {
	path := writeConfig(t, `
plans:
  mode: remote
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for remote mode without URL")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: loud
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for unknown log level")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COURSEGATE_DATABASE_DRIVER", "memory")
	t.Setenv("COURSEGATE_LOG_LEVEL", "warn")
	t.Setenv("COURSEGATE_EVENTS_ENABLED", "yes")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("load from env: %v", err)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("Driver = %s, want memory", cfg.Database.Driver)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %s, want warn", cfg.Logging.Level)
	}
	if !cfg.Events.Enabled {
		t.Errorf("Events.Enabled should be true")
	}
	// Defaults still apply for everything unset.
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadWithFallback(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 7070
`)

	cfg, err := LoadWithFallback(path)
	if err != nil {
		t.Fatalf("load with fallback: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070 from file", cfg.Server.Port)
	}

	cfg, err = LoadWithFallback(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("fallback to env: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "1", "yes", "on", " TRUE "}
	for _, v := range truthy {
		if !parseBool(v) {
			t.Errorf("parseBool(%q) = false, want true", v)
		}
	}
	falsy := []string{"false", "0", "no", "off", ""}
	for _, v := range falsy {
		if parseBool(v) {
			t.Errorf("parseBool(%q) = true, want false", v)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("alice, bob ,,carol")
	if len(got) != 3 || got[0] != "alice" || got[1] != "bob" || got[2] != "carol" {
		t.Errorf("splitList = %v, want [alice bob carol]", got)
	}
}
