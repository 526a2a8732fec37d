package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.API.BaseURL != "http://localhost:3000/api" {
		t.Errorf("got base url %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutDuration() != 30*time.Second {
		t.Errorf("got timeout %v", cfg.API.TimeoutDuration())
	}
	if cfg.Store.Backend != StoreBackendFile {
		t.Errorf("got backend %q", cfg.Store.Backend)
	}
	if cfg.Notice.TTLDuration() != 3*time.Second {
		t.Errorf("got ttl %v", cfg.Notice.TTLDuration())
	}
}

func TestLoad_LayersOverDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shopfront.yaml", `
api:
  base_url: https://shop.example.com/api
  timeout: 10s
notice:
  ttl: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://shop.example.com/api" {
		t.Errorf("got base url %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutDuration() != 10*time.Second {
		t.Errorf("got timeout %v", cfg.API.TimeoutDuration())
	}
	if cfg.Notice.TTLDuration() != 5*time.Second {
		t.Errorf("got ttl %v", cfg.Notice.TTLDuration())
	}
	// Untouched sections keep defaults.
	if cfg.Store.Backend != StoreBackendFile {
		t.Errorf("got backend %q", cfg.Store.Backend)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shopfront.yaml", `
api:
  base_urll: typo
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shopfront.yaml", `
api:
  timeout: soon
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected invalid duration to be rejected")
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := writeFile(t, t.TempDir(), "shopfront.yaml", `
store:
  backend: redis
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected unknown backend to be rejected")
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != Default().API.BaseURL {
		t.Errorf("got %q", cfg.API.BaseURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(envAPIURL, "http://env.example/api")
	t.Setenv(envStorePath, "/tmp/env-creds.json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://env.example/api" {
		t.Errorf("got base url %q", cfg.API.BaseURL)
	}
	if cfg.Store.Path != "/tmp/env-creds.json" {
		t.Errorf("got store path %q", cfg.Store.Path)
	}
}

func TestDiscoverFrom_Precedence(t *testing.T) {
	cwd := t.TempDir()
	home := t.TempDir()

	homeCfg := filepath.Join(home, homeConfigDir, homeConfigName)
	if err := os.MkdirAll(filepath.Dir(homeCfg), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(homeCfg, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Only the home config exists.
	path, found, err := DiscoverFrom("", cwd, home)
	if err != nil || !found || path != homeCfg {
		t.Fatalf("got %q/%v/%v, want home config", path, found, err)
	}

	// A project config wins over the home config.
	projectCfg := writeFile(t, cwd, projectConfigName, "{}")
	path, found, err = DiscoverFrom("", cwd, home)
	if err != nil || !found || path != projectCfg {
		t.Fatalf("got %q/%v/%v, want project config", path, found, err)
	}

	// An explicit path wins over both.
	explicit := writeFile(t, t.TempDir(), "custom.yaml", "{}")
	path, found, err = DiscoverFrom(explicit, cwd, home)
	if err != nil || !found || path != explicit {
		t.Fatalf("got %q/%v/%v, want explicit path", path, found, err)
	}
}

func TestDiscoverFrom_ExplicitMissingIsError(t *testing.T) {
	_, _, err := DiscoverFrom(filepath.Join(t.TempDir(), "absent.yaml"), t.TempDir(), t.TempDir())
	if err == nil {
		t.Fatal("expected an error for a missing explicit path")
	}
}

func TestDiscoverFrom_NothingFound(t *testing.T) {
	path, found, err := DiscoverFrom("", t.TempDir(), t.TempDir())
	if err != nil || found || path != "" {
		t.Fatalf("got %q/%v/%v, want nothing", path, found, err)
	}
}
