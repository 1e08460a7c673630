package config

import "testing"

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvServerURL, "")

	cfg := Config{ServerURL: "http://chat.example:9000", Theme: "dark"}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvServerURL, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestEnvOverridesServerURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvServerURL, "http://override.example:8001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "http://override.example:8001" {
		t.Errorf("ServerURL = %q, want env override", cfg.ServerURL)
	}
}
