package tunebridge

import "testing"

func TestLoadOrCreateConfigCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrCreateConfig(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateConfig failed: %v", err)
	}
	if cfg.NeutrinoPath != "" {
		t.Errorf("expected empty default NeutrinoPath, got %q", cfg.NeutrinoPath)
	}

	reloaded, err := LoadOrCreateConfig(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.NeutrinoPath != cfg.NeutrinoPath {
		t.Errorf("reloaded config mismatch: %+v vs %+v", reloaded, cfg)
	}
}

func TestConfigSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{NeutrinoPath: "/opt/backend"}
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := LoadOrCreateConfig(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateConfig failed: %v", err)
	}
	if reloaded.NeutrinoPath != "/opt/backend" {
		t.Errorf("NeutrinoPath = %q, want /opt/backend", reloaded.NeutrinoPath)
	}
}
