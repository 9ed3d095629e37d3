package folio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BackendURL != "http://localhost:3000" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if !cfg.AutoRecognize || !cfg.Prefetch {
		t.Error("auto recognition and prefetch should default on")
	}
	if cfg.AutosaveDelayMS != 800 {
		t.Errorf("AutosaveDelayMS = %d, want 800", cfg.AutosaveDelayMS)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	data := []byte("backend_url: http://ocr.internal:9000\nprefetch: false\nautosave_delay_ms: 250\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BackendURL != "http://ocr.internal:9000" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.Prefetch {
		t.Error("prefetch override not applied")
	}
	if cfg.AutosaveDelayMS != 250 {
		t.Errorf("AutosaveDelayMS = %d, want 250", cfg.AutosaveDelayMS)
	}
	// Untouched keys keep their defaults.
	if !cfg.AutoRecognize {
		t.Error("AutoRecognize default lost")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("want error for missing file")
	}
}
