package folio

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vorojar/Folio-OCR/backend"
)

// Config holds all configuration for the session controller.
type Config struct {
	// BackendURL is the recognition backend's base URL.
	BackendURL string `json:"backend_url" yaml:"backend_url"`

	// Timeout budgets per call class, in milliseconds. Zero values take
	// the backend client defaults (status short, OCR long, model load
	// very long).
	StatusTimeoutMS  int `json:"status_timeout_ms" yaml:"status_timeout_ms"`
	OCRTimeoutMS     int `json:"ocr_timeout_ms" yaml:"ocr_timeout_ms"`
	LoadTimeoutMS    int `json:"load_timeout_ms" yaml:"load_timeout_ms"`
	RequestTimeoutMS int `json:"request_timeout_ms" yaml:"request_timeout_ms"`

	// AutosaveDelayMS is the debounce quiet period for page edits.
	AutosaveDelayMS int `json:"autosave_delay_ms" yaml:"autosave_delay_ms"`

	// AutoRecognize issues OCR for a page when it becomes active and has
	// no recognized text yet.
	AutoRecognize bool `json:"auto_recognize" yaml:"auto_recognize"`

	// Prefetch enables speculative OCR of the page following a
	// successful manual recognition.
	Prefetch bool `json:"prefetch" yaml:"prefetch"`

	// MirrorPath, when set, opens a local sqlite mirror of documents and
	// page texts at this path.
	MirrorPath string `json:"mirror_path" yaml:"mirror_path"`
}

// DefaultConfig returns the defaults for a local backend.
func DefaultConfig() Config {
	return Config{
		BackendURL:      "http://localhost:3000",
		AutosaveDelayMS: 800,
		AutoRecognize:   true,
		Prefetch:        true,
	}
}

// LoadConfig reads a yaml config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// backendConfig converts the flat millisecond fields into the client's
// per-class budgets.
func (c Config) backendConfig() backend.Config {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return backend.Config{
		BaseURL:        c.BackendURL,
		StatusTimeout:  ms(c.StatusTimeoutMS),
		OCRTimeout:     ms(c.OCRTimeoutMS),
		LoadTimeout:    ms(c.LoadTimeoutMS),
		RequestTimeout: ms(c.RequestTimeoutMS),
	}
}

func (c Config) autosaveDelay() time.Duration {
	return time.Duration(c.AutosaveDelayMS) * time.Millisecond
}
