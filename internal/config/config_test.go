package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/pdftagdiff/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("annotation is enabled", func(t *testing.T) {
		t.Parallel()
		if !cfg.Annotate {
			t.Error("expected Annotate to be true")
		}
	})

	t.Run("history is enabled", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveHistory {
			t.Error("expected SaveHistory to be true")
		}
	})

	t.Run("default language is en", func(t *testing.T) {
		t.Parallel()
		if cfg.Language != "en" {
			t.Errorf("expected Language to be 'en', got %q", cfg.Language)
		}
	})

	t.Run("default highlight color is red", func(t *testing.T) {
		t.Parallel()
		if cfg.HighlightColor != model.Red {
			t.Errorf("expected red, got %v", cfg.HighlightColor)
		}
	})

	t.Run("default concurrency is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 2 {
			t.Errorf("expected Concurrency to be 2, got %d", cfg.Concurrency)
		}
	})

	t.Run("directories come from XDG", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputDir != XDGResultsDir() || !strings.HasPrefix(cfg.OutputDir, cfg.DBDir) {
			t.Errorf("unexpected directories: output=%q db=%q", cfg.OutputDir, cfg.DBDir)
		}
	})

	t.Run("default report format is text", func(t *testing.T) {
		t.Parallel()
		if cfg.ReportFormat() != "text" {
			t.Errorf("expected text, got %q", cfg.ReportFormat())
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Doc1Path = "rev1.pdf"
		cfg.Doc2Path = "rev2.pdf"
		cfg.Tags = []string{"UPS", "ШОП", "SW"}
		cfg.OutputDir = "/tmp/results"
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("same document on both sides", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.Doc2Path = "./" + cfg.Doc1Path
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("language case and spaces are ignored", func(t *testing.T) {
		t.Parallel()

		for _, lang := range []string{"RU", " en ", "Ru"} {
			cfg := validConfig()
			cfg.Language = lang
			if err := cfg.Validate(); err != nil {
				t.Errorf("Language %q: expected no error, got %v", lang, err)
			}
		}
	})

	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{name: "missing first document", modify: func(c *Config) { c.Doc1Path = "" }, want: ErrNoDocuments},
		{name: "missing second document", modify: func(c *Config) { c.Doc2Path = "" }, want: ErrNoDocuments},
		{name: "nil tags", modify: func(c *Config) { c.Tags = nil }, want: ErrNoTags},
		{name: "empty tag", modify: func(c *Config) { c.Tags = []string{"UPS", ""} }, want: ErrEmptyTag},
		{name: "empty output directory", modify: func(c *Config) { c.OutputDir = "" }, want: ErrNoOutputDir},
		{
			name:   "json and markdown together",
			modify: func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			want:   ErrConflictingReportFormats,
		},
		{
			name:   "color component above one",
			modify: func(c *Config) { c.HighlightColor = model.Color{R: 2} },
			want:   ErrInvalidColor,
		},
		{
			name:   "negative color component",
			modify: func(c *Config) { c.HighlightColor = model.Color{G: -0.1} },
			want:   ErrInvalidColor,
		},
		{name: "zero concurrency", modify: func(c *Config) { c.Concurrency = 0 }, want: ErrInvalidConcurrency},
		{name: "unknown language", modify: func(c *Config) { c.Language = "de" }, want: ErrUnknownLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigValidateBatch(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		cfg := NewConfig()
		cfg.Tags = []string{"UPS"}
		cfg.OutputDir = "/tmp/results"
		return cfg
	}

	t.Run("no pairs", func(t *testing.T) {
		t.Parallel()
		if err := base().ValidateBatch(); !errors.Is(err, ErrNoPairs) {
			t.Errorf("expected ErrNoPairs, got %v", err)
		}
	})

	t.Run("valid pairs", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Pairs = []Pair{{Doc1: "a1.pdf", Doc2: "a2.pdf"}, {Doc1: "b1.pdf", Doc2: "b2.pdf", Output: "/tmp/b"}}
		if err := cfg.ValidateBatch(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("invalid pair is reported with its position", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Pairs = []Pair{{Doc1: "a1.pdf", Doc2: "a2.pdf"}, {Doc1: "b1.pdf"}}

		err := cfg.ValidateBatch()
		if !errors.Is(err, ErrNoDocuments) {
			t.Fatalf("expected ErrNoDocuments, got %v", err)
		}
		if !strings.Contains(err.Error(), "pair 2") {
			t.Errorf("expected pair position in %q", err.Error())
		}
	})
}

func TestConfigForPair(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Tags = []string{"UPS"}
	cfg.OutputDir = "/out"
	cfg.Pairs = []Pair{{Doc1: "a.pdf", Doc2: "b.pdf"}}

	pc := cfg.ForPair(Pair{Doc1: "x.pdf", Doc2: "y.pdf", Output: "/other"})
	if pc.Doc1Path != "x.pdf" || pc.Doc2Path != "y.pdf" || pc.OutputDir != "/other" {
		t.Errorf("unexpected pair config: %+v", pc)
	}
	if pc.Pairs != nil {
		t.Error("expected pair config to carry no pairs")
	}

	pc.Tags[0] = "changed"
	if cfg.Tags[0] != "UPS" {
		t.Error("pair config shares tags with the parent")
	}

	if got := cfg.ForPair(Pair{Doc1: "x.pdf", Doc2: "y.pdf"}).OutputDir; got != "/out" {
		t.Errorf("expected inherited output dir, got %q", got)
	}
}

func TestConfigApply(t *testing.T) {
	t.Parallel()

	t.Run("overrides only keys that are set", func(t *testing.T) {
		t.Parallel()

		no := false
		cfg := NewConfig()
		err := cfg.Apply(&File{
			Tags:     []string{"UPS", "SW"},
			Annotate: &no,
			Format:   "markdown",
			Language: "ru",
			Color:    "0,0.5,1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Tags) != 2 || cfg.Annotate || !cfg.MarkdownReport || cfg.Language != "ru" {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.HighlightColor != (model.Color{R: 0, G: 0.5, B: 1}) {
			t.Errorf("unexpected color: %v", cfg.HighlightColor)
		}
		if !cfg.SaveHistory || cfg.Concurrency != DefaultConcurrency {
			t.Error("unset keys should keep defaults")
		}
	})

	t.Run("language is normalized", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := cfg.Apply(&File{Language: " RU"}); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		if cfg.Language != "ru" {
			t.Errorf("Language = %q, want ru", cfg.Language)
		}
	})

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Apply(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid color", func(t *testing.T) {
		t.Parallel()
		err := NewConfig().Apply(&File{Color: "red"})
		if !errors.Is(err, model.ErrInvalidColor) {
			t.Errorf("expected ErrInvalidColor, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Apply(&File{Format: "pdf"}); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.pdftagdiff")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".pdftagdiff")

		content := `tags:
  - UPS
  - ШОП
  - SW
output: results
annotate: true
language: ru
color: "1,0,0"
optimize: true
concurrency: 4
pairs:
  - doc1: docs/rev1.pdf
    doc2: /abs/rev2.pdf
  - doc1: a.pdf
    doc2: b.pdf
    output: /tmp/other
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cf.Tags) != 3 || cf.Tags[1] != "ШОП" {
			t.Errorf("unexpected tags: %v", cf.Tags)
		}
		if cf.Output != filepath.Join(tmpDir, "results") {
			t.Errorf("expected output resolved against config dir, got %q", cf.Output)
		}
		if cf.Optimize == nil || !*cf.Optimize {
			t.Error("expected optimize to be true")
		}
		if cf.Concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", cf.Concurrency)
		}
		if len(cf.Pairs) != 2 {
			t.Fatalf("expected 2 pairs, got %d", len(cf.Pairs))
		}
		if cf.Pairs[0].Doc1 != filepath.Join(tmpDir, "docs", "rev1.pdf") {
			t.Errorf("expected relative doc resolved, got %q", cf.Pairs[0].Doc1)
		}
		if cf.Pairs[0].Doc2 != "/abs/rev2.pdf" {
			t.Errorf("expected absolute doc kept, got %q", cf.Pairs[0].Doc2)
		}
		if cf.Pairs[1].Output != "/tmp/other" {
			t.Errorf("unexpected pair output %q", cf.Pairs[1].Output)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".pdftagdiff")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("tags: [UPS]"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte("tags: [UPS]"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		t.Chdir(dir)

		if result := FindConfigFile(""); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})
}
