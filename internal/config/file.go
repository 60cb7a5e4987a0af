package config

import (
	"fmt"
	"path/filepath"

	"github.com/nao1215/pdftagdiff/internal/model"
)

// Pair is one document pair of batch mode.
type Pair struct {
	// Doc1 is the first (usually older) document.
	Doc1 string `yaml:"doc1"`

	// Doc2 is the second document.
	Doc2 string `yaml:"doc2"`

	// Output overrides the output directory for this pair.
	Output string `yaml:"output,omitempty"`
}

// File represents the structure of the .pdftagdiff configuration file.
// Pointer fields distinguish "not set" from the zero value so that only
// keys present in the file override the defaults.
type File struct {
	// Tags are the tag substrings to search for.
	Tags []string `yaml:"tags,omitempty"`

	// Output is the base output directory.
	Output string `yaml:"output,omitempty"`

	// Annotate enables highlighted copies.
	Annotate *bool `yaml:"annotate,omitempty"`

	// Format is the report format: text, json or markdown.
	Format string `yaml:"format,omitempty"`

	// Language selects the report labels: en or ru.
	Language string `yaml:"language,omitempty"`

	// Color is the highlight colour as "r,g,b" with components in [0, 1].
	Color string `yaml:"color,omitempty"`

	// Optimize enables optimized saving of annotated copies.
	Optimize *bool `yaml:"optimize,omitempty"`

	// History enables recording runs in the history database.
	History *bool `yaml:"history,omitempty"`

	// Concurrency is the number of pairs processed at once in batch mode.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Pairs lists the document pairs of batch mode.
	Pairs []Pair `yaml:"pairs,omitempty"`
}

// ResolvePaths makes relative document and output paths relative to dir,
// normally the directory holding the configuration file.
func (f *File) ResolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	f.Output = resolve(f.Output)
	for i := range f.Pairs {
		f.Pairs[i].Doc1 = resolve(f.Pairs[i].Doc1)
		f.Pairs[i].Doc2 = resolve(f.Pairs[i].Doc2)
		f.Pairs[i].Output = resolve(f.Pairs[i].Output)
	}
}

// Apply copies every value set in f into c.
func (c *Config) Apply(f *File) error {
	if f == nil {
		return nil
	}

	if len(f.Tags) > 0 {
		c.Tags = append([]string(nil), f.Tags...)
	}
	if f.Output != "" {
		c.OutputDir = f.Output
	}
	if f.Annotate != nil {
		c.Annotate = *f.Annotate
	}
	switch f.Format {
	case "", "text", "txt":
	case "json":
		c.JSONReport = true
	case "markdown", "md":
		c.MarkdownReport = true
	default:
		return fmt.Errorf("config file: unknown format %q", f.Format)
	}
	if f.Language != "" {
		c.Language = NormalizeLanguage(f.Language)
	}
	if f.Color != "" {
		color, err := model.ParseColor(f.Color)
		if err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		c.HighlightColor = color
	}
	if f.Optimize != nil {
		c.Optimize = *f.Optimize
	}
	if f.History != nil {
		c.SaveHistory = *f.History
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if len(f.Pairs) > 0 {
		c.Pairs = append([]Pair(nil), f.Pairs...)
	}
	return nil
}
