package report

import (
	"fmt"
	"strings"
)

// Labels are the human-readable strings of a report.
type Labels struct {
	// UniqueA heads the section listing tokens found only in the first
	// document.
	UniqueA string

	// UniqueB heads the section listing tokens found only in the second
	// document.
	UniqueB string

	// Pages prefixes the page list of each token.
	Pages string
}

// EnglishLabels returns the default labels.
func EnglishLabels() Labels {
	return Labels{
		UniqueA: "Unique tags in the first PDF",
		UniqueB: "Unique tags in the second PDF",
		Pages:   "Pages",
	}
}

// RussianLabels returns the labels of the reports produced by the original
// tool, for teams whose tooling parses them.
func RussianLabels() Labels {
	return Labels{
		UniqueA: "Уникальные теги в первом PDF",
		UniqueB: "Уникальные теги во втором PDF",
		Pages:   "Страницы",
	}
}

// LabelsFor returns the labels for a language code ("en" or "ru").
// An empty code selects English.
func LabelsFor(language string) (Labels, error) {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", "en":
		return EnglishLabels(), nil
	case "ru":
		return RussianLabels(), nil
	default:
		return Labels{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}
}
