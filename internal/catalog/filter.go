package catalog

import (
	"github.com/kozaktomas/face-filter/internal/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is the overlay slot a filter targets.
type Category string

// Category constants name the overlay slots a filter can target.
const (
	CategoryHead  Category = "head"
	CategoryEyes  Category = "eyes"
	CategoryLips  Category = "lips"
	CategoryFace  Category = "face"
	CategoryFrame Category = "frame"
	CategoryAll   Category = "all"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryHead, CategoryEyes, CategoryLips, CategoryFace, CategoryFrame, CategoryAll}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Matches reports whether a filter of category c draws on the given layer.
func (c Category) Matches(layer Category) bool {
	return c == CategoryAll || c == layer
}

// FilterDefinition describes one overlay. Identifiers are not required to be unique.
type FilterDefinition struct {
	Identifier string   `json:"value" validate:"required"`
	Label      string   `json:"label"`
	ImageRef   string   `json:"image" validate:"required"`
	Category   Category `json:"category" validate:"required,oneof=head eyes lips face frame all"`
}

// DisplayLabel returns the label, or the identifier in title case when no label was given.
func (d FilterDefinition) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return cases.Title(language.English).String(d.Identifier)
}

// FromConfig converts the embedded built-in entries to definitions.
func FromConfig(cfg config.FiltersConfig) []FilterDefinition {
	defs := make([]FilterDefinition, 0, len(cfg.Filters))
	for _, f := range cfg.Filters {
		defs = append(defs, FilterDefinition{
			Identifier: f.Value,
			Label:      f.Label,
			ImageRef:   f.Image,
			Category:   Category(f.Category),
		})
	}
	return defs
}
