package models

import (
	"strings"

	"fjacquet/txcat/internal/apperrors"
)

// UserOverride forces a category for transactions whose description and/or
// merchant equal the given patterns after normalization.
//
// A rule with both patterns empty matches every transaction. The engine does
// not reject such rules; callers must run Validate before handing them over.
type UserOverride struct {
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
	Merchant     string `yaml:"merchant,omitempty" json:"merchant,omitempty"`
	CategoryName string `yaml:"category" json:"category"`
}

// Validate checks that the rule has a target and at least one pattern.
func (o UserOverride) Validate() error {
	if strings.TrimSpace(o.CategoryName) == "" {
		return &apperrors.InvalidOverrideError{Description: o.Description, Merchant: o.Merchant, Reason: "missing target category"}
	}
	if strings.TrimSpace(o.Description) == "" && strings.TrimSpace(o.Merchant) == "" {
		return &apperrors.InvalidOverrideError{CategoryName: o.CategoryName, Reason: "description and merchant are both empty"}
	}
	return nil
}

// OverridesConfig represents the structure of the overrides YAML file.
type OverridesConfig struct {
	Overrides  []UserOverride `yaml:"overrides"`
	Guidelines []string       `yaml:"guidelines,omitempty"`
}
