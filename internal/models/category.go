// Package models provides the data structures used throughout the application.
package models

import (
	"fmt"
	"strings"
)

// CategoryType is the expected direction of money for a category.
type CategoryType string

const (
	CategoryTypeExpense  CategoryType = "expense"
	CategoryTypeIncome   CategoryType = "income"
	CategoryTypeTransfer CategoryType = "transfer"
)

// IsValid reports whether t is one of the known category types.
func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryTypeExpense, CategoryTypeIncome, CategoryTypeTransfer:
		return true
	}
	return false
}

// ParseCategoryType parses a case-insensitive category type.
func ParseCategoryType(s string) (CategoryType, error) {
	t := CategoryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown category type %q", s)
	}
	return t, nil
}

// Category is a user-defined category. Names are unique per user.
type Category struct {
	ID   string       `yaml:"id" json:"id"`
	Name string       `yaml:"name" json:"name"`
	Type CategoryType `yaml:"type" json:"type"`
}

// CategoriesConfig represents the structure of the categories YAML file
type CategoriesConfig struct {
	Categories []Category `yaml:"categories"`
}
