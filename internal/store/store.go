// Package store provides functionality for storing and retrieving application data.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/txcat/internal/apperrors"
	"fjacquet/txcat/internal/fileutils"
	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/rules"
	"fjacquet/txcat/internal/textutils"

	"gopkg.in/yaml.v3"
)

// Default file names, resolved with FindConfigFile.
const (
	DefaultCategoriesFile = "categories.yaml"
	DefaultOverridesFile  = "overrides.yaml"
)

// CategoryStore manages loading and saving of category data
type CategoryStore struct {
	CategoriesFile string
	OverridesFile  string
	// KeywordsFile is optional; empty means the embedded default rules.
	KeywordsFile string

	logger logging.Logger
}

// NewCategoryStore creates a new store for category-related data
func NewCategoryStore(categoriesFile, overridesFile, keywordsFile string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{
		CategoriesFile: categoriesFile,
		OverridesFile:  overridesFile,
		KeywordsFile:   keywordsFile,
		logger:         logging.OrNop(logger),
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if fileutils.FileExists(filename) {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "txcat", filename))
	}

	if location, ok := fileutils.FirstExisting(locations...); ok {
		return location, nil
	}
	return "", os.ErrNotExist
}

// readFile resolves and reads filename. A missing file returns nil data and
// the name it was looked up under.
func (s *CategoryStore) readFile(filename, what string) ([]byte, string, error) {
	path, err := s.FindConfigFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Warn(fmt.Sprintf("%s file not found, using empty data", what),
			logging.Field{Key: logging.FieldFile, Value: filename})
		return nil, filename, nil
	}
	if err != nil {
		return nil, filename, &apperrors.DataFileError{FilePath: filename, Err: err}
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, path, &apperrors.DataFileError{FilePath: path, Err: err}
	}
	return data, path, nil
}

// LoadCategories loads categories from the YAML file. Types are parsed
// case-insensitively.
func (s *CategoryStore) LoadCategories() ([]models.Category, error) {
	data, path, err := s.readFile(orDefault(s.CategoriesFile, DefaultCategoriesFile), "Categories")
	if err != nil || data == nil {
		return []models.Category{}, err
	}

	var cfg models.CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &apperrors.DataFileError{FilePath: path, Err: fmt.Errorf("error parsing categories: %w", err)}
	}

	for i := range cfg.Categories {
		t, err := models.ParseCategoryType(string(cfg.Categories[i].Type))
		if err != nil {
			return nil, &apperrors.ConfigError{Key: "category.type", Value: cfg.Categories[i].Type, Reason: fmt.Sprintf("category %q in %s: %v", cfg.Categories[i].Name, path, err)}
		}
		cfg.Categories[i].Type = t
	}

	s.logger.Debug("Loaded categories",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(cfg.Categories)})
	if cfg.Categories == nil {
		return []models.Category{}, nil
	}
	return cfg.Categories, nil
}

// LoadKeywordRules loads the keyword rule table, or the embedded default
// when no keywords file is configured.
func (s *CategoryStore) LoadKeywordRules() (*rules.Table, error) {
	if s.KeywordsFile == "" {
		return rules.Default()
	}
	path, err := s.FindConfigFile(s.KeywordsFile)
	if err != nil {
		return nil, &apperrors.DataFileError{FilePath: s.KeywordsFile, Err: err}
	}
	table, err := rules.LoadFile(path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Loaded keyword rules",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: table.Len()})
	return table, nil
}

func (s *CategoryStore) loadOverridesConfig() (models.OverridesConfig, string, error) {
	var cfg models.OverridesConfig
	data, path, err := s.readFile(orDefault(s.OverridesFile, DefaultOverridesFile), "Overrides")
	if err != nil || data == nil {
		return cfg, path, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, path, &apperrors.DataFileError{FilePath: path, Err: fmt.Errorf("error parsing overrides: %w", err)}
	}
	return cfg, path, nil
}

// LoadOverrides loads and validates user overrides. A single invalid rule
// fails the whole load since an empty pattern would match every transaction.
func (s *CategoryStore) LoadOverrides() ([]models.UserOverride, error) {
	cfg, path, err := s.loadOverridesConfig()
	if err != nil {
		return nil, err
	}
	for i, o := range cfg.Overrides {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("override %d in %s: %w", i+1, path, err)
		}
	}
	s.logger.Debug("Loaded overrides",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(cfg.Overrides)})
	return cfg.Overrides, nil
}

// LoadGuidelines loads the free-text guidelines kept in the overrides file.
func (s *CategoryStore) LoadGuidelines() ([]string, error) {
	cfg, _, err := s.loadOverridesConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Guidelines, nil
}

// SaveOverrides replaces the stored overrides. Guidelines already in the
// file are kept. When no file exists yet it is created under database/.
func (s *CategoryStore) SaveOverrides(overrides []models.UserOverride) error {
	for i, o := range overrides {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("override %d: %w", i+1, err)
		}
	}

	filename := orDefault(s.OverridesFile, DefaultOverridesFile)
	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		filePath = filename
		if !filepath.IsAbs(filename) {
			filePath = filepath.Join("database", filename)
		}
	}

	existing, _, err := s.loadOverridesConfig()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(models.OverridesConfig{Overrides: overrides, Guidelines: existing.Guidelines})
	if err != nil {
		return fmt.Errorf("error marshaling overrides: %w", err)
	}
	if err := fileutils.WriteFile(filePath, data, models.PermissionConfigFile); err != nil {
		return &apperrors.DataFileError{FilePath: filePath, Err: err}
	}

	s.logger.Debug("Saved overrides",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(overrides)})
	return nil
}

// UpsertOverride adds o to overrides, replacing the category of a rule with
// the same normalized patterns. It reports whether an existing rule changed.
func UpsertOverride(overrides []models.UserOverride, o models.UserOverride) ([]models.UserOverride, bool) {
	desc := textutils.Normalize(o.Description)
	merchant := textutils.Normalize(o.Merchant)
	for i, existing := range overrides {
		if textutils.Normalize(existing.Description) == desc && textutils.Normalize(existing.Merchant) == merchant {
			out := make([]models.UserOverride, len(overrides))
			copy(out, overrides)
			out[i].CategoryName = o.CategoryName
			return out, true
		}
	}
	return append(overrides, o), false
}

func orDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
