package store

import (
	"sync"

	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/rules"
)

// MockCategoryStore is an in-memory store for testing.
type MockCategoryStore struct {
	Categories []models.Category
	Rules      *rules.Table
	Overrides  []models.UserOverride
	Guidelines []string

	// Error flags for testing error conditions
	LoadCategoriesError   error
	LoadKeywordRulesError error
	LoadOverridesError    error
	SaveOverridesError    error

	mu        sync.Mutex
	saveCalls int
}

// LoadCategories returns the mock categories.
func (m *MockCategoryStore) LoadCategories() ([]models.Category, error) {
	if m.LoadCategoriesError != nil {
		return nil, m.LoadCategoriesError
	}
	out := make([]models.Category, len(m.Categories))
	copy(out, m.Categories)
	return out, nil
}

// LoadKeywordRules returns the mock rules, or the embedded default when none are set.
func (m *MockCategoryStore) LoadKeywordRules() (*rules.Table, error) {
	if m.LoadKeywordRulesError != nil {
		return nil, m.LoadKeywordRulesError
	}
	if m.Rules == nil {
		return rules.Default()
	}
	return m.Rules, nil
}

// LoadOverrides returns a copy of the mock overrides.
func (m *MockCategoryStore) LoadOverrides() ([]models.UserOverride, error) {
	if m.LoadOverridesError != nil {
		return nil, m.LoadOverridesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.UserOverride, len(m.Overrides))
	copy(out, m.Overrides)
	return out, nil
}

// LoadGuidelines returns the mock guidelines.
func (m *MockCategoryStore) LoadGuidelines() ([]string, error) {
	if m.LoadOverridesError != nil {
		return nil, m.LoadOverridesError
	}
	return m.Guidelines, nil
}

// SaveOverrides replaces the mock overrides.
func (m *MockCategoryStore) SaveOverrides(overrides []models.UserOverride) error {
	if m.SaveOverridesError != nil {
		return m.SaveOverridesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Overrides = append([]models.UserOverride(nil), overrides...)
	m.saveCalls++
	return nil
}

// SaveCalls returns how many times SaveOverrides succeeded.
func (m *MockCategoryStore) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}
