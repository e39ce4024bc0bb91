package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/txcat/internal/apperrors"
	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)
}

// newTestCategoryStore returns a CategoryStore for tests with specific test paths
func newTestCategoryStore(dir string, logger logging.Logger) *CategoryStore {
	return NewCategoryStore(
		filepath.Join(dir, "categories.yaml"),
		filepath.Join(dir, "overrides.yaml"),
		"",
		logger,
	)
}

func TestLoadCategories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "categories.yaml"), `
categories:
  - id: "1"
    name: Groceries
    type: expense
  - id: "2"
    name: Salary
    type: Income
  - id: "3"
    name: Savings
    type: TRANSFER
`)
	store := newTestCategoryStore(dir, nil)

	categories, err := store.LoadCategories()
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, models.Category{ID: "1", Name: "Groceries", Type: models.CategoryTypeExpense}, categories[0])
	assert.Equal(t, models.CategoryTypeIncome, categories[1].Type)
	assert.Equal(t, models.CategoryTypeTransfer, categories[2].Type)
}

func TestLoadCategories_InvalidType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "categories.yaml"), "categories:\n  - name: Pets\n    type: hobby\n")

	_, err := newTestCategoryStore(dir, nil).LoadCategories()
	var cfgErr *apperrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "category.type", cfgErr.Key)
}

func TestLoadCategories_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "categories.yaml"), "categories: [oops")

	_, err := newTestCategoryStore(dir, nil).LoadCategories()
	var fileErr *apperrors.DataFileError
	require.True(t, errors.As(err, &fileErr))
	assert.Contains(t, fileErr.FilePath, "categories.yaml")
}

func TestMissingFilesYieldEmptyData(t *testing.T) {
	logger := logging.NewMockLogger()
	store := newTestCategoryStore(t.TempDir(), logger)

	categories, err := store.LoadCategories()
	require.NoError(t, err)
	assert.Empty(t, categories)

	overrides, err := store.LoadOverrides()
	require.NoError(t, err)
	assert.Empty(t, overrides)

	guidelines, err := store.LoadGuidelines()
	require.NoError(t, err)
	assert.Empty(t, guidelines)

	assert.True(t, logger.HasEntry("WARN", "Categories file not found, using empty data"))
	assert.True(t, logger.HasEntry("WARN", "Overrides file not found, using empty data"))
}

func TestLoadOverridesAndGuidelines(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "overrides.yaml"), `
overrides:
  - description: TESCO SUPERMARKET
    category: Household
  - merchant: Uber
    category: Transport
guidelines:
  - Coffee shops count as Restaurants
`)
	store := newTestCategoryStore(dir, nil)

	overrides, err := store.LoadOverrides()
	require.NoError(t, err)
	assert.Equal(t, []models.UserOverride{
		{Description: "TESCO SUPERMARKET", CategoryName: "Household"},
		{Merchant: "Uber", CategoryName: "Transport"},
	}, overrides)

	guidelines, err := store.LoadGuidelines()
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee shops count as Restaurants"}, guidelines)
}

func TestLoadOverrides_RejectsEmptyPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "overrides.yaml"), `
overrides:
  - description: rent
    category: Rent
  - category: Everything
`)

	_, err := newTestCategoryStore(dir, nil).LoadOverrides()
	var invalid *apperrors.InvalidOverrideError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Everything", invalid.CategoryName)
	assert.Contains(t, err.Error(), "override 2")
}

func TestSaveOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	writeFile(t, path, "overrides: []\nguidelines:\n  - keep me\n")
	store := newTestCategoryStore(dir, nil)

	err := store.SaveOverrides([]models.UserOverride{{Merchant: "Lidl", CategoryName: "Groceries"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved models.OverridesConfig
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, []models.UserOverride{{Merchant: "Lidl", CategoryName: "Groceries"}}, saved.Overrides)
	assert.Equal(t, []string{"keep me"}, saved.Guidelines)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(models.PermissionConfigFile), info.Mode().Perm())
}

func TestSaveOverrides_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "overrides.yaml")
	store := NewCategoryStore("", path, "", nil)

	require.NoError(t, store.SaveOverrides([]models.UserOverride{{Description: "rent", CategoryName: "Rent"}}))

	overrides, err := store.LoadOverrides()
	require.NoError(t, err)
	assert.Len(t, overrides, 1)
}

func TestSaveOverrides_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	store := newTestCategoryStore(dir, nil)

	err := store.SaveOverrides([]models.UserOverride{{CategoryName: "Rent"}})
	var invalid *apperrors.InvalidOverrideError
	assert.True(t, errors.As(err, &invalid))
	_, statErr := os.Stat(filepath.Join(dir, "overrides.yaml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoadKeywordRules(t *testing.T) {
	store := newTestCategoryStore(t.TempDir(), nil)
	table, err := store.LoadKeywordRules()
	require.NoError(t, err)
	assert.Greater(t, table.Len(), 0, "embedded default")

	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	writeFile(t, path, "rules:\n  - category: Pets\n    type: expense\n    keywords: [Vet, pet-shop]\n")
	store.KeywordsFile = path

	table, err = store.LoadKeywordRules()
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	keywords, ok := table.Keywords("pets")
	require.True(t, ok)
	assert.Equal(t, []string{"vet", "pet-shop"}, keywords)

	store.KeywordsFile = filepath.Join(dir, "missing.yaml")
	_, err = store.LoadKeywordRules()
	var fileErr *apperrors.DataFileError
	assert.True(t, errors.As(err, &fileErr))
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.yaml")
	writeFile(t, path, "categories: []")
	store := newTestCategoryStore(dir, nil)

	found, err := store.FindConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = store.FindConfigFile(filepath.Join(dir, "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = store.FindConfigFile("txcat-definitely-missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUpsertOverride(t *testing.T) {
	base := []models.UserOverride{{Description: "Tesco Supermarket", CategoryName: "Groceries"}}

	out, replaced := UpsertOverride(base, models.UserOverride{Description: "TESCO SUPERMARKET!", CategoryName: "Household"})
	assert.True(t, replaced)
	require.Len(t, out, 1)
	assert.Equal(t, "Household", out[0].CategoryName)
	assert.Equal(t, "Groceries", base[0].CategoryName, "input slice is not modified")

	out, replaced = UpsertOverride(base, models.UserOverride{Merchant: "Uber", CategoryName: "Transport"})
	assert.False(t, replaced)
	assert.Len(t, out, 2)
}

func TestMockCategoryStore(t *testing.T) {
	mock := &MockCategoryStore{Categories: []models.Category{{Name: "A", Type: models.CategoryTypeExpense}}}

	table, err := mock.LoadKeywordRules()
	require.NoError(t, err)
	assert.Greater(t, table.Len(), 0)

	require.NoError(t, mock.SaveOverrides([]models.UserOverride{{Merchant: "x", CategoryName: "A"}}))
	overrides, err := mock.LoadOverrides()
	require.NoError(t, err)
	assert.Len(t, overrides, 1)
	assert.Equal(t, 1, mock.SaveCalls())

	mock.LoadCategoriesError = errors.New("boom")
	_, err = mock.LoadCategories()
	assert.Error(t, err)
}
