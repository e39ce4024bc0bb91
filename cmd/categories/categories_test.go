package categories

import (
	"bytes"
	"testing"

	"fjacquet/txcat/cmd/root"
	"fjacquet/txcat/internal/config"
	"fjacquet/txcat/internal/container"
	"fjacquet/txcat/internal/logging"
	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, s *store.MockCategoryStore) {
	t.Helper()
	c, err := container.NewContainer(&config.Config{},
		container.WithLogger(logging.NewMockLogger()),
		container.WithStore(s),
		container.WithCompletionClient(nil))
	require.NoError(t, err)
	root.SetContainer(c)
	t.Cleanup(func() { root.SetContainer(nil) })
}

func run(t *testing.T) (string, error) {
	t.Helper()
	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetArgs(nil)
	err := Cmd.Execute()
	return out.String(), err
}

func TestCategories_List(t *testing.T) {
	setup(t, &store.MockCategoryStore{Categories: []models.Category{
		{Name: "Groceries", Type: models.CategoryTypeExpense},
		{Name: "Pets", Type: models.CategoryTypeExpense},
		{Name: "Salary", Type: models.CategoryTypeIncome},
	}})

	out, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries                expense   6 keywords\n")
	assert.Contains(t, out, "Pets                     expense   no keyword rule\n")
	assert.Contains(t, out, "Salary                   income    3 keywords\n")
}

func TestCategories_Empty(t *testing.T) {
	setup(t, &store.MockCategoryStore{})

	out, err := run(t)
	require.NoError(t, err)
	assert.Equal(t, "No categories configured\n", out)
}

func TestCategories_DuplicateNames(t *testing.T) {
	setup(t, &store.MockCategoryStore{Categories: []models.Category{
		{Name: "Pets", Type: models.CategoryTypeExpense},
		{Name: "PETS", Type: models.CategoryTypeExpense},
	}})

	_, err := run(t)
	assert.Error(t, err)
}

func TestCategories_NoContainer(t *testing.T) {
	root.SetContainer(nil)
	_, err := run(t)
	assert.ErrorContains(t, err, "container not initialized")
}
