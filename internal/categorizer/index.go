package categorizer

import (
	"fmt"
	"strings"

	"fjacquet/txcat/internal/apperrors"
	"fjacquet/txcat/internal/models"
)

// CategoryIndex maps lowercased category names to the user's categories.
// It is built once per session and never mutated afterwards.
type CategoryIndex struct {
	byName  map[string]models.Category
	ordered []models.Category
}

// NewCategoryIndex builds an index. Names are compared ignoring case and
// surrounding space; a collision is a configuration error.
func NewCategoryIndex(categories []models.Category) (*CategoryIndex, error) {
	idx := &CategoryIndex{
		byName:  make(map[string]models.Category, len(categories)),
		ordered: make([]models.Category, 0, len(categories)),
	}

	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, &apperrors.ConfigError{Key: "category.name", Value: c.ID, Reason: "category name is empty"}
		}
		if !c.Type.IsValid() {
			return nil, &apperrors.ConfigError{Key: "category.type", Value: c.Type, Reason: fmt.Sprintf("category %q has an unknown type", name)}
		}

		key := indexKey(name)
		if existing, dup := idx.byName[key]; dup {
			return nil, &apperrors.DuplicateCategoryError{Name: name, Existing: existing.Name}
		}

		c.Name = name
		idx.byName[key] = c
		idx.ordered = append(idx.ordered, c)
	}
	return idx, nil
}

func indexKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup finds a category by name, ignoring case.
func (i *CategoryIndex) Lookup(name string) (models.Category, bool) {
	if i == nil {
		return models.Category{}, false
	}
	c, ok := i.byName[indexKey(name)]
	return c, ok
}

// Len returns the number of categories.
func (i *CategoryIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.ordered)
}

// Categories returns the categories in load order.
func (i *CategoryIndex) Categories() []models.Category {
	if i == nil {
		return nil
	}
	out := make([]models.Category, len(i.ordered))
	copy(out, i.ordered)
	return out
}

// Candidates returns the categories an LLM may pick for a transaction going
// in the given direction: the ones of that type plus every transfer category.
func (i *CategoryIndex) Candidates(direction models.CategoryType) []models.Category {
	return i.filter(direction, models.CategoryTypeTransfer)
}

// Names returns the names of the categories whose type is one of types,
// in load order.
func (i *CategoryIndex) Names(types ...models.CategoryType) []string {
	matches := i.filter(types...)
	names := make([]string, len(matches))
	for n, c := range matches {
		names[n] = c.Name
	}
	return names
}

func (i *CategoryIndex) filter(types ...models.CategoryType) []models.Category {
	if i == nil {
		return nil
	}
	var out []models.Category
	for _, c := range i.ordered {
		for _, t := range types {
			if c.Type == t {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
