package categorizer

import (
	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/rules"
)

// CategoryStoreInterface is the persistence collaborator the engine reads
// its session data from.
type CategoryStoreInterface interface {
	LoadCategories() ([]models.Category, error)
	LoadKeywordRules() (*rules.Table, error)
	LoadOverrides() ([]models.UserOverride, error)
	LoadGuidelines() ([]string, error)
	SaveOverrides(overrides []models.UserOverride) error
}
