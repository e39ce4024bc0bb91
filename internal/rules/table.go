// Package rules holds the keyword rule table used by the deterministic matcher.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"fjacquet/txcat/internal/models"
	"fjacquet/txcat/internal/textutils"

	"gopkg.in/yaml.v3"
)

//go:embed default_keywords.yaml
var defaultKeywords []byte

// Rule lists the keywords that point at one category.
type Rule struct {
	Category string              `yaml:"category"`
	Type     models.CategoryType `yaml:"type"`
	Keywords []string            `yaml:"keywords"`
}

// Table is an ordered list of rules. Order decides ties during scoring.
// A Table is read-only once built and may be shared between sessions.
type Table struct {
	rules []Rule
}

type tableFile struct {
	Rules []Rule `yaml:"rules"`
}

// Default returns the table embedded in the binary.
func Default() (*Table, error) {
	return Parse(defaultKeywords)
}

// LoadFile reads a rule table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword rules: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML rule table. Keywords are canonicalized the same way as
// transaction text; empty and duplicate keywords are dropped. Category names
// must be unique ignoring case and types must be valid.
func Parse(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse keyword rules: %w", err)
	}
	return New(file.Rules)
}

// New builds a table from rules, applying the same checks as Parse.
func New(rules []Rule) (*Table, error) {
	seen := make(map[string]struct{}, len(rules))
	out := make([]Rule, 0, len(rules))

	for i, r := range rules {
		name := strings.TrimSpace(r.Category)
		if name == "" {
			return nil, fmt.Errorf("keyword rule %d has no category", i)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("keyword rule for %q is defined twice", name)
		}
		seen[key] = struct{}{}

		ruleType, err := models.ParseCategoryType(string(r.Type))
		if err != nil {
			return nil, fmt.Errorf("keyword rule %q: %w", name, err)
		}

		out = append(out, Rule{
			Category: name,
			Type:     ruleType,
			Keywords: canonicalKeywords(r.Keywords),
		})
	}
	return &Table{rules: out}, nil
}

func canonicalKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		c := textutils.Canonicalize(kw)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Rules returns the rules in table order. The slice must not be modified.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	return t.rules
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.Rules())
}

// Keywords returns the keywords for a category, ignoring case.
func (t *Table) Keywords(category string) ([]string, bool) {
	for _, r := range t.Rules() {
		if strings.EqualFold(r.Category, strings.TrimSpace(category)) {
			return r.Keywords, true
		}
	}
	return nil, false
}
