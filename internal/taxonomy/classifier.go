package taxonomy

import (
	"strings"

	"agri-marketplace/internal/models"
)

// Classifier resolves free-text catalog categories to focus areas.
// It is a pure function layer over a Taxonomy.
type Classifier struct {
	tax *Taxonomy
}

func NewClassifier(tax *Taxonomy) *Classifier {
	if tax == nil {
		tax = Default
	}
	return &Classifier{tax: tax}
}

// Taxonomy returns the table the classifier reads from.
func (c *Classifier) Taxonomy() *Taxonomy {
	return c.tax
}

// Classify never returns an empty slice; unknown and blank categories
// resolve to the "other" focus area.
func (c *Classifier) Classify(raw string) []models.FocusArea {
	category := strings.TrimSpace(raw)
	if category == "" {
		return []models.FocusArea{c.tax.other()}
	}

	if idx, ok := c.tax.exact[category]; ok {
		return cloneAreas(c.tax.mappings[idx].areas)
	}

	needle := strings.ToLower(category)
	for _, m := range c.tax.mappings {
		if strings.Contains(needle, m.lowered) || strings.Contains(m.lowered, needle) {
			return cloneAreas(m.areas)
		}
	}

	return []models.FocusArea{c.tax.other()}
}

// Primary returns the display focus area for a category. An icon override
// registered for the exact, untrimmed input replaces the icon of the result.
func (c *Classifier) Primary(raw string) models.FocusArea {
	if strings.TrimSpace(raw) == "" {
		return c.tax.other()
	}

	primary := c.Classify(raw)[0]
	if icon, ok := c.tax.iconOverrides[raw]; ok {
		primary.Icon = icon
	}
	return primary
}

// Apply derives FocusAreas and PrimaryFocusArea from the record's category,
// overwriting whatever was there before.
func (c *Classifier) Apply(record *models.CatalogRecord) {
	record.FocusAreas = c.Classify(record.RawCategory)
	record.PrimaryFocusArea = c.Primary(record.RawCategory)
}

func cloneAreas(in []models.FocusArea) []models.FocusArea {
	out := make([]models.FocusArea, len(in))
	copy(out, in)
	return out
}
