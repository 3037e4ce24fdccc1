// Package taxonomy holds the fixed focus-area table used to group catalog
// categories for browsing, and the classifier that maps free-text catalog
// categories onto it.
package taxonomy

import (
	"fmt"
	"strings"

	"agri-marketplace/internal/models"
)

// OtherID is the sentinel focus area for categories with no mapping.
const OtherID = "other"

// Mapping binds a raw catalog category to one or more focus-area ids.
type Mapping struct {
	Category string
	AreaIDs  []string
}

type mappingEntry struct {
	key     string
	lowered string
	areas   []models.FocusArea
}

// Taxonomy is immutable once built.
type Taxonomy struct {
	areas         []models.FocusArea
	byID          map[string]models.FocusArea
	mappings      []mappingEntry
	exact         map[string]int
	iconOverrides map[string]string
}

// New validates and indexes a taxonomy. Mapping order is preserved and is the
// tie-break order for fuzzy matches.
func New(areas []models.FocusArea, mappings []Mapping, iconOverrides map[string]string) (*Taxonomy, error) {
	t := &Taxonomy{
		areas:         make([]models.FocusArea, 0, len(areas)),
		byID:          make(map[string]models.FocusArea, len(areas)),
		mappings:      make([]mappingEntry, 0, len(mappings)),
		exact:         make(map[string]int, len(mappings)),
		iconOverrides: make(map[string]string, len(iconOverrides)),
	}

	for _, fa := range areas {
		if fa.ID == "" {
			return nil, fmt.Errorf("focus area with empty id")
		}
		if _, dup := t.byID[fa.ID]; dup {
			return nil, fmt.Errorf("duplicate focus area %q", fa.ID)
		}
		t.byID[fa.ID] = fa
		t.areas = append(t.areas, fa)
	}
	if _, ok := t.byID[OtherID]; !ok {
		return nil, fmt.Errorf("taxonomy must define the %q focus area", OtherID)
	}

	for _, m := range mappings {
		if len(m.AreaIDs) == 0 {
			return nil, fmt.Errorf("category %q maps to no focus areas", m.Category)
		}
		if _, dup := t.exact[m.Category]; dup {
			return nil, fmt.Errorf("duplicate category mapping %q", m.Category)
		}
		entry := mappingEntry{key: m.Category, lowered: strings.ToLower(m.Category)}
		for _, id := range m.AreaIDs {
			fa, ok := t.byID[id]
			if !ok {
				return nil, fmt.Errorf("category %q references unknown focus area %q", m.Category, id)
			}
			entry.areas = append(entry.areas, fa)
		}
		t.exact[m.Category] = len(t.mappings)
		t.mappings = append(t.mappings, entry)
	}

	for k, v := range iconOverrides {
		t.iconOverrides[k] = v
	}
	return t, nil
}

// MustNew is New that panics; used for the built-in table.
func MustNew(areas []models.FocusArea, mappings []Mapping, iconOverrides map[string]string) *Taxonomy {
	t, err := New(areas, mappings, iconOverrides)
	if err != nil {
		panic(err)
	}
	return t
}

// FocusAreas returns every focus area in table order.
func (t *Taxonomy) FocusAreas() []models.FocusArea {
	out := make([]models.FocusArea, len(t.areas))
	copy(out, t.areas)
	return out
}

// Lookup returns the focus area with the given id.
func (t *Taxonomy) Lookup(id string) (models.FocusArea, bool) {
	fa, ok := t.byID[id]
	return fa, ok
}

// Categories returns the known raw category keys in mapping order.
func (t *Taxonomy) Categories() []string {
	out := make([]string, 0, len(t.mappings))
	for _, m := range t.mappings {
		out = append(out, m.key)
	}
	return out
}

func (t *Taxonomy) other() models.FocusArea {
	return t.byID[OtherID]
}
