// internal/models/catalog.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// IsZero reports whether no contact field is set.
func (c Contact) IsZero() bool {
	return c.Name == "" && c.Phone == "" && c.Email == ""
}

type Review struct {
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// CatalogRecord is a sellable item listed by a startup.
// FocusAreas and PrimaryFocusArea are derived by the taxonomy classifier
// from RawCategory and must not be assigned anywhere else.
type CatalogRecord struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	RawCategory      string          `json:"category"`
	FocusAreas       []FocusArea     `json:"focusAreas"`
	PrimaryFocusArea FocusArea       `json:"primaryFocusArea"`
	StartupName      string          `json:"startup"`
	Quantity         int             `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	Contact          Contact         `json:"contact"`
	Images           []string        `json:"images"`
	Reviews          []Review        `json:"reviews"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// FocusAreaIDs returns the ids of the derived focus areas in order.
func (r *CatalogRecord) FocusAreaIDs() []string {
	ids := make([]string, 0, len(r.FocusAreas))
	for _, fa := range r.FocusAreas {
		ids = append(ids, fa.ID)
	}
	return ids
}
