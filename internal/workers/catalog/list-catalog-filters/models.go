package listcatalogfilters

import "agri-marketplace/internal/models"

type Input struct {
	IncludeCounts bool `json:"includeCounts"`
}

type FocusAreaFilter struct {
	models.FocusArea
	Count *int `json:"count,omitempty"`
}

type Output struct {
	FocusAreas      []FocusAreaFilter `json:"focusAreas"`
	Categories      []string          `json:"categories"`
	Startups        []string          `json:"startups"`
	CountsAvailable bool              `json:"countsAvailable"`
}
