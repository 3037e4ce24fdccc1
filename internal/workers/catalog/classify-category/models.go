package classifycategory

import "agri-marketplace/internal/models"

type Input struct {
	Category string `json:"category"`
}

type Output struct {
	FocusAreas       []models.FocusArea `json:"focusAreas"`
	PrimaryFocusArea models.FocusArea   `json:"primaryFocusArea"`
}
