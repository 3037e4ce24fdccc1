package classifycategory

import "agri-marketplace/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"category"},
		Properties: map[string]validation.Property{
			"category": {
				Type:        "string",
				Description: "Free-text category as entered by the startup",
				MaxLength:   validation.IntPtr(500),
			},
		},
	}
}
