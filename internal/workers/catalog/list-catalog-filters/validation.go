package listcatalogfilters

import "agri-marketplace/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"includeCounts": {
				Type:        "boolean",
				Description: "Attach per focus area record counts from the search index (default true)",
			},
		},
	}
}
