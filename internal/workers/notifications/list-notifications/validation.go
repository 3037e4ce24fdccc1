package listnotifications

import "agri-marketplace/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"limit": {
				Type:        "integer",
				Description: "Maximum number of events to return; capped by the ledger",
				Minimum:     validation.FloatPtr(1),
			},
		},
	}
}
