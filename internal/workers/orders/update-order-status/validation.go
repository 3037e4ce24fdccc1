package updateorderstatus

import "agri-marketplace/internal/common/validation"

// Status values are checked by the order service so that unknown values
// surface with the same error as any other caller.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"orderNumber", "status"},
		Properties: map[string]validation.Property{
			"orderNumber": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
			},
			"status": {
				Type:        "string",
				Description: "placed, processing, shipped, delivered or cancelled",
			},
		},
	}
}
