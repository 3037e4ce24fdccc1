package marknotificationread

import "agri-marketplace/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"notificationId"},
		Properties: map[string]validation.Property{
			"notificationId": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
			},
		},
	}
}
