package sendverificationcode

import "agri-marketplace/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"email"},
		Properties: map[string]validation.Property{
			"email": {
				Type:        "string",
				Description: "Address the one-time code is mailed to",
				MinLength:   validation.IntPtr(3),
				MaxLength:   validation.IntPtr(254),
			},
		},
	}
}
