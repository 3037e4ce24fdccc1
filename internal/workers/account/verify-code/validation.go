package verifycode

import "agri-marketplace/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"email", "code"},
		Properties: map[string]validation.Property{
			"email": {
				Type:      "string",
				MinLength: validation.IntPtr(3),
			},
			"code": {
				Type:        "string",
				Description: "Six digit code from the verification email",
				Pattern:     `^\s*\d{6}\s*$`,
			},
		},
	}
}
