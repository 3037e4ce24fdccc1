package ingestcatalog

import "agri-marketplace/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"fileContent", "kind"},
		Properties: map[string]validation.Property{
			"fileContent": {
				Type:        "string",
				Description: "Uploaded file, base64 encoded",
				MinLength:   validation.IntPtr(1),
			},
			"kind": {
				Type:        "string",
				Description: "Declared file format: spreadsheet or text-table",
				MinLength:   validation.IntPtr(1),
			},
			"fileName": {
				Type:        "string",
				Description: "Original file name, for logging only",
			},
		},
	}
}
