package placeorder

import "agri-marketplace/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"productName", "quantity", "total", "buyer"},
		Properties: map[string]validation.Property{
			"catalogRecordId": {
				Type:        "string",
				Description: "Catalog record being ordered; the product name is matched when absent",
			},
			"productName": {
				Type:        "string",
				Description: "Product name at checkout",
				MinLength:   validation.IntPtr(1),
			},
			"quantity": {
				Type:        "integer",
				Description: "Units ordered",
				Minimum:     validation.FloatPtr(1),
			},
			"total": {
				Description: "Order total as a number or decimal string",
			},
			"shippingAddress": {
				Type:        "string",
				Description: "Delivery address",
			},
			"buyer": {
				Type:     "object",
				Required: []string{"name"},
				Properties: map[string]validation.Property{
					"name":  {Type: "string", MinLength: validation.IntPtr(1)},
					"phone": {Type: "string"},
					"email": {Type: "string"},
				},
			},
		},
	}
}
