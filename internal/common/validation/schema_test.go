package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func orderSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"productName", "quantity", "buyer"},
		Properties: map[string]Property{
			"productName": {Type: "string", MinLength: IntPtr(1)},
			"quantity":    {Type: "integer", Minimum: FloatPtr(1)},
			"status":      {Type: "string", Enum: []string{"placed", "shipped"}},
			"buyer": {
				Type:     "object",
				Required: []string{"name"},
				Properties: map[string]Property{
					"name":  {Type: "string", MinLength: IntPtr(1)},
					"email": {Type: "string", Format: "email"},
				},
			},
		},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name       string
		input      map[string]interface{}
		valid      bool
		errorField string
	}{
		{
			name: "valid with extra process variables",
			input: map[string]interface{}{
				"productName":   "Neem Oil",
				"quantity":      float64(2),
				"buyer":         map[string]interface{}{"name": "Asha", "email": "asha@farm.in"},
				"processTenant": "north",
			},
			valid: true,
		},
		{
			name:       "missing required top level",
			input:      map[string]interface{}{"productName": "x", "buyer": map[string]interface{}{"name": "a"}},
			errorField: "quantity",
		},
		{
			name: "missing nested required",
			input: map[string]interface{}{
				"productName": "x", "quantity": float64(1), "buyer": map[string]interface{}{},
			},
			errorField: "buyer.name",
		},
		{
			name: "quantity below minimum",
			input: map[string]interface{}{
				"productName": "x", "quantity": float64(0), "buyer": map[string]interface{}{"name": "a"},
			},
			errorField: "quantity",
		},
		{
			name: "enum violation",
			input: map[string]interface{}{
				"productName": "x", "quantity": float64(1), "buyer": map[string]interface{}{"name": "a"}, "status": "lost",
			},
			errorField: "status",
		},
		{
			name: "bad email format",
			input: map[string]interface{}{
				"productName": "x", "quantity": float64(1), "buyer": map[string]interface{}{"name": "a", "email": "nope"},
			},
			errorField: "buyer.email",
		},
		{
			name:       "nil input",
			input:      nil,
			errorField: "productName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, orderSchema())
			assert.Equal(t, tt.valid, result.Valid, result.GetErrorMessages())
			if !tt.valid {
				assert.True(t, result.HasErrors(tt.errorField), result.GetErrorMessages())
			}
		})
	}
}

func TestValidateEmailAndPhone(t *testing.T) {
	assert.True(t, ValidateEmail("grower@agri.co.in"))
	assert.False(t, ValidateEmail("grower@"))
	assert.True(t, ValidatePhone("+91 98765 43210"))
	assert.False(t, ValidatePhone("12345"))
}
