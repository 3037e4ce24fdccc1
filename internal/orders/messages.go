package orders

import (
	"fmt"
	"strings"
)

const (
	buyerSubject = "Order {{orderNumber}} confirmed"
	buyerBody    = "Hello {{buyerName}},\n\n" +
		"Thank you for your order {{orderNumber}}.\n" +
		"Product: {{productName}}\nQuantity: {{quantity}}\nTotal: {{total}}\n" +
		"Estimated delivery: {{estimatedDelivery}}\n"

	startupSubject = "New order {{orderNumber}} for {{productName}}"
	startupBody    = "Hello {{startupName}},\n\n" +
		"You have received a new order.\n" +
		"Order: {{orderNumber}}\nProduct: {{productName}}\nQuantity: {{quantity}}\nTotal: {{total}}\n" +
		"Buyer: {{buyerName}} ({{buyerPhone}})\nShip to: {{shippingAddress}}\n"

	startupSMS = "New order {{orderNumber}}: {{quantity}} x {{productName}}, total {{total}}. Buyer {{buyerName}} {{buyerPhone}}."

	ledgerMessage = "New order {{orderNumber}}: {{quantity}} x {{productName}} for {{startupName}} (total {{total}})"
)

// render substitutes {{key}} placeholders in one left-to-right pass over
// tmpl. Unknown keys render empty; substituted values are never rescanned.
func render(tmpl string, data map[string]interface{}) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(rest[start+2:], "}}")
		if end == -1 {
			break
		}
		b.WriteString(rest[:start])
		key := rest[start+2 : start+2+end]
		b.WriteString(stringify(data[key]))
		rest = rest[start+2+end+2:]
	}
	b.WriteString(rest)
	return b.String()
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
