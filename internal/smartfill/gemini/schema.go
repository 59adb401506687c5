package gemini

// responseSchema constrains Gemini's JSON output to the smart-fill patch shape.
var responseSchema = map[string]interface{}{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"actions": map[string]interface{}{
			"type": "OBJECT",
			"properties": map[string]interface{}{
				"clearClient":  boolField("Set to true if user wants to clear/remove client details"),
				"clearItems":   boolField("Set to true if user wants to remove all line items"),
				"markAsUnpaid": boolField("Set to true if user wants to remove payment status or mark as unpaid"),
				"markAsPaid":   boolField("Set to true if user wants to mark invoice as paid"),
			},
		},
		"clientDetails": map[string]interface{}{
			"type": "OBJECT",
			"properties": map[string]interface{}{
				"name":    stringField("Client or Customer Name"),
				"address": stringField("Client Address"),
				"gstin":   stringField("Client GSTIN"),
				"phone":   stringField("Client Phone Number"),
			},
		},
		"items": map[string]interface{}{
			"type": "ARRAY",
			"items": map[string]interface{}{
				"type": "OBJECT",
				"properties": map[string]interface{}{
					"description": stringField("Description of the product or service"),
					"quantity":    numberField("Quantity sold"),
					"price":       numberField("The price or amount mentioned for the item"),
				},
				"required": []string{"description", "quantity", "price"},
			},
		},
	},
}

func boolField(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "BOOLEAN", "description": desc}
}

func stringField(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "STRING", "description": desc}
}

func numberField(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "NUMBER", "description": desc}
}
