package smartfill

// BuildPrompt returns the extraction prompt for a free-form smart-fill request.
func BuildPrompt(text string) string {
	return `Extract invoice details or actions from this text.

Capabilities:
1. Extract Client/Customer details (Name, Address, GSTIN, Phone).
2. Extract Line items (Description, Quantity, Price).
3. Identify actions to clear data based on user intent:
   - "Clear client", "Remove customer", "Reset client" -> actions.clearClient = true
   - "Clear items", "Remove products", "Reset items" -> actions.clearItems = true
   - "Remove payment", "Not paid", "Clear payment details", "Mark as unpaid" -> actions.markAsUnpaid = true
   - "Mark as paid", "Paid" -> actions.markAsPaid = true

If a price or quantity is implied, use reasonable defaults.

Text: "` + text + `"`
}

// BuildPromptWithShape appends an explicit output contract for providers that
// cannot be given a response schema.
func BuildPromptWithShape(text string) string {
	return BuildPrompt(text) + `

Return ONLY a valid JSON object with no markdown formatting and no explanation. Every key is optional; omit what the text does not mention:
{
  "actions": {"clearClient": false, "clearItems": false, "markAsUnpaid": false, "markAsPaid": false},
  "clientDetails": {"name": "", "address": "", "gstin": "", "phone": ""},
  "items": [{"description": "", "quantity": 0, "price": 0}]
}
"price" is the amount mentioned for the item, including tax.`
}
