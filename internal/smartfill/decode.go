package smartfill

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"smartinvoice/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type wireActions struct {
	ClearClient  bool `json:"clearClient"`
	ClearItems   bool `json:"clearItems"`
	MarkAsUnpaid bool `json:"markAsUnpaid"`
	MarkAsPaid   bool `json:"markAsPaid"`
}

type wireClient struct {
	Name    string `json:"name" validate:"max=200"`
	Address string `json:"address" validate:"max=1000"`
	GSTIN   string `json:"gstin" validate:"max=20"`
	Phone   string `json:"phone" validate:"max=40"`
}

type wireItem struct {
	Description *string  `json:"description" validate:"required,max=500"`
	Quantity    *float64 `json:"quantity" validate:"omitnil,gte=0"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0"`
}

// DecodePatch turns a provider's JSON text into a validated patch. The
// payload must be a JSON object. Each section is decoded on its own, so a
// malformed section is dropped without losing the others, and items missing
// any of description, quantity or price are dropped individually. Unknown
// keys are ignored.
func DecodePatch(text string) (*domain.SmartFillPatch, error) {
	raw := bytes.TrimSpace([]byte(stripCodeFence(text)))
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object, got %s", domain.ErrInvalidPatch, truncate(string(raw), 80))
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPatch, err)
	}

	patch := &domain.SmartFillPatch{}

	if rawActions, ok := sections["actions"]; ok {
		var a wireActions
		if json.Unmarshal(rawActions, &a) == nil && !isNull(rawActions) {
			patch.Actions = &domain.PatchActions{
				ClearClient:  a.ClearClient,
				ClearItems:   a.ClearItems,
				MarkAsUnpaid: a.MarkAsUnpaid,
				MarkAsPaid:   a.MarkAsPaid,
			}
		}
	}

	if rawClient, ok := sections["clientDetails"]; ok {
		var c wireClient
		if json.Unmarshal(rawClient, &c) == nil && !isNull(rawClient) && validate.Struct(c) == nil {
			patch.ClientDetails = &domain.PatchClient{
				Name:    strings.TrimSpace(c.Name),
				Address: strings.TrimSpace(c.Address),
				GSTIN:   strings.TrimSpace(c.GSTIN),
				Phone:   strings.TrimSpace(c.Phone),
			}
		}
	}

	if rawItems, ok := sections["items"]; ok {
		var items []json.RawMessage
		if json.Unmarshal(rawItems, &items) == nil {
			for _, rawItem := range items {
				if item, ok := decodeItem(rawItem); ok {
					patch.Items = append(patch.Items, item)
				}
			}
		}
	}

	return patch, nil
}

func decodeItem(raw json.RawMessage) (domain.PatchItem, bool) {
	var w wireItem
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.PatchItem{}, false
	}
	if err := validate.Struct(w); err != nil {
		return domain.PatchItem{}, false
	}
	if w.Quantity == nil || w.Price == nil {
		return domain.PatchItem{}, false
	}
	return domain.PatchItem{
		Description: *w.Description,
		Quantity:    *w.Quantity,
		Price:       *w.Price,
	}, true
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
