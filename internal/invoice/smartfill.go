package invoice

import (
	"smartinvoice/internal/domain"
	"smartinvoice/internal/gst"
)

// ApplySmartFillPatch merges a smart-fill patch into a copy of current and
// returns the copy; current is never modified. The steps run in a fixed order:
// client clear, items clear, paid flag (markAsPaid wins over markAsUnpaid),
// client detail fallback merge, then item append.
func ApplySmartFillPatch(current *domain.InvoiceData, patch *domain.SmartFillPatch) *domain.InvoiceData {
	next := current.Clone()
	if patch == nil {
		return next
	}

	if a := patch.Actions; a != nil {
		if a.ClearClient {
			next.ClientName = ""
			next.ClientAddress = ""
			next.ClientEmail = ""
			next.ClientPhone = ""
			next.ClientGSTIN = NotApplicable
			next.ClientStateCode = ""
		}
		if a.ClearItems {
			next.Items = []domain.LineItem{}
		}
		if a.MarkAsUnpaid {
			next.IsPaid = false
		}
		if a.MarkAsPaid {
			next.IsPaid = true
		}
	}

	if c := patch.ClientDetails; c != nil {
		next.ClientName = firstNonEmpty(c.Name, next.ClientName)
		next.ClientAddress = firstNonEmpty(c.Address, next.ClientAddress)
		next.ClientGSTIN = firstNonEmpty(c.GSTIN, next.ClientGSTIN)
		next.ClientPhone = firstNonEmpty(c.Phone, next.ClientPhone)
	}

	if len(patch.Items) > 0 {
		rate := next.TaxRate
		if rate == 0 {
			rate = DefaultTaxRate
		}
		for _, in := range patch.Items {
			next.Items = append(next.Items, domain.LineItem{
				ID:          newItemID(),
				Description: in.Description,
				Quantity:    in.Quantity,
				Unit:        DefaultUnit,
				Price:       gst.RateFromInclusiveTotal(in.Price, in.Quantity, rate),
			})
		}
	}

	return next
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
