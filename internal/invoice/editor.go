// Package invoice implements the invoice aggregate: construction with
// defaults, item editing, tax-inclusive reconciliation, smart-fill merging,
// derived totals and the simulated payment flow.
package invoice

import (
	"time"

	"github.com/google/uuid"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/gst"
)

const (
	// DefaultTaxRate is the combined rate (9% CGST + 9% SGST) used for new
	// invoices and when a smart-fill patch arrives with no rate set.
	DefaultTaxRate = 18
	// DefaultUnit labels new and smart-filled line items.
	DefaultUnit = "No"
	// NotApplicable is the sentinel printed for absent GSTIN/delivery place.
	NotApplicable = "NA"
	dateLayout    = "2006-01-02"
)

var newItemID = uuid.NewString

// Sender is the issuing business block copied onto every new invoice.
type Sender struct {
	Name      string
	Email     string
	Address   string
	GSTIN     string
	PAN       string
	CIN       string
	StateCode string
}

// New builds a fresh invoice with the given number and default field values.
func New(number string, sender Sender, taxRate float64, today time.Time) *domain.InvoiceData {
	if taxRate == 0 {
		taxRate = DefaultTaxRate
	}
	return &domain.InvoiceData{
		InvoiceNumber:   number,
		Date:            today.Format(dateLayout),
		SenderName:      sender.Name,
		SenderEmail:     sender.Email,
		SenderAddress:   sender.Address,
		SenderGSTIN:     sender.GSTIN,
		SenderPAN:       sender.PAN,
		SenderCIN:       sender.CIN,
		ClientGSTIN:     NotApplicable,
		ClientStateCode: sender.StateCode,
		DeliveryPlace:   NotApplicable,
		Items:           []domain.LineItem{},
		TaxRate:         taxRate,
	}
}

// FieldPatch carries top-level field edits. Nil fields are left untouched.
type FieldPatch struct {
	Date            *string  `json:"date"`
	DueDate         *string  `json:"dueDate"`
	SenderName      *string  `json:"senderName"`
	SenderEmail     *string  `json:"senderEmail"`
	SenderAddress   *string  `json:"senderAddress"`
	SenderGSTIN     *string  `json:"senderGstin"`
	SenderPAN       *string  `json:"senderPan"`
	SenderCIN       *string  `json:"senderCin"`
	ClientName      *string  `json:"clientName"`
	ClientEmail     *string  `json:"clientEmail"`
	ClientAddress   *string  `json:"clientAddress"`
	ClientGSTIN     *string  `json:"clientGstin"`
	ClientStateCode *string  `json:"clientStateCode"`
	ClientPhone     *string  `json:"clientPhone"`
	DeliveryPlace   *string  `json:"deliveryPlace"`
	TaxRate         *float64 `json:"taxRate"`
	Notes           *string  `json:"notes"`
}

// ApplyFields writes every non-nil field of p onto inv.
func ApplyFields(inv *domain.InvoiceData, p FieldPatch) {
	setString(&inv.Date, p.Date)
	setString(&inv.DueDate, p.DueDate)
	setString(&inv.SenderName, p.SenderName)
	setString(&inv.SenderEmail, p.SenderEmail)
	setString(&inv.SenderAddress, p.SenderAddress)
	setString(&inv.SenderGSTIN, p.SenderGSTIN)
	setString(&inv.SenderPAN, p.SenderPAN)
	setString(&inv.SenderCIN, p.SenderCIN)
	setString(&inv.ClientName, p.ClientName)
	setString(&inv.ClientEmail, p.ClientEmail)
	setString(&inv.ClientAddress, p.ClientAddress)
	setString(&inv.ClientGSTIN, p.ClientGSTIN)
	setString(&inv.ClientStateCode, p.ClientStateCode)
	setString(&inv.ClientPhone, p.ClientPhone)
	setString(&inv.DeliveryPlace, p.DeliveryPlace)
	setString(&inv.Notes, p.Notes)
	if p.TaxRate != nil {
		inv.TaxRate = *p.TaxRate
	}
}

func setString(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}

// AddItem appends an empty line item and returns it.
func AddItem(inv *domain.InvoiceData) domain.LineItem {
	item := domain.LineItem{
		ID:       newItemID(),
		Quantity: 1,
		Unit:     DefaultUnit,
	}
	inv.Items = append(inv.Items, item)
	return item
}

// ItemPatch carries edits to one line item. Nil fields are left untouched.
// Price is the tax-exclusive rate; tax-inclusive entry goes through
// UpdateItemTotal instead.
type ItemPatch struct {
	Description *string  `json:"description"`
	HSNCode     *string  `json:"hsnCode"`
	Quantity    *float64 `json:"quantity"`
	Unit        *string  `json:"unit"`
	Price       *float64 `json:"price"`
}

// UpdateItem applies p to the item with the given id in place. It reports
// whether the item was found; a missing id is a no-op.
func UpdateItem(inv *domain.InvoiceData, id string, p ItemPatch) bool {
	i := indexOf(inv.Items, id)
	if i < 0 {
		return false
	}
	item := &inv.Items[i]
	setString(&item.Description, p.Description)
	setString(&item.HSNCode, p.HSNCode)
	setString(&item.Unit, p.Unit)
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	return true
}

// UpdateItemTotal takes a tax-inclusive total for the item and stores the
// implied tax-exclusive rate, using the item's quantity and the invoice's
// combined rate.
func UpdateItemTotal(inv *domain.InvoiceData, id string, inclusiveTotal float64) bool {
	i := indexOf(inv.Items, id)
	if i < 0 {
		return false
	}
	item := &inv.Items[i]
	item.Price = gst.RateFromInclusiveTotal(inclusiveTotal, item.Quantity, inv.TaxRate)
	return true
}

// RemoveItem deletes the item with the given id, keeping the order of the rest.
func RemoveItem(inv *domain.InvoiceData, id string) bool {
	i := indexOf(inv.Items, id)
	if i < 0 {
		return false
	}
	inv.Items = append(inv.Items[:i:i], inv.Items[i+1:]...)
	return true
}

// ItemInclusiveTotal returns the tax-inclusive total for an item rounded to
// two decimals, as shown in the editor's total column.
func ItemInclusiveTotal(item domain.LineItem, taxRate float64) float64 {
	return gst.RoundTo2(gst.TaxInclusiveTotal(item.Price, item.Quantity, taxRate))
}

func indexOf(items []domain.LineItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
