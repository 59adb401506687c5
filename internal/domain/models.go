package domain

// LineItem is a single billable row on an invoice. Price is always the
// tax-exclusive unit rate.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	HSNCode     string  `json:"hsnCode"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
}

// InvoiceData is the invoice aggregate as edited and stored in history.
// InvoiceNumber is the natural key for history identity.
type InvoiceData struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Date          string `json:"date"`
	DueDate       string `json:"dueDate"`

	SenderName    string `json:"senderName"`
	SenderEmail   string `json:"senderEmail"`
	SenderAddress string `json:"senderAddress"`
	SenderGSTIN   string `json:"senderGstin"`
	SenderPAN     string `json:"senderPan"`
	SenderCIN     string `json:"senderCin"`

	ClientName      string `json:"clientName"`
	ClientEmail     string `json:"clientEmail"`
	ClientAddress   string `json:"clientAddress"`
	ClientGSTIN     string `json:"clientGstin"`
	ClientStateCode string `json:"clientStateCode"`
	ClientPhone     string `json:"clientPhone"`

	DeliveryPlace string `json:"deliveryPlace"`

	Items   []LineItem `json:"items"`
	TaxRate float64    `json:"taxRate"`
	Notes   string     `json:"notes"`
	IsPaid  bool       `json:"isPaid"`
}

// Clone returns a deep copy so callers can mutate the result without
// touching the original.
func (d *InvoiceData) Clone() *InvoiceData {
	if d == nil {
		return nil
	}
	out := *d
	out.Items = make([]LineItem, len(d.Items))
	copy(out.Items, d.Items)
	return &out
}

// SmartFillPatch is the validated output of the smart-fill service. Every
// section is optional; a nil section means "no instruction of that kind".
type SmartFillPatch struct {
	Actions       *PatchActions `json:"actions,omitempty"`
	ClientDetails *PatchClient  `json:"clientDetails,omitempty"`
	Items         []PatchItem   `json:"items,omitempty"`
}

// PatchActions holds the four independent smart-fill action flags.
type PatchActions struct {
	ClearClient  bool `json:"clearClient"`
	ClearItems   bool `json:"clearItems"`
	MarkAsUnpaid bool `json:"markAsUnpaid"`
	MarkAsPaid   bool `json:"markAsPaid"`
}

// PatchClient carries partial client details. Empty strings mean "leave as is".
type PatchClient struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	GSTIN   string `json:"gstin,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// PatchItem is an extracted line item. Price is tax-inclusive.
type PatchItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}
