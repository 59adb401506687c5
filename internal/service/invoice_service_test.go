package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/invoice"
	"smartinvoice/internal/logger"
	"smartinvoice/internal/port"
	"smartinvoice/internal/repository/memory"
	"smartinvoice/internal/service"
	"smartinvoice/internal/smartfill"
	"smartinvoice/mocks"
)

var testDefaults = service.InvoiceDefaults{
	Sender: invoice.Sender{
		Name:      "Indy Services",
		Email:     "billing@example.com",
		GSTIN:     "29ABCDE1234F1Z5",
		StateCode: "29",
	},
	TaxRate: 18,
}

type invoiceFixture struct {
	svc      service.InvoiceService
	history  port.HistoryRepository
	filler   *mocks.MockSmartFiller
	renderer *mocks.MockInvoiceRenderer
	storage  *mocks.MockObjectStorage
}

func newInvoiceFixture(t *testing.T, withStorage bool) *invoiceFixture {
	t.Helper()
	f := &invoiceFixture{
		history:  memory.NewHistoryRepo(),
		filler:   new(mocks.MockSmartFiller),
		renderer: new(mocks.MockInvoiceRenderer),
	}
	var storage port.ObjectStorage
	if withStorage {
		f.storage = new(mocks.MockObjectStorage)
		storage = f.storage
	}
	seq := memory.NewSequenceRepo(invoice.Numbering{Prefix: "INDY", Start: 187, Width: 4}, "")
	f.svc = service.NewInvoiceService(
		f.history, seq, f.filler, f.renderer, storage,
		service.ArchiveConfig{Bucket: "archive", KeyPrefix: "invoices", PresignExpiry: 600},
		testDefaults, service.DraftLimits{}, logger.Discard(),
	)
	return f
}

func (f *invoiceFixture) create(t *testing.T) *service.InvoiceView {
	t.Helper()
	v, err := f.svc.Create(context.Background())
	require.NoError(t, err)
	return v
}

func ptr[T any](v T) *T { return &v }

func TestInvoiceService_Create(t *testing.T) {
	f := newInvoiceFixture(t, false)

	first := f.create(t)
	second := f.create(t)

	assert.Equal(t, "INDY0187", first.Invoice.InvoiceNumber)
	assert.Equal(t, "INDY0188", second.Invoice.InvoiceNumber)
	assert.Equal(t, "Indy Services", first.Invoice.SenderName)
	assert.Equal(t, 18.0, first.Invoice.TaxRate)
	assert.Equal(t, "NA", first.Invoice.ClientGSTIN)
	assert.Empty(t, first.Invoice.Items)
	assert.Len(t, first.Invoice.Date, len("2006-01-02"))
	assert.Equal(t, domain.PaymentDrafting, first.PaymentState)
}

func TestInvoiceService_Create_SequenceError(t *testing.T) {
	seq := new(mocks.MockSequenceAllocator)
	seq.On("Next", mock.Anything).Return("", errors.New("redis down"))
	svc := service.NewInvoiceService(memory.NewHistoryRepo(), seq, nil, nil, nil,
		service.ArchiveConfig{}, testDefaults, service.DraftLimits{}, logger.Discard())

	_, err := svc.Create(context.Background())
	assert.ErrorContains(t, err, "allocating invoice number")
}

func TestInvoiceService_Get_Unknown(t *testing.T) {
	f := newInvoiceFixture(t, false)

	_, err := f.svc.Get(context.Background(), "INDY9999")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestInvoiceService_ItemEditing(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()
	number := f.create(t).Invoice.InvoiceNumber

	v, err := f.svc.AddItem(ctx, number)
	require.NoError(t, err)
	require.Len(t, v.Invoice.Items, 1)
	itemID := v.Invoice.Items[0].ID
	assert.Equal(t, 1.0, v.Invoice.Items[0].Quantity)
	assert.Equal(t, "No", v.Invoice.Items[0].Unit)

	v, err = f.svc.UpdateItem(ctx, number, itemID, invoice.ItemPatch{
		Description: ptr("Chair"),
		Quantity:    ptr(2.0),
		Price:       ptr(1000.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Chair", v.Invoice.Items[0].Description)
	assert.InDelta(t, 2360, v.Summary.Totals.GrandTotal, 1e-9)

	v, err = f.svc.UpdateItemTotal(ctx, number, itemID, 1180)
	require.NoError(t, err)
	assert.InDelta(t, 500, v.Invoice.Items[0].Price, 1e-9)

	// Unknown item ids are silent no-ops.
	v, err = f.svc.RemoveItem(ctx, number, "missing")
	require.NoError(t, err)
	assert.Len(t, v.Invoice.Items, 1)

	v, err = f.svc.RemoveItem(ctx, number, itemID)
	require.NoError(t, err)
	assert.Empty(t, v.Invoice.Items)
}

func TestInvoiceService_Update(t *testing.T) {
	f := newInvoiceFixture(t, false)
	number := f.create(t).Invoice.InvoiceNumber

	v, err := f.svc.Update(context.Background(), number, invoice.FieldPatch{
		ClientName: ptr("Acme"),
		TaxRate:    ptr(12.0),
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme", v.Invoice.ClientName)
	assert.Equal(t, 12.0, v.Invoice.TaxRate)
	assert.Equal(t, 6.0, v.Summary.HalfRate)
	assert.Equal(t, "Indy Services", v.Invoice.SenderName)
}

func TestInvoiceService_ViewIsACopy(t *testing.T) {
	f := newInvoiceFixture(t, false)
	v := f.create(t)
	v.Invoice.ClientName = "mutated"

	got, err := f.svc.Get(context.Background(), v.Invoice.InvoiceNumber)
	require.NoError(t, err)
	assert.Empty(t, got.Invoice.ClientName)
}

func TestInvoiceService_SmartFill_MergesPatch(t *testing.T) {
	f := newInvoiceFixture(t, false)
	number := f.create(t).Invoice.InvoiceNumber
	text := "Acme bought 2 chairs for 1180 each, paid"

	f.filler.On("Fill", mock.Anything, port.SmartFillInput{Text: text}).Return(&port.SmartFillOutput{
		Patch: &domain.SmartFillPatch{
			Actions:       &domain.PatchActions{MarkAsPaid: true},
			ClientDetails: &domain.PatchClient{Name: "Acme"},
			Items:         []domain.PatchItem{{Description: "Chair", Quantity: 2, Price: 1180}},
		},
		ModelUsed: "gemini-2.0-flash",
	}, nil)

	v, err := f.svc.SmartFill(context.Background(), number, text)

	require.NoError(t, err)
	assert.Equal(t, "Acme", v.Invoice.ClientName)
	require.Len(t, v.Invoice.Items, 1)
	assert.InDelta(t, 1000, v.Invoice.Items[0].Price, 1e-9)
	assert.True(t, v.Invoice.IsPaid)
	assert.Equal(t, domain.PaymentPaid, v.PaymentState)
	f.filler.AssertExpectations(t)
}

func TestInvoiceService_SmartFill_EmptyText(t *testing.T) {
	f := newInvoiceFixture(t, false)
	number := f.create(t).Invoice.InvoiceNumber

	_, err := f.svc.SmartFill(context.Background(), number, "   ")

	assert.ErrorIs(t, err, domain.ErrEmptySmartFillText)
	f.filler.AssertNotCalled(t, "Fill", mock.Anything, mock.Anything)
}

func TestInvoiceService_SmartFill_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fillErr error
		check   func(t *testing.T, err error)
	}{
		{
			name:    "not configured",
			fillErr: domain.ErrSmartFillNotConfigured,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrSmartFillNotConfigured)
			},
		},
		{
			name:    "rate limited",
			fillErr: smartfill.NewRateLimitError("gemini", errors.New("429"), 30*time.Second),
			check: func(t *testing.T, err error) {
				var rl *smartfill.RateLimitError
				assert.True(t, errors.As(err, &rl))
			},
		},
		{
			name:    "provider failure",
			fillErr: errors.New("connection reset"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrSmartFillFailed)
				assert.ErrorContains(t, err, "connection reset")
			},
		},
		{
			name:    "invalid patch",
			fillErr: domain.ErrInvalidPatch,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrSmartFillFailed)
				assert.ErrorIs(t, err, domain.ErrInvalidPatch)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInvoiceFixture(t, false)
			before := f.create(t)
			number := before.Invoice.InvoiceNumber
			f.filler.On("Fill", mock.Anything, mock.Anything).Return(nil, tt.fillErr)

			_, err := f.svc.SmartFill(context.Background(), number, "anything")
			tt.check(t, err)

			after, getErr := f.svc.Get(context.Background(), number)
			require.NoError(t, getErr)
			assert.Equal(t, before.Invoice, after.Invoice)
		})
	}
}

func TestInvoiceService_SmartFill_RejectsReentry(t *testing.T) {
	f := newInvoiceFixture(t, false)
	number := f.create(t).Invoice.InvoiceNumber

	started := make(chan struct{})
	release := make(chan struct{})
	f.filler.On("Fill", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&port.SmartFillOutput{Patch: &domain.SmartFillPatch{}}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = f.svc.SmartFill(context.Background(), number, "first")
	}()

	<-started
	_, err := f.svc.SmartFill(context.Background(), number, "second")
	assert.ErrorIs(t, err, domain.ErrSmartFillBusy)

	// Editing stays available while the call is outstanding.
	_, err = f.svc.AddItem(context.Background(), number)
	assert.NoError(t, err)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	v, err := f.svc.Get(context.Background(), number)
	require.NoError(t, err)
	assert.Len(t, v.Invoice.Items, 1)
}

func TestInvoiceService_PaymentFlow(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()
	number := f.create(t).Invoice.InvoiceNumber

	_, err := f.svc.ConfirmPayment(ctx, number)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentTransition)

	v, err := f.svc.SubmitPayment(ctx, number)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAwaitingPayment, v.PaymentState)

	v, err = f.svc.CancelPayment(ctx, number)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentDrafting, v.PaymentState)

	_, err = f.svc.SubmitPayment(ctx, number)
	require.NoError(t, err)
	v, err = f.svc.ConfirmPayment(ctx, number)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, v.PaymentState)
	assert.True(t, v.Invoice.IsPaid)

	stored, err := f.history.Get(ctx, number)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
}

func TestInvoiceService_CancelPayment_KeepsPaidFlagAndStateAligned(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()
	number := f.create(t).Invoice.InvoiceNumber

	_, err := f.svc.SubmitPayment(ctx, number)
	require.NoError(t, err)

	f.filler.On("Fill", mock.Anything, mock.Anything).Return(&port.SmartFillOutput{
		Patch: &domain.SmartFillPatch{Actions: &domain.PatchActions{MarkAsPaid: true}},
	}, nil)
	v, err := f.svc.SmartFill(ctx, number, "customer has paid")
	require.NoError(t, err)
	assert.True(t, v.Invoice.IsPaid)
	assert.Equal(t, domain.PaymentAwaitingPayment, v.PaymentState)

	v, err = f.svc.CancelPayment(ctx, number)
	require.NoError(t, err)
	assert.True(t, v.Invoice.IsPaid)
	assert.Equal(t, domain.PaymentPaid, v.PaymentState)
}

func TestInvoiceService_ConfirmPayment_CommitFailure(t *testing.T) {
	history := new(mocks.MockHistoryRepo)
	history.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	seq := memory.NewSequenceRepo(invoice.Numbering{Prefix: "INDY", Start: 187, Width: 4}, "")
	svc := service.NewInvoiceService(history, seq, nil, nil, nil, service.ArchiveConfig{}, testDefaults, service.DraftLimits{}, logger.Discard())
	ctx := context.Background()

	v, err := svc.Create(ctx)
	require.NoError(t, err)
	number := v.Invoice.InvoiceNumber
	_, err = svc.SubmitPayment(ctx, number)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(ctx, number)
	assert.ErrorContains(t, err, "disk full")

	v, err = svc.Get(ctx, number)
	require.NoError(t, err)
	assert.False(t, v.Invoice.IsPaid)
	assert.Equal(t, domain.PaymentAwaitingPayment, v.PaymentState)
}

func TestInvoiceService_DownloadPDF_CommitsAndArchives(t *testing.T) {
	f := newInvoiceFixture(t, true)
	ctx := context.Background()
	number := f.create(t).Invoice.InvoiceNumber
	pdfBytes := []byte("%PDF-1.3 fake")

	f.renderer.On("Render", mock.Anything, mock.MatchedBy(func(in port.RenderInput) bool {
		return in.Invoice.InvoiceNumber == number
	})).Return(pdfBytes, nil)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "archive" && in.Key == "invoices/Invoice-"+number+".pdf" &&
			in.ContentType == "application/pdf" && in.Metadata["invoice-number"] == number
	})).Return(&port.UploadOutput{Location: "s3://archive"}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "archive", "invoices/Invoice-"+number+".pdf", int64(600)).
		Return("https://signed.example/x", nil)

	res, err := f.svc.DownloadPDF(ctx, number)

	require.NoError(t, err)
	assert.Equal(t, "Invoice-"+number+".pdf", res.Filename)
	assert.Equal(t, pdfBytes, res.Content)
	assert.Equal(t, "https://signed.example/x", res.ArchiveURL)

	_, err = f.history.Get(ctx, number)
	assert.NoError(t, err)
	f.storage.AssertExpectations(t)
}

func TestInvoiceService_DownloadPDF_ArchiveFailureIsNotFatal(t *testing.T) {
	f := newInvoiceFixture(t, true)
	number := f.create(t).Invoice.InvoiceNumber
	f.renderer.On("Render", mock.Anything, mock.Anything).Return([]byte("%PDF"), nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	res, err := f.svc.DownloadPDF(context.Background(), number)

	require.NoError(t, err)
	assert.Empty(t, res.ArchiveURL)
	f.storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_DownloadPDF_RenderFailureSkipsCommit(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()
	number := f.create(t).Invoice.InvoiceNumber
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("font missing"))

	_, err := f.svc.DownloadPDF(ctx, number)

	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	_, err = f.history.Get(ctx, number)
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
}

func TestInvoiceService_LoadFromHistory(t *testing.T) {
	f := newInvoiceFixture(t, false)
	ctx := context.Background()
	stored := &domain.InvoiceData{
		InvoiceNumber: "INDY0100",
		ClientName:    "Old Client",
		TaxRate:       18,
		IsPaid:        true,
		Items:         []domain.LineItem{{ID: "x", Description: "Lamp", Quantity: 1, Price: 500}},
	}
	require.NoError(t, f.history.Upsert(ctx, stored))

	v, err := f.svc.LoadFromHistory(ctx, "INDY0100")
	require.NoError(t, err)
	assert.Equal(t, "Old Client", v.Invoice.ClientName)
	assert.Equal(t, domain.PaymentPaid, v.PaymentState)

	// Loading again replaces local edits wholesale.
	_, err = f.svc.Update(ctx, "INDY0100", invoice.FieldPatch{ClientName: ptr("Edited")})
	require.NoError(t, err)
	v, err = f.svc.LoadFromHistory(ctx, "INDY0100")
	require.NoError(t, err)
	assert.Equal(t, "Old Client", v.Invoice.ClientName)

	_, err = f.svc.LoadFromHistory(ctx, "INDY0999")
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
}
