package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/invoice"
	"smartinvoice/internal/metrics"
	"smartinvoice/internal/port"
)

// Commit triggers recorded in metrics and logs.
const (
	triggerPayment  = "payment"
	triggerDownload = "download"
)

// InvoiceService edits invoice drafts and commits them to history.
type InvoiceService interface {
	Create(ctx context.Context) (*InvoiceView, error)
	Get(ctx context.Context, number string) (*InvoiceView, error)
	Update(ctx context.Context, number string, patch invoice.FieldPatch) (*InvoiceView, error)
	AddItem(ctx context.Context, number string) (*InvoiceView, error)
	UpdateItem(ctx context.Context, number, itemID string, patch invoice.ItemPatch) (*InvoiceView, error)
	UpdateItemTotal(ctx context.Context, number, itemID string, inclusiveTotal float64) (*InvoiceView, error)
	RemoveItem(ctx context.Context, number, itemID string) (*InvoiceView, error)
	SmartFill(ctx context.Context, number, text string) (*InvoiceView, error)
	SubmitPayment(ctx context.Context, number string) (*InvoiceView, error)
	ConfirmPayment(ctx context.Context, number string) (*InvoiceView, error)
	CancelPayment(ctx context.Context, number string) (*InvoiceView, error)
	DownloadPDF(ctx context.Context, number string) (*PDFResult, error)
	LoadFromHistory(ctx context.Context, number string) (*InvoiceView, error)
}

// InvoiceDefaults seeds new drafts.
type InvoiceDefaults struct {
	Sender  invoice.Sender
	TaxRate float64
}

// DraftLimits bounds the in-process draft store. A zero IdleTTL or Max
// disables that bound.
type DraftLimits struct {
	IdleTTL time.Duration
	Max     int
}

// draft is one invoice being edited. mu guards every field; busy marks an
// outstanding smart-fill call, which runs without holding mu.
type draft struct {
	mu      sync.Mutex
	inv     *domain.InvoiceData
	flow    *invoice.PaymentFlow
	busy    bool
	touched time.Time
}

func (d *draft) view() *InvoiceView {
	inv := d.inv.Clone()
	return &InvoiceView{
		Invoice:      inv,
		Summary:      invoice.Summarize(inv),
		PaymentState: d.flow.State(),
	}
}

type invoiceService struct {
	history  port.HistoryRepository
	sequence port.SequenceAllocator
	filler   port.SmartFiller
	renderer port.InvoiceRenderer
	archive  *archiver
	defaults InvoiceDefaults
	limits   DraftLimits
	log      logrus.FieldLogger
	now      func() time.Time

	mu     sync.Mutex
	drafts map[string]*draft
}

// NewInvoiceService creates a new InvoiceService. storage may be nil to
// disable PDF archiving.
func NewInvoiceService(
	history port.HistoryRepository,
	sequence port.SequenceAllocator,
	filler port.SmartFiller,
	renderer port.InvoiceRenderer,
	storage port.ObjectStorage,
	archiveCfg ArchiveConfig,
	defaults InvoiceDefaults,
	limits DraftLimits,
	log logrus.FieldLogger,
) InvoiceService {
	return &invoiceService{
		history:  history,
		sequence: sequence,
		filler:   filler,
		renderer: renderer,
		archive:  &archiver{storage: storage, cfg: archiveCfg, log: log},
		defaults: defaults,
		limits:   limits,
		log:      log,
		now:      time.Now,
		drafts:   make(map[string]*draft),
	}
}

func (s *invoiceService) lookup(number string) (*draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[number]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	return d, nil
}

// edit runs fn on the draft under its lock and returns the resulting view.
func (s *invoiceService) edit(number string, fn func(d *draft) error) (*InvoiceView, error) {
	d, err := s.lookup(number)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := fn(d); err != nil {
		return nil, err
	}
	d.touched = s.now()
	return d.view(), nil
}

// insert publishes d under number, evicting stale drafts first.
func (s *invoiceService) insert(number string, d *draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(d.touched)
	s.drafts[number] = d
}

// evictLocked drops drafts idle longer than IdleTTL, then the least recently
// used ones until there is room for one more. Drafts in use by a concurrent
// call are never dropped. Caller holds s.mu.
func (s *invoiceService) evictLocked(now time.Time) {
	type candidate struct {
		number  string
		touched time.Time
	}
	var (
		keep    []candidate
		evicted int
	)
	for number, d := range s.drafts {
		if !d.mu.TryLock() {
			continue
		}
		busy, touched := d.busy, d.touched
		d.mu.Unlock()
		if busy {
			continue
		}
		if s.limits.IdleTTL > 0 && now.Sub(touched) > s.limits.IdleTTL {
			delete(s.drafts, number)
			evicted++
			continue
		}
		keep = append(keep, candidate{number: number, touched: touched})
	}

	if s.limits.Max > 0 && len(s.drafts) >= s.limits.Max {
		sort.Slice(keep, func(i, j int) bool { return keep[i].touched.Before(keep[j].touched) })
		for _, c := range keep {
			if len(s.drafts) < s.limits.Max {
				break
			}
			delete(s.drafts, c.number)
			evicted++
		}
	}

	if evicted > 0 {
		s.log.WithFields(logrus.Fields{"evicted": evicted, "drafts": len(s.drafts)}).Debug("evicted idle invoice drafts")
	}
}

func (s *invoiceService) Create(ctx context.Context) (*InvoiceView, error) {
	number, err := s.sequence.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating invoice number: %w", err)
	}

	now := s.now()
	d := &draft{
		inv:     invoice.New(number, s.defaults.Sender, s.defaults.TaxRate, now),
		flow:    invoice.NewPaymentFlow(false),
		touched: now,
	}
	s.insert(number, d)

	s.log.WithField("invoice_number", number).Info("invoice draft created")
	return d.view(), nil
}

func (s *invoiceService) Get(_ context.Context, number string) (*InvoiceView, error) {
	return s.edit(number, func(*draft) error { return nil })
}

func (s *invoiceService) Update(_ context.Context, number string, patch invoice.FieldPatch) (*InvoiceView, error) {
	return s.edit(number, func(d *draft) error {
		invoice.ApplyFields(d.inv, patch)
		return nil
	})
}

func (s *invoiceService) AddItem(_ context.Context, number string) (*InvoiceView, error) {
	return s.edit(number, func(d *draft) error {
		invoice.AddItem(d.inv)
		return nil
	})
}

func (s *invoiceService) UpdateItem(_ context.Context, number, itemID string, patch invoice.ItemPatch) (*InvoiceView, error) {
	return s.edit(number, func(d *draft) error {
		invoice.UpdateItem(d.inv, itemID, patch)
		return nil
	})
}

func (s *invoiceService) UpdateItemTotal(_ context.Context, number, itemID string, inclusiveTotal float64) (*InvoiceView, error) {
	return s.edit(number, func(d *draft) error {
		invoice.UpdateItemTotal(d.inv, itemID, inclusiveTotal)
		return nil
	})
}

func (s *invoiceService) RemoveItem(_ context.Context, number, itemID string) (*InvoiceView, error) {
	return s.edit(number, func(d *draft) error {
		invoice.RemoveItem(d.inv, itemID)
		return nil
	})
}

// SmartFill sends text to the smart-fill provider and merges the returned
// patch into the draft as it stands when the reply arrives. Only one call per
// draft may be outstanding. Any failure leaves the draft untouched.
func (s *invoiceService) SmartFill(ctx context.Context, number, text string) (*InvoiceView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptySmartFillText
	}

	d, err := s.lookup(number)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return nil, domain.ErrSmartFillBusy
	}
	d.busy = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.busy = false
		d.mu.Unlock()
	}()

	entry := s.log.WithField("invoice_number", number)
	start := time.Now()
	out, err := s.filler.Fill(ctx, port.SmartFillInput{Text: text})
	if err != nil {
		return nil, s.smartFillError(entry, err)
	}

	patch := out.Patch
	if patch == nil {
		patch = &domain.SmartFillPatch{}
	}
	if a := patch.Actions; a != nil && a.MarkAsPaid && a.MarkAsUnpaid {
		entry.Warn("smart fill patch marks invoice both paid and unpaid; paid wins")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inv = invoice.ApplySmartFillPatch(d.inv, patch)
	d.flow.Sync(d.inv.IsPaid)
	d.touched = s.now()

	metrics.SmartFillTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	entry.WithFields(logrus.Fields{
		"model":       out.ModelUsed,
		"duration_ms": time.Since(start).Milliseconds(),
		"items_added": len(patch.Items),
	}).Info("smart fill applied")
	return d.view(), nil
}

func (s *invoiceService) smartFillError(entry logrus.FieldLogger, err error) error {
	switch {
	case errors.Is(err, domain.ErrSmartFillNotConfigured):
		metrics.SmartFillTotal.WithLabelValues(metrics.OutcomeNotConfigured).Inc()
		entry.Warn("smart fill requested but no provider is configured")
		return err
	case errors.Is(err, domain.ErrSmartFillRateLimited):
		metrics.SmartFillTotal.WithLabelValues(metrics.OutcomeRateLimited).Inc()
		entry.WithError(err).Warn("smart fill rate limited")
		return err
	default:
		metrics.SmartFillTotal.WithLabelValues(metrics.OutcomeError).Inc()
		entry.WithError(err).Error("smart fill failed")
		return fmt.Errorf("%w: %w", domain.ErrSmartFillFailed, err)
	}
}

func (s *invoiceService) SubmitPayment(_ context.Context, number string) (*InvoiceView, error) {
	return s.edit(number, func(d *draft) error {
		return d.flow.Submit()
	})
}

func (s *invoiceService) CancelPayment(_ context.Context, number string) (*InvoiceView, error) {
	return s.edit(number, func(d *draft) error {
		return d.flow.Cancel(d.inv.IsPaid)
	})
}

func (s *invoiceService) ConfirmPayment(ctx context.Context, number string) (*InvoiceView, error) {
	return s.edit(number, func(d *draft) error {
		return d.flow.Confirm(ctx, d.inv, func(ctx context.Context, inv *domain.InvoiceData) error {
			return s.commit(ctx, inv, triggerPayment)
		})
	})
}

func (s *invoiceService) commit(ctx context.Context, inv *domain.InvoiceData, trigger string) error {
	entry := s.log.WithFields(logrus.Fields{"invoice_number": inv.InvoiceNumber, "trigger": trigger})
	if err := s.history.Upsert(ctx, inv); err != nil {
		metrics.HistoryCommitsTotal.WithLabelValues(trigger, metrics.OutcomeError).Inc()
		entry.WithError(err).Error("history commit failed")
		return fmt.Errorf("saving invoice to history: %w", err)
	}
	metrics.HistoryCommitsTotal.WithLabelValues(trigger, metrics.OutcomeSuccess).Inc()
	entry.Info("invoice saved to history")
	return nil
}

// DownloadPDF renders the draft, commits it to history and archives the
// PDF when object storage is configured. Archive failures are not fatal.
func (s *invoiceService) DownloadPDF(ctx context.Context, number string) (*PDFResult, error) {
	d, err := s.lookup(number)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	inv := d.inv.Clone()
	content, err := render(ctx, s.renderer, inv)
	if err == nil {
		err = s.commit(ctx, inv, triggerDownload)
	}
	d.touched = s.now()
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return &PDFResult{
		Filename:   invoice.PDFFilename(number),
		Content:    content,
		ArchiveURL: s.archive.store(ctx, number, content),
	}, nil
}

// LoadFromHistory replaces the draft for number with the committed copy.
func (s *invoiceService) LoadFromHistory(ctx context.Context, number string) (*InvoiceView, error) {
	inv, err := s.history.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	now := s.now()
	s.mu.Lock()
	d, ok := s.drafts[number]
	if !ok {
		d = &draft{inv: inv, flow: invoice.NewPaymentFlow(inv.IsPaid), touched: now}
		s.evictLocked(now)
		s.drafts[number] = d
		s.mu.Unlock()
		return d.view(), nil
	}
	s.mu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.inv = inv
	d.flow = invoice.NewPaymentFlow(inv.IsPaid)
	d.touched = now
	return d.view(), nil
}

func render(ctx context.Context, renderer port.InvoiceRenderer, inv *domain.InvoiceData) ([]byte, error) {
	content, err := renderer.Render(ctx, port.RenderInput{Invoice: inv, Summary: invoice.Summarize(inv)})
	if err != nil {
		metrics.PDFRendersTotal.WithLabelValues(metrics.OutcomeError).Inc()
		if errors.Is(err, domain.ErrRenderFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRenderFailed, err)
	}
	metrics.PDFRendersTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return content, nil
}
