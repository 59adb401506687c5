package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/export"
	"smartinvoice/internal/invoice"
	"smartinvoice/internal/port"
)

// HistoryService reads and manages committed invoices.
type HistoryService interface {
	List(ctx context.Context, recentFirst bool) ([]HistoryEntry, error)
	Get(ctx context.Context, number string) (*HistoryEntry, error)
	Delete(ctx context.Context, number string) error
	Export(ctx context.Context, format domain.ExportFormat) (*ExportResult, error)
	DownloadPDF(ctx context.Context, number string) (*PDFResult, error)
}

type historyService struct {
	history  port.HistoryRepository
	renderer port.InvoiceRenderer
	archive  *archiver
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewHistoryService creates a new HistoryService. storage may be nil.
func NewHistoryService(
	history port.HistoryRepository,
	renderer port.InvoiceRenderer,
	storage port.ObjectStorage,
	archiveCfg ArchiveConfig,
	log logrus.FieldLogger,
) HistoryService {
	return &historyService{
		history:  history,
		renderer: renderer,
		archive:  &archiver{storage: storage, cfg: archiveCfg, log: log},
		log:      log,
		now:      time.Now,
	}
}

// List returns committed invoices in stored order, or newest first.
func (s *historyService) List(ctx context.Context, recentFirst bool) ([]HistoryEntry, error) {
	records, err := s.history.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	entries := make([]HistoryEntry, len(records))
	for i := range records {
		j := i
		if recentFirst {
			j = len(records) - 1 - i
		}
		entries[j] = newHistoryEntry(records[i])
	}
	return entries, nil
}

func (s *historyService) Get(ctx context.Context, number string) (*HistoryEntry, error) {
	inv, err := s.history.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	entry := newHistoryEntry(*inv)
	return &entry, nil
}

// Delete removes a committed invoice. Removing an unknown number succeeds.
func (s *historyService) Delete(ctx context.Context, number string) error {
	if err := s.history.Remove(ctx, number); err != nil {
		return fmt.Errorf("removing from history: %w", err)
	}
	s.archive.remove(ctx, number)
	s.log.WithField("invoice_number", number).Info("invoice removed from history")
	return nil
}

func (s *historyService) Export(ctx context.Context, format domain.ExportFormat) (*ExportResult, error) {
	contentType, ok := domain.ExportContentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, format)
	}

	records, err := s.history.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, records); err != nil {
		return nil, fmt.Errorf("encoding %s export: %w", format, err)
	}

	return &ExportResult{
		Filename:    export.BuildFilename(format, s.now()),
		ContentType: contentType,
		Content:     buf.Bytes(),
	}, nil
}

// DownloadPDF renders a committed invoice without touching history.
func (s *historyService) DownloadPDF(ctx context.Context, number string) (*PDFResult, error) {
	inv, err := s.history.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	content, err := render(ctx, s.renderer, inv)
	if err != nil {
		return nil, err
	}
	return &PDFResult{Filename: invoice.PDFFilename(number), Content: content}, nil
}
