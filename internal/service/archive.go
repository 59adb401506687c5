package service

import (
	"bytes"
	"context"
	"path"

	"github.com/sirupsen/logrus"

	"smartinvoice/internal/invoice"
	"smartinvoice/internal/port"
)

// ArchiveConfig locates archived PDFs in object storage.
type ArchiveConfig struct {
	Bucket        string
	KeyPrefix     string
	PresignExpiry int64
}

// archiver copies rendered PDFs to object storage. A nil storage disables it.
// Failures are logged and never returned.
type archiver struct {
	storage port.ObjectStorage
	cfg     ArchiveConfig
	log     logrus.FieldLogger
}

func (a *archiver) key(invoiceNumber string) string {
	return path.Join(a.cfg.KeyPrefix, invoice.PDFFilename(invoiceNumber))
}

// store uploads content and returns a presigned download URL, or "" when
// archiving is disabled or fails.
func (a *archiver) store(ctx context.Context, invoiceNumber string, content []byte) string {
	if a.storage == nil {
		return ""
	}
	key := a.key(invoiceNumber)
	entry := a.log.WithFields(logrus.Fields{"invoice_number": invoiceNumber, "key": key})

	_, err := a.storage.Upload(ctx, port.UploadInput{
		Bucket:      a.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(content),
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Metadata:    map[string]string{"invoice-number": invoiceNumber},
	})
	if err != nil {
		entry.WithError(err).Warn("archiving invoice pdf failed")
		return ""
	}

	url, err := a.storage.GetPresignedURL(ctx, a.cfg.Bucket, key, a.cfg.PresignExpiry)
	if err != nil {
		entry.WithError(err).Warn("presigning archived pdf failed")
		return ""
	}
	return url
}

func (a *archiver) remove(ctx context.Context, invoiceNumber string) {
	if a.storage == nil {
		return
	}
	key := a.key(invoiceNumber)
	if err := a.storage.Delete(ctx, a.cfg.Bucket, key); err != nil {
		a.log.WithError(err).WithFields(logrus.Fields{"invoice_number": invoiceNumber, "key": key}).
			Warn("deleting archived pdf failed")
	}
}
