package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"smartinvoice/internal/config"
	"smartinvoice/internal/domain"
	"smartinvoice/internal/handler"
	"smartinvoice/internal/invoice"
	"smartinvoice/internal/logger"
	"smartinvoice/internal/pdf"
	"smartinvoice/internal/port"
	"smartinvoice/internal/repository/memory"
	"smartinvoice/internal/repository/postgres"
	redisrepo "smartinvoice/internal/repository/redis"
	"smartinvoice/internal/router"
	"smartinvoice/internal/service"
	"smartinvoice/internal/smartfill"
	s3storage "smartinvoice/internal/storage/s3"

	// Register smart-fill providers.
	_ "smartinvoice/internal/smartfill/claude"
	_ "smartinvoice/internal/smartfill/gemini"
	_ "smartinvoice/internal/smartfill/openai"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

// stores bundles the persistence backends selected by configuration.
type stores struct {
	history  port.HistoryRepository
	sequence port.SequenceAllocator
	checks   map[string]port.HealthChecker
	close    func()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	// Smart fill is optional; without a usable key requests fail with 503.
	filler, err := smartfill.Build(&cfg.SmartFill, log)
	if err != nil {
		return fmt.Errorf("failed to initialize smart fill: %w", err)
	}

	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		log.WithField("bucket", cfg.S3.Bucket).Info("pdf archiving enabled")
	}

	renderer := pdf.NewRenderer()
	archiveCfg := service.ArchiveConfig{
		Bucket:        cfg.S3.Bucket,
		KeyPrefix:     cfg.S3.KeyPrefix,
		PresignExpiry: cfg.S3.PresignExpiry,
	}
	defaults := service.InvoiceDefaults{
		Sender: invoice.Sender{
			Name:      cfg.Seller.Name,
			Email:     cfg.Seller.Email,
			Address:   cfg.Seller.Address,
			GSTIN:     cfg.Seller.GSTIN,
			PAN:       cfg.Seller.PAN,
			CIN:       cfg.Seller.CIN,
			StateCode: cfg.Seller.StateCode,
		},
		TaxRate: cfg.Seller.TaxRate,
	}

	// Initialize services
	limits := service.DraftLimits{IdleTTL: cfg.Drafts.IdleTTL, Max: cfg.Drafts.Max}
	invoiceSvc := service.NewInvoiceService(st.history, st.sequence, filler, renderer, storage, archiveCfg, defaults, limits, log)
	historySvc := service.NewHistoryService(st.history, renderer, storage, archiveCfg, log)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	historyH := handler.NewHistoryHandler(historySvc, invoiceSvc)
	healthH := handler.NewHealthHandler(st.checks)

	r := router.Setup(log, cfg.CORS.AllowedOrigins, invoiceH, historyH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":  cfg.Server.Port,
			"store": cfg.Store.Driver,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*stores, error) {
	numbering := invoice.Numbering{
		Prefix: cfg.Numbering.Prefix,
		Start:  cfg.Numbering.Start,
		Width:  cfg.Numbering.Width,
	}

	switch cfg.Store.Driver {
	case domain.StoreRedis:
		rdb, err := redisrepo.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		history := redisrepo.NewHistoryRepo(rdb, &cfg.Redis, log)
		return &stores{
			history:  history,
			sequence: redisrepo.NewSequenceRepo(rdb, &cfg.Redis, numbering, log),
			checks:   map[string]port.HealthChecker{"redis": history.(port.HealthChecker)},
			close:    func() { _ = rdb.Close() },
		}, nil

	case domain.StorePostgres:
		db, err := postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		history := postgres.NewHistoryRepo(db)
		return &stores{
			history:  history,
			sequence: postgres.NewSequenceRepo(db, numbering),
			checks:   map[string]port.HealthChecker{"postgres": history.(port.HealthChecker)},
			close:    func() { _ = db.Close() },
		}, nil

	default:
		log.Warn("using in-memory store; history is lost on restart")
		return &stores{
			history:  memory.NewHistoryRepo(),
			sequence: memory.NewSequenceRepo(numbering, ""),
			checks:   map[string]port.HealthChecker{},
			close:    func() {},
		}, nil
	}
}
