package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/invoice"
	"smartinvoice/internal/repository/postgres"
)

// newTestDB connects to SMARTINVOICE_TEST_DB_DSN, applies the up migrations
// and truncates both tables. Skipped when no database is configured.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("SMARTINVOICE_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("SMARTINVOICE_TEST_DB_DSN not set")
	}
	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	files, err := filepath.Glob("../../../db/migrations/*.up.sql")
	require.NoError(t, err)
	sort.Strings(files)
	for _, f := range files {
		stmt, err := os.ReadFile(f)
		require.NoError(t, err)
		_, err = db.Exec(string(stmt))
		require.NoError(t, err, f)
	}
	_, err = db.Exec("TRUNCATE invoice_history, invoice_sequences")
	require.NoError(t, err)
	return db
}

func TestHistoryRepo_Postgres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgres.NewHistoryRepo(db)

	first := &domain.InvoiceData{
		InvoiceNumber: "INDY0187",
		ClientName:    "first",
		TaxRate:       18,
		Items:         []domain.LineItem{{ID: "a", Description: "Course", Quantity: 1, Unit: "No", Price: 21186.4407}},
	}
	require.NoError(t, repo.Upsert(ctx, first))
	require.NoError(t, repo.Upsert(ctx, &domain.InvoiceData{InvoiceNumber: "INDY0188"}))

	first.ClientName = "second"
	first.IsPaid = true
	require.NoError(t, repo.Upsert(ctx, first))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "INDY0187", all[0].InvoiceNumber)
	assert.Equal(t, "second", all[0].ClientName)
	assert.True(t, all[0].IsPaid)
	assert.Equal(t, 21186.4407, all[0].Items[0].Price)
	assert.NotNil(t, all[1].Items)

	require.NoError(t, repo.Remove(ctx, "INDY0187"))
	require.NoError(t, repo.Remove(ctx, "INDY0187"))
	_, err = repo.Get(ctx, "INDY0187")
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
}

func TestSequenceRepo_Postgres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seq := postgres.NewSequenceRepo(db, invoice.Numbering{Prefix: "INDY", Start: 187, Width: 4})

	first, err := seq.Next(ctx)
	require.NoError(t, err)
	second, err := seq.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, "INDY0187", first)
	assert.Equal(t, "INDY0188", second)
	assert.True(t, strings.HasPrefix(second, "INDY"))
}
