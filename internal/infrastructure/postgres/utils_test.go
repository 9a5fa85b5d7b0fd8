package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/config"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", placeholders(1))
	assert.Equal(t, "$1, $2, $3", placeholders(3))
}

func TestFilter(t *testing.T) {
	var f filter
	assert.Equal(t, "", f.sql())

	f.add("status = $%d", "issued")
	f.add("(source_id = $%[1]d OR destination_id = $%[1]d)", "loc-1")
	assert.Equal(t, " WHERE status = $1 AND (source_id = $2 OR destination_id = $2)", f.sql())
	assert.Equal(t, " LIMIT $3 OFFSET $4", f.page(20, 40))
	assert.Equal(t, []any{"issued", "loc-1", 20, 40}, f.args)

	var g filter
	assert.Equal(t, "", g.page(0, 10), "sin límite")
	assert.Empty(t, g.args)
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "ii.id, ii.invoice_id, ii.line_number", prefixed("ii.", "id, invoice_id,\n\tline_number"))
}

func TestDuplicateOr(t *testing.T) {
	err := duplicateOr(&pgconn.PgError{Code: "23505"}, "invoice INV-1")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	err = duplicateOr(errors.New("conexión perdida"), "invoice INV-1")
	assert.NotErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "insert invoice INV-1")
}

func TestNewPoolConfig(t *testing.T) {
	cfg := config.DBConfig{Host: "db.local", Port: 5432, User: "gst", Password: "p@ss:word", DBName: "freshvilla", SSLMode: "disable", MaxConns: 8}

	pc, err := newPoolConfig(cfg, "freshvilla-gst")
	require.NoError(t, err)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, "db.local", pc.ConnConfig.Host)
	assert.Equal(t, "p@ss:word", pc.ConnConfig.Password)
	rp := pc.ConnConfig.RuntimeParams
	assert.Equal(t, "UTC", rp["TimeZone"])
	assert.Equal(t, "30000", rp["statement_timeout"])
	assert.Equal(t, "10000", rp["lock_timeout"])
	assert.Equal(t, "freshvilla-gst", rp["application_name"])
	assert.NotNil(t, pc.AfterConnect)

	cfg.MaxConns = 0
	cfg.DatabaseURL = "postgres://u:p@other:6543/gst?sslmode=require"
	pc, err = newPoolConfig(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, int32(defaultMaxConns), pc.MaxConns)
	assert.Equal(t, "other", pc.ConnConfig.Host)
	assert.Equal(t, uint16(6543), pc.ConnConfig.Port)
	_, ok := pc.ConnConfig.RuntimeParams["application_name"]
	assert.False(t, ok)
}
