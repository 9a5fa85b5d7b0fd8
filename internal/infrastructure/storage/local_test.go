package storage

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStoreFs(afero.NewMemMapFs(), "/data/pdf")

	p, err := s.Save(ctx, "invoices/2025-26/INV-2025-26-WH-000001.pdf", "application/pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "invoices/2025-26/INV-2025-26-WH-000001.pdf", p)

	b, err := s.Open(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(b))

	_, err = s.Open(ctx, "invoices/2025-26/no-existe.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStoreFs(afero.NewMemMapFs(), "/data/pdf")

	for _, name := range []string{"", "/", "../etc/passwd", "a/../../b"} {
		_, err := s.Save(ctx, name, "application/pdf", []byte("x"))
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}
	p, err := s.Save(ctx, "/invoices/./x.pdf", "application/pdf", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "invoices/x.pdf", p)
}
