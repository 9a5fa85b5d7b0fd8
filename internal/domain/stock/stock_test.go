package stock

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/domain/entity"
)

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func seeded(available int64) *entity.InventoryRecord {
	r := NewRecord(entity.LocationWarehouse, "wh-1", "p-1")
	r.CurrentStock = qty(available)
	r.AvailableStock = qty(available)
	return r
}

func TestReserve(t *testing.T) {
	r := seeded(30)
	require.NoError(t, Reserve(r, qty(20), "Toor Dal"))
	assert.Equal(t, "10", r.AvailableStock.String())
	assert.Equal(t, "20", r.ReservedStock.String())
	assert.Equal(t, "30", r.CurrentStock.String())

	err := Reserve(r, qty(50), "Toor Dal")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "solicitado 50, disponible 10")
	assert.Equal(t, "10", r.AvailableStock.String(), "sin cambios tras el rechazo")
}

func TestShipAndRestoreRoundTrip(t *testing.T) {
	r := seeded(100)
	require.NoError(t, Reserve(r, qty(20), "p"))
	require.NoError(t, DeductReserved(r, qty(20), "p"))
	assert.Equal(t, "80", r.CurrentStock.String())
	assert.Equal(t, "80", r.AvailableStock.String())
	assert.True(t, r.ReservedStock.IsZero())

	require.NoError(t, Restore(r, qty(20)))
	assert.Equal(t, "100", r.CurrentStock.String())
	assert.Equal(t, "100", r.AvailableStock.String())
}

func TestDeductReserved_RequiresReservation(t *testing.T) {
	r := seeded(30)
	err := DeductReserved(r, qty(5), "p")
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestCredit(t *testing.T) {
	r := NewRecord(entity.LocationStore, "st-1", "p-1")
	require.NoError(t, Credit(r, qty(10), qty(2), qty(50)))
	assert.Equal(t, "10", r.CurrentStock.String())
	assert.Equal(t, "8", r.AvailableStock.String())
	assert.Equal(t, "2", r.DamagedStock.String())
	assert.Equal(t, "50", r.AverageCost.String())

	require.NoError(t, Credit(r, qty(10), qty(0), qty(70)))
	assert.Equal(t, "60", r.AverageCost.String())

	assert.True(t, errors.Is(Credit(r, qty(1), qty(2), qty(1)), domain.ErrValidation))
	assert.True(t, errors.Is(Credit(r, qty(-1), qty(0), qty(1)), domain.ErrValidation))
}

func TestWeightedAverageCost(t *testing.T) {
	assert.Equal(t, "15", WeightedAverageCost(qty(10), qty(10), qty(10), qty(20)).String())
	assert.Equal(t, "12", WeightedAverageCost(qty(0), qty(12), qty(0), qty(9)).String(), "sin unidades conserva el costo")
}

// Cualquier secuencia de operaciones conserva current = available + reserved + damaged.
func TestOperationsPreserveInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := seeded(500)

	for i := 0; i < 2000; i++ {
		n := qty(rng.Int63n(40))
		var err error
		switch rng.Intn(5) {
		case 0:
			err = Reserve(r, n, "p")
		case 1:
			err = Release(r, n, "p")
		case 2:
			err = DeductReserved(r, n, "p")
		case 3:
			err = Credit(r, n, qty(rng.Int63n(n.IntPart()+1)), qty(10))
		case 4:
			err = Restore(r, n)
		}
		if err != nil {
			assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "solo se esperan rechazos por stock: %v", err)
		}
		require.True(t, r.Balanced(), "paso %d: current=%s available=%s reserved=%s damaged=%s",
			i, r.CurrentStock, r.AvailableStock, r.ReservedStock, r.DamagedStock)
		require.False(t, r.AvailableStock.IsNegative())
		require.False(t, r.ReservedStock.IsNegative())
	}
}
