package entity

import "time"

// LocationType tipo de ubicación que mueve inventario y emite/recibe facturas internas.
type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationStore     LocationType = "store"
)

// Valid indica si el tipo es uno de los soportados.
func (t LocationType) Valid() bool {
	return t == LocationWarehouse || t == LocationStore
}

// Location representa una bodega o una tienda (datos maestros, mutables).
type Location struct {
	ID        string
	Type      LocationType
	Code      string
	Name      string
	GSTIN     string
	Address   string
	City      string
	State     string
	StateCode string // código GST de dos dígitos ("27" Maharashtra, "29" Karnataka...)
	Pincode   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot copia los datos fiscales vigentes de la ubicación para un documento legal.
func (l *Location) Snapshot() PartySnapshot {
	return PartySnapshot{
		Type:      l.Type,
		ID:        l.ID,
		Name:      l.Name,
		GSTIN:     l.GSTIN,
		Address:   l.Address,
		City:      l.City,
		State:     l.State,
		StateCode: l.StateCode,
		Pincode:   l.Pincode,
	}
}
