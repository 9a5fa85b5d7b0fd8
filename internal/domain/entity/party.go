package entity

// PartySnapshot datos de emisor/receptor congelados al crear el documento.
// No se vuelven a leer de Location: la factura es un registro legal inmutable.
type PartySnapshot struct {
	Type      LocationType
	ID        string
	Name      string
	GSTIN     string
	Address   string
	City      string
	State     string
	StateCode string
	Pincode   string
}
