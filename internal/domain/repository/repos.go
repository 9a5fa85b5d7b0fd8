package repository

// Repos agrupa los repositorios atados a una misma transacción.
// Lo construye el TxRunner de infraestructura y lo recibe el callback del caso de uso.
type Repos struct {
	Locations LocationRepository
	Products  ProductRepository
	Inventory InventoryRepository
	Invoices  InvoiceRepository
	Transfers TransferRepository
	Ledger    GSTLedgerRepository
	Summaries GSTSummaryRepository
	Sequences SequenceRepository
}
