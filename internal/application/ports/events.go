package ports

import "context"

// Tópicos de eventos de dominio publicados después del commit.
const (
	EventInvoiceIssued     = "invoice.issued"
	EventInvoicePaid       = "invoice.paid"
	EventInvoiceCancelled  = "invoice.cancelled"
	EventTransferCreated   = "transfer.created"
	EventTransferShipped   = "transfer.shipped"
	EventTransferReceived  = "transfer.received"
	EventTransferCancelled = "transfer.cancelled"
	EventGSTSummarized     = "gst.summarized"
)

// EventPublisher publica eventos de dominio. La entrega es best effort: un fallo se registra
// en el log y no revierte la operación ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// NopPublisher descarta los eventos (sin broker configurado).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
