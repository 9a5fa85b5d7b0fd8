// Package kafka publica los eventos de dominio en un tópico de Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	skafka "github.com/segmentio/kafka-go"

	"github.com/bhupesh-moudgil/freshvilla-store-sub001/internal/application/ports"
	"github.com/bhupesh-moudgil/freshvilla-store-sub001/pkg/logger"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Writer subconjunto de kafka.Writer que usa el publicador; permite inyectar uno de prueba.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Envelope cuerpo JSON de cada mensaje.
type Envelope struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher escribe un mensaje por evento. La clave del mensaje es la del documento,
// así los eventos de una misma factura o traslado quedan en la misma partición y en orden.
type Publisher struct {
	writer Writer
	log    *logger.Logger
	now    func() time.Time
}

// NewPublisher crea el writer real hacia los brokers y el tópico indicados.
func NewPublisher(brokers []string, topic string, log *logger.Logger) *Publisher {
	w := &skafka.Writer{
		Addr:         skafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &skafka.Hash{},
		RequiredAcks: skafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return NewPublisherWithWriter(w, log)
}

// NewPublisherWithWriter permite inyectar un writer de prueba.
func NewPublisherWithWriter(w Writer, log *logger.Logger) *Publisher {
	return &Publisher{writer: w, log: log.Component("kafka"), now: time.Now}
}

// Publish serializa el evento a JSON y lo escribe con el tipo en la cabecera event_type.
func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	body, err := json.Marshal(Envelope{Type: eventType, Key: key, OccurredAt: p.now(), Payload: payload})
	if err != nil {
		return fmt.Errorf("kafka: serializar %s: %w", eventType, err)
	}
	msg := skafka.Message{
		Key:     []byte(key),
		Value:   body,
		Headers: []skafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar %s: %w", eventType, err)
	}
	p.log.Debug().Str("event", eventType).Str("key", key).Msg("evento publicado")
	return nil
}

// Close cierra el writer y vacía los mensajes pendientes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
