package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

var _ inventory.FailureSink = (*DeadLetterPublisher)(nil)

// MessageWriter parte de *kafka.Writer que usa el publicador.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter construye el writer para el tópico dead-letter.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// DeadLetterPublisher publica en Kafka las solicitudes de stock que terminaron en Failed.
// La clave del mensaje es "store_id/product_id" para conservar el orden por par.
type DeadLetterPublisher struct {
	writer MessageWriter
}

// NewDeadLetterPublisher construye el publicador sobre un writer ya configurado.
func NewDeadLetterPublisher(writer MessageWriter) *DeadLetterPublisher {
	return &DeadLetterPublisher{writer: writer}
}

type failureMessage struct {
	RequestID string    `json:"request_id"`
	StoreID   int64     `json:"store_id"`
	ProductID int64     `json:"product_id"`
	Action    string    `json:"action"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
	FailedAt  time.Time `json:"failed_at"`
}

// RecordFailure implementa inventory.FailureSink.
func (p *DeadLetterPublisher) RecordFailure(ctx context.Context, f *entity.StockUpdateFailure) error {
	body, err := json.Marshal(failureMessage{
		RequestID: f.RequestID,
		StoreID:   f.StoreID,
		ProductID: f.ProductID,
		Action:    f.Action,
		Amount:    f.Amount,
		Reason:    f.Reason,
		Attempts:  f.Attempts,
		FailedAt:  f.FailedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal dead-letter: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(f.StoreID, 10) + "/" + strconv.FormatInt(f.ProductID, 10)),
		Value: body,
		Time:  f.FailedAt,
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: &msg})

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish dead-letter: %w", err)
	}
	return nil
}

// Close cierra el writer.
func (p *DeadLetterPublisher) Close() error {
	return p.writer.Close()
}

// headerCarrier adapta los headers de kafka.Message a propagation.TextMapCarrier.
type headerCarrier struct {
	msg *kafka.Message
}

var _ propagation.TextMapCarrier = headerCarrier{}

func (c headerCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range c.msg.Headers {
		if h.Key == key {
			c.msg.Headers[i].Value = []byte(value)
			return
		}
	}
	c.msg.Headers = append(c.msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.msg.Headers))
	for _, h := range c.msg.Headers {
		keys = append(keys, h.Key)
	}
	return keys
}
