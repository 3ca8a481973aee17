package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
)

// Simulator stands in for the external settlement service: it consumes
// published batches, settles them against a Settler and publishes a
// SettlementMessage for every batch that carries a callback.
type Simulator struct {
	conn            *amqp.Connection
	batchQueue      string
	settlementQueue string
	settler         Settler
	logger          *zap.Logger
}

func NewSimulator(conn *amqp.Connection, batchQueue, settlementQueue string, settler Settler, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		conn:            conn,
		batchQueue:      batchQueue,
		settlementQueue: settlementQueue,
		settler:         settler,
		logger:          logger,
	}
}

// Run consumes until ctx is done or the delivery channel closes.
func (s *Simulator) Run(ctx context.Context) error {
	ch, err := s.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	for _, q := range []string{s.batchQueue, s.settlementQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}
	msgs, err := ch.Consume(s.batchQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.batchQueue, err)
	}

	s.logger.Info("settlement simulator started",
		zap.String("batch_queue", s.batchQueue), zap.String("settlement_queue", s.settlementQueue))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("batch delivery channel closed")
			}
			s.handle(ctx, ch, d)
		}
	}
}

func (s *Simulator) handle(ctx context.Context, ch *amqp.Channel, d amqp.Delivery) {
	b, err := DecodeBatch(d.Body)
	if err != nil {
		s.logger.Warn("invalid batch message", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	msg, ok := Settle(s.settler, b)
	if ok {
		body, err := json.Marshal(&msg)
		if err == nil {
			err = ch.PublishWithContext(ctx, "", s.settlementQueue, false, false, amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    b.ID,
				Body:         body,
			})
		}
		if err != nil {
			s.logger.Error("publish settlement", zap.String("batch_id", b.ID), zap.Error(err))
			_ = d.Nack(false, true)
			return
		}
	}
	_ = d.Ack(false)
}

// Settle runs b through settler and builds the settlement notification. The
// boolean is false when b has no callback and nothing needs to be published.
func Settle(settler Settler, b contracts.TransferBatch) (SettlementMessage, bool) {
	msg := SettlementMessage{BatchID: b.ID, OrderID: b.OrderID, Settled: true}
	if err := settler.Settle(b); err != nil {
		msg.Settled = false
		msg.Reason = err.Error()
	}
	if b.Callback == nil {
		return msg, false
	}
	msg.Method = b.Callback.Method
	msg.OrderID = b.Callback.OrderID
	return msg, true
}
