package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// TransferMessage is the wire form of one transfer. Amounts travel as base-10 strings.
type TransferMessage struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
	Kind   string `json:"kind"`
}

// CallbackMessage names the method the settlement service calls back.
type CallbackMessage struct {
	Method  string `json:"method"`
	OrderID uint64 `json:"order_id"`
}

// BatchMessage is published for every submitted batch.
type BatchMessage struct {
	BatchID   string            `json:"batch_id"`
	OrderID   uint64            `json:"order_id"`
	Transfers []TransferMessage `json:"transfers"`
	Callback  *CallbackMessage  `json:"callback,omitempty"`
}

// SettlementMessage is what the settlement service publishes once a batch
// with a callback settles or fails.
type SettlementMessage struct {
	BatchID string `json:"batch_id"`
	OrderID uint64 `json:"order_id"`
	Method  string `json:"method"`
	Settled bool   `json:"settled"`
	Reason  string `json:"reason,omitempty"`
}

func EncodeBatch(b contracts.TransferBatch) ([]byte, error) {
	msg := BatchMessage{
		BatchID:   b.ID,
		OrderID:   b.OrderID,
		Transfers: make([]TransferMessage, 0, len(b.Transfers)),
	}
	for _, t := range b.Transfers {
		msg.Transfers = append(msg.Transfers, TransferMessage{To: t.To, Amount: t.Amount.String(), Kind: string(t.Kind)})
	}
	if b.Callback != nil {
		msg.Callback = &CallbackMessage{Method: b.Callback.Method, OrderID: b.Callback.OrderID}
	}
	return json.Marshal(&msg)
}

func DecodeBatch(body []byte) (contracts.TransferBatch, error) {
	var msg BatchMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return contracts.TransferBatch{}, err
	}
	b := contracts.TransferBatch{ID: msg.BatchID, OrderID: msg.OrderID}
	for _, t := range msg.Transfers {
		amt, err := domain.ParseAmount(t.Amount)
		if err != nil {
			return contracts.TransferBatch{}, fmt.Errorf("transfer to %s: %w", t.To, err)
		}
		b.Transfers = append(b.Transfers, contracts.Transfer{To: t.To, Amount: amt, Kind: contracts.TransferKind(t.Kind)})
	}
	if msg.Callback != nil {
		b.Callback = &contracts.Callback{Method: msg.Callback.Method, OrderID: msg.Callback.OrderID}
	}
	return b, nil
}

// DecodeSettlement parses a settlement notification into the callback outcome.
func DecodeSettlement(body []byte) (contracts.RefundOutcome, error) {
	var msg SettlementMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return contracts.RefundOutcome{}, err
	}
	if msg.Method != "" && msg.Method != contracts.CallbackRefundComplete {
		return contracts.RefundOutcome{}, fmt.Errorf("unknown callback method %q", msg.Method)
	}
	if msg.OrderID == 0 {
		return contracts.RefundOutcome{}, errors.New("settlement message has no order id")
	}
	return contracts.RefundOutcome{
		OrderID: msg.OrderID,
		BatchID: msg.BatchID,
		Settled: msg.Settled,
		Reason:  msg.Reason,
	}, nil
}

// AMQPGateway publishes batches to a durable queue consumed by an external
// settlement service.
type AMQPGateway struct {
	queue string

	mu sync.Mutex
	ch *amqp.Channel
}

// NewAMQPGateway opens a channel on conn and declares the batch queue.
func NewAMQPGateway(conn *amqp.Connection, queue string) (*AMQPGateway, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPGateway{queue: queue, ch: ch}, nil
}

var _ contracts.PaymentGateway = (*AMQPGateway)(nil)

func (g *AMQPGateway) Submit(ctx context.Context, b contracts.TransferBatch) error {
	body, err := EncodeBatch(b)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ch.PublishWithContext(
		ctx,
		"",
		g.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    b.ID,
			Body:         body,
		},
	)
}

func (g *AMQPGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ch.Close()
}

// ErrDropMessage marks a handler failure that redelivery cannot fix.
var ErrDropMessage = errors.New("payments: drop message")

// SettlementHandler processes one settlement outcome.
type SettlementHandler func(ctx context.Context, outcome contracts.RefundOutcome) error

// ConsumeSettlements delivers settlement notifications from queue to handle
// until ctx is done or the delivery channel closes. Messages are acked on
// success, dropped when malformed or when handle wraps ErrDropMessage, and
// requeued otherwise.
func ConsumeSettlements(ctx context.Context, conn *amqp.Connection, queue string, handle SettlementHandler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	logger.Info("settlement consumer started", zap.String("queue", queue))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("settlement delivery channel closed")
			}
			handleDelivery(ctx, d, handle, logger)
		}
	}
}

// Acknowledger is the subset of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handle SettlementHandler, logger *zap.Logger) {
	HandleSettlement(ctx, d.Body, &d, handle, logger)
}

// HandleSettlement decodes body, runs handle and acks or nacks through ack.
func HandleSettlement(ctx context.Context, body []byte, ack Acknowledger, handle SettlementHandler, logger *zap.Logger) {
	outcome, err := DecodeSettlement(body)
	if err != nil {
		logger.Warn("invalid settlement message", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	if err := handle(ctx, outcome); err != nil {
		requeue := !errors.Is(err, ErrDropMessage)
		logger.Error("settlement not recorded",
			zap.Uint64("order_id", outcome.OrderID),
			zap.String("batch_id", outcome.BatchID),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		_ = ack.Nack(false, requeue)
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Warn("ack settlement message", zap.Error(err))
	}
}
