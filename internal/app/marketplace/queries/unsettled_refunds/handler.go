package unsettled_refunds

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/dto"
)

// Refund statuses reported by the query.
const (
	StatusPending      = "pending"
	StatusFailed       = "failed"
	StatusSubmitFailed = "submit_failed"
)

// Handler derives the refunds that still need attention from the outbox.
// A refund is unsettled while its order has a refund.scheduled event and no
// refund.settled event.
type Handler struct {
	events contracts.OutboxReader
}

func NewHandler(r contracts.OutboxReader) *Handler {
	return &Handler{events: r}
}

type eventPayload struct {
	OrderID uint64 `json:"order_id"`
	Buyer   string `json:"buyer"`
	Amount  string `json:"amount"`
	Reason  string `json:"reason"`
}

// Execute returns unsettled refunds ordered by order id.
func (h *Handler) Execute(ctx context.Context) ([]*dto.UnsettledRefundDTO, error) {
	events, err := h.events.ListEvents(ctx,
		domain.EventRefundScheduled,
		domain.EventRefundSettled,
		domain.EventRefundFailed,
		domain.EventPaymentSubmitFailed,
	)
	if err != nil {
		return nil, err
	}

	payloads := make([]eventPayload, len(events))
	for i, ev := range events {
		if err := json.Unmarshal([]byte(ev.PayloadJSON), &payloads[i]); err != nil {
			return nil, fmt.Errorf("decode %s event %s: %w", ev.EventType, ev.EventID, err)
		}
	}

	// Outcome events may share a timestamp with the scheduling event, so
	// scheduled refunds are collected before any outcome is applied.
	byOrder := make(map[uint64]*dto.UnsettledRefundDTO)
	for i, ev := range events {
		if ev.EventType != domain.EventRefundScheduled {
			continue
		}
		p := payloads[i]
		byOrder[p.OrderID] = &dto.UnsettledRefundDTO{
			OrderID: p.OrderID,
			Buyer:   p.Buyer,
			Amount:  p.Amount,
			Status:  StatusPending,
			Since:   ev.CreatedAtUTC,
		}
	}

	settled := make(map[uint64]bool)
	for i, ev := range events {
		p := payloads[i]
		switch ev.EventType {
		case domain.EventRefundSettled:
			settled[p.OrderID] = true
		case domain.EventRefundFailed:
			markFailed(byOrder, p, StatusFailed, ev.CreatedAtUTC)
		case domain.EventPaymentSubmitFailed:
			markFailed(byOrder, p, StatusSubmitFailed, ev.CreatedAtUTC)
		}
	}

	out := make([]*dto.UnsettledRefundDTO, 0, len(byOrder))
	for id, r := range byOrder {
		if settled[id] {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

// markFailed only applies to orders that scheduled a refund; submit failures
// of exact-payment orders carry no refund.
func markFailed(byOrder map[uint64]*dto.UnsettledRefundDTO, p eventPayload, status string, at time.Time) {
	r, ok := byOrder[p.OrderID]
	if !ok {
		return
	}
	r.Status = status
	r.Reason = p.Reason
	r.Since = at
}
