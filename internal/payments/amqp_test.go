package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
)

func TestBatchCodec(t *testing.T) {
	in := withCallback(batch("b1", 100, payout("seller", 10), refund("buyer", 5)))

	body, err := EncodeBatch(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"batch_id": "b1",
		"order_id": 100,
		"transfers": [
			{"to": "seller", "amount": "10", "kind": "payout"},
			{"to": "buyer", "amount": "5", "kind": "refund"}
		],
		"callback": {"method": "on_refund_complete", "order_id": 100}
	}`, string(body))

	out, err := DecodeBatch(body)
	require.NoError(t, err)
	assert.Equal(t, "b1", out.ID)
	require.Len(t, out.Transfers, 2)
	assert.Equal(t, "5", out.Transfers[1].Amount.String())
	assert.Equal(t, contracts.TransferRefund, out.Transfers[1].Kind)
	require.NotNil(t, out.Callback)
	assert.Equal(t, uint64(100), out.Callback.OrderID)

	_, err = DecodeBatch([]byte(`{"batch_id":"x","transfers":[{"to":"a","amount":"-1"}]}`))
	assert.Error(t, err)
}

func TestDecodeSettlement(t *testing.T) {
	o, err := DecodeSettlement([]byte(`{"batch_id":"b1","order_id":7,"method":"on_refund_complete","settled":false,"reason":"closed"}`))
	require.NoError(t, err)
	assert.Equal(t, contracts.RefundOutcome{OrderID: 7, BatchID: "b1", Settled: false, Reason: "closed"}, o)

	for _, body := range []string{
		`not json`,
		`{"order_id":7,"method":"on_something_else"}`,
		`{"batch_id":"b1","settled":true}`,
	} {
		_, err := DecodeSettlement([]byte(body))
		assert.Error(t, err, body)
	}
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (a *fakeAck) Ack(multiple bool) error { a.acked = true; return nil }

func (a *fakeAck) Nack(multiple, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func TestHandleSettlement(t *testing.T) {
	valid := []byte(`{"batch_id":"b1","order_id":7,"method":"on_refund_complete","settled":true}`)

	tests := []struct {
		name         string
		body         []byte
		handleErr    error
		wantAck      bool
		wantRequeued bool
	}{
		{"handled", valid, nil, true, false},
		{"malformed", []byte(`{`), nil, false, false},
		{"transient failure", valid, errors.New("unavailable"), false, true},
		{"permanent failure", valid, fmt.Errorf("%w: order not found", ErrDropMessage), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			var got *contracts.RefundOutcome
			HandleSettlement(context.Background(), tt.body, ack, func(ctx context.Context, o contracts.RefundOutcome) error {
				got = &o
				return tt.handleErr
			}, zap.NewNop())

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, !tt.wantAck, ack.nacked)
			assert.Equal(t, tt.wantRequeued, ack.requeued)
			if string(tt.body) == string(valid) {
				require.NotNil(t, got)
				assert.Equal(t, uint64(7), got.OrderID)
			}
		})
	}
}

func TestSimulatorSettle(t *testing.T) {
	ledger := NewLedger()

	msg, ok := Settle(ledger, batch("b1", 1, payout("seller", 3)))
	assert.False(t, ok)
	assert.True(t, msg.Settled)

	ledger.Reject("buyer", "frozen")
	msg, ok = Settle(ledger, withCallback(batch("b2", 2, payout("seller", 3), refund("buyer", 1))))
	require.True(t, ok)
	assert.False(t, msg.Settled)
	assert.Equal(t, contracts.CallbackRefundComplete, msg.Method)
	assert.Equal(t, uint64(2), msg.OrderID)
	assert.Contains(t, msg.Reason, "frozen")
	assert.Equal(t, "3", ledger.Balance("seller").String())

	// the settlement message round-trips through the consumer's decoder
	body := fmt.Sprintf(`{"batch_id":%q,"order_id":%d,"method":%q,"settled":%t,"reason":%q}`, msg.BatchID, msg.OrderID, msg.Method, msg.Settled, msg.Reason)
	o, err := DecodeSettlement([]byte(body))
	require.NoError(t, err)
	assert.False(t, o.Settled)
}
