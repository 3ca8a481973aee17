package contracts

import (
	"time"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// CallContext carries the ambient inputs the host supplies with every call.
// It is passed explicitly into each operation; nothing reads it from globals.
type CallContext struct {
	// Caller is the opaque account handle of whoever made the call.
	Caller string
	// AttachedPayment is the amount the caller sent along with the call.
	AttachedPayment domain.Amount
	// Timestamp is the host time at which the call started.
	Timestamp time.Time
	// Self is the account handle of this service.
	Self string
}
