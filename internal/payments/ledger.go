package payments

import (
	"fmt"
	"strings"
	"sync"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// Ledger is an in-memory account book. A batch credits every recipient or none.
type Ledger struct {
	mu       sync.Mutex
	balances map[string]domain.Amount
	rejected map[string]string
}

func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[string]domain.Amount),
		rejected: make(map[string]string),
	}
}

// Reject makes every batch with a transfer to account fail with reason.
func (l *Ledger) Reject(account, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejected[account] = reason
}

// Settle applies all transfers of b. Validation covers the whole batch before
// any balance changes.
func (l *Ledger) Settle(b contracts.TransferBatch) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make(map[string]domain.Amount, len(b.Transfers))
	for _, t := range b.Transfers {
		to := strings.TrimSpace(t.To)
		if to == "" {
			return fmt.Errorf("%s transfer has no recipient", t.Kind)
		}
		if reason, ok := l.rejected[to]; ok {
			return fmt.Errorf("%s transfer to %s rejected: %s", t.Kind, to, reason)
		}
		cur, ok := next[to]
		if !ok {
			cur = l.balances[to]
		}
		sum := cur.Add(t.Amount)
		if sum.Overflows() {
			return fmt.Errorf("%s transfer to %s overflows balance", t.Kind, to)
		}
		next[to] = sum
	}

	for acct, bal := range next {
		l.balances[acct] = bal
	}
	return nil
}

// Balance returns the amount credited to account so far.
func (l *Ledger) Balance(account string) domain.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}
