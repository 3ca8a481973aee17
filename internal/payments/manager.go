package payments

import (
	"context"
	"sync"
	"time"

	gax "github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
)

// Settler executes a transfer batch.
type Settler interface {
	Settle(b contracts.TransferBatch) error
}

// RefundNotifier receives batch callbacks.
type RefundNotifier interface {
	NotifyRefund(ctx context.Context, outcome contracts.RefundOutcome) error
}

// RefundNotifierFunc adapts a function to RefundNotifier.
type RefundNotifierFunc func(ctx context.Context, outcome contracts.RefundOutcome) error

func (f RefundNotifierFunc) NotifyRefund(ctx context.Context, outcome contracts.RefundOutcome) error {
	return f(ctx, outcome)
}

// ManagerConfig sizes and scales the worker pool.
type ManagerConfig struct {
	InitialWorkers          int
	WorkerMin               int
	WorkerMax               int
	ScaleInterval           time.Duration
	ScaleUpBacklogPerWorker int
	ScaleDownIdleTicks      int
	HighWatermark           int

	// CallbackTimeout bounds delivery of one callback, retries included. The
	// deadline is detached from the worker, so scaling down or stopping the
	// pool does not drop a callback whose batch already settled.
	CallbackTimeout  time.Duration
	CallbackAttempts int
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.WorkerMin <= 0 {
		c.WorkerMin = 1
	}
	if c.WorkerMax < c.WorkerMin {
		c.WorkerMax = c.WorkerMin
	}
	if c.InitialWorkers < c.WorkerMin {
		c.InitialWorkers = c.WorkerMin
	}
	if c.InitialWorkers > c.WorkerMax {
		c.InitialWorkers = c.WorkerMax
	}
	if c.ScaleInterval <= 0 {
		c.ScaleInterval = 500 * time.Millisecond
	}
	if c.ScaleUpBacklogPerWorker <= 0 {
		c.ScaleUpBacklogPerWorker = 16
	}
	if c.ScaleDownIdleTicks <= 0 {
		c.ScaleDownIdleTicks = 5
	}
	if c.CallbackTimeout <= 0 {
		c.CallbackTimeout = 10 * time.Second
	}
	if c.CallbackAttempts <= 0 {
		c.CallbackAttempts = 3
	}
	return c
}

// Manager runs the workers that settle queued batches and deliver callbacks.
type Manager struct {
	cfg      ManagerConfig
	q        *Queue
	settler  Settler
	notifier RefundNotifier
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

func NewManager(cfg ManagerConfig, q *Queue, settler Settler, notifier RefundNotifier, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg.withDefaults(),
		q:        q,
		settler:  settler,
		notifier: notifier,
		logger:   logger,
	}
}

// SetNotifier wires the callback target after construction; the notifier
// and the gateway depend on each other through the order flow.
func (m *Manager) SetNotifier(n RefundNotifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

// Start begins processing and autoscaling in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.q.Start(m.ctx, m.cfg.HighWatermark)
	m.addWorkers(m.cfg.InitialWorkers)
	go m.scaler()
}

// Stop cancels the broker, the scaler and every worker.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
}

func (m *Manager) scaler() {
	t := time.NewTicker(m.cfg.ScaleInterval)
	defer t.Stop()

	idleTicks := 0
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-t.C:
			backlog := m.q.BacklogSize()
			wc := m.WorkerCount()
			if backlog > wc*m.cfg.ScaleUpBacklogPerWorker && wc < m.cfg.WorkerMax {
				m.addWorkers(1)
				idleTicks = 0
				continue
			}
			if backlog == 0 {
				idleTicks++
				if idleTicks >= m.cfg.ScaleDownIdleTicks && wc > m.cfg.WorkerMin {
					m.removeWorkers(1)
					idleTicks = 0
				}
			} else {
				idleTicks = 0
			}
		}
	}
}

func (m *Manager) addWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		go m.worker(wctx)
	}
	m.logger.Info("payment workers scaled", zap.Int("worker_count", len(m.workerCancels)))
}

func (m *Manager) removeWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.workerCancels) {
		n = len(m.workerCancels)
	}
	for i := 0; i < n; i++ {
		c := m.workerCancels[len(m.workerCancels)-1]
		m.workerCancels = m.workerCancels[:len(m.workerCancels)-1]
		c()
	}
	m.logger.Info("payment workers scaled", zap.Int("worker_count", len(m.workerCancels)))
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-m.q.Out():
			m.process(ctx, b)
			m.q.MarkProcessed()
		}
	}
}

// process settles one batch and, when the batch asks for it, reports the
// outcome through the callback.
func (m *Manager) process(ctx context.Context, b contracts.TransferBatch) {
	outcome := contracts.RefundOutcome{OrderID: b.OrderID, BatchID: b.ID, Settled: true}
	if err := m.settler.Settle(b); err != nil {
		outcome.Settled = false
		outcome.Reason = err.Error()
		m.logger.Warn("transfer batch failed",
			zap.String("batch_id", b.ID), zap.Uint64("order_id", b.OrderID), zap.Error(err))
	} else {
		m.logger.Debug("transfer batch settled",
			zap.String("batch_id", b.ID), zap.Uint64("order_id", b.OrderID), zap.Int("transfers", len(b.Transfers)))
	}

	if b.Callback == nil || b.Callback.Method != contracts.CallbackRefundComplete {
		return
	}
	m.mu.Lock()
	n := m.notifier
	m.mu.Unlock()
	if n == nil {
		m.logger.Error("no refund notifier wired", zap.String("batch_id", b.ID))
		return
	}
	outcome.OrderID = b.Callback.OrderID
	if err := m.notify(ctx, n, outcome); err != nil {
		m.logger.Error("refund callback failed",
			zap.String("batch_id", b.ID), zap.Uint64("order_id", outcome.OrderID), zap.Error(err))
	}
}

// notify delivers one callback, retrying with backoff until it succeeds, the
// attempts run out or CallbackTimeout passes.
func (m *Manager) notify(ctx context.Context, n RefundNotifier, outcome contracts.RefundOutcome) error {
	cbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.CallbackTimeout)
	defer cancel()

	bo := gax.Backoff{Initial: 10 * time.Millisecond, Max: time.Second, Multiplier: 2}
	for attempt := 1; ; attempt++ {
		err := n.NotifyRefund(cbCtx, outcome)
		if err == nil {
			return nil
		}
		if attempt >= m.cfg.CallbackAttempts {
			return err
		}
		m.logger.Warn("refund callback retry",
			zap.Uint64("order_id", outcome.OrderID), zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-cbCtx.Done():
			return err
		case <-time.After(bo.Pause()):
		}
	}
}

// WorkerCount returns the current number of workers.
func (m *Manager) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

// DrainUntil blocks until every enqueued batch is processed or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		enq, proc, backlog, depth := m.q.Metrics()
		if backlog == 0 && depth == 0 && enq == proc {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(20 * time.Millisecond):
		}
	}
}
