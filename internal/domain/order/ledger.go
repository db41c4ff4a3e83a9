package order

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/entrega-app/entrega/internal/domain/cart"
)

// couriers is the demo roster. Assignment cycles through it in order.
var couriers = []Courier{
	{Name: "Carlos Oliveira", Photo: "/couriers/carlos.jpg", Rating: 4.9},
	{Name: "Ana Souza", Photo: "/couriers/ana.jpg", Rating: 4.8},
	{Name: "João Pereira", Photo: "/couriers/joao.jpg", Rating: 4.7},
}

// LedgerConfig controls the delivery simulation timing.
type LedgerConfig struct {
	// StageInterval is the time between consecutive status transitions.
	// Demo-friendly short intervals, not real delivery ETAs.
	StageInterval time.Duration
}

// CreateRequest holds the checkout snapshot an order is created from. Items
// and totals are consumed as plain data; the ledger never holds a live
// reference into the cart.
type CreateRequest struct {
	Items           []cart.Line
	Totals          cart.Totals
	DeliveryAddress string
	PaymentMethod   string
	EtaMinutes      int
}

// Ledger maps order IDs to orders for the life of the process and owns the
// status-progression simulation. Each created order gets one background
// goroutine that advances its status on a fixed schedule until delivered.
// The simulation's lifetime belongs to the ledger, not to any observer:
// readers poll Get and may come and go freely.
type Ledger struct {
	cfg LedgerConfig
	lg  *zap.Logger

	mu          sync.RWMutex
	orders      map[string]*Order
	nextCourier int

	done     chan struct{}
	closeOne sync.Once
	wg       sync.WaitGroup
}

// NewLedger creates an empty ledger. Call Close to stop all simulation
// goroutines.
func NewLedger(cfg LedgerConfig, lg *zap.Logger) *Ledger {
	if cfg.StageInterval <= 0 {
		cfg.StageInterval = 20 * time.Second
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Ledger{
		cfg:    cfg,
		lg:     lg,
		orders: make(map[string]*Order),
		done:   make(chan struct{}),
	}
}

// Create freezes the given snapshot into a new order with status confirmed,
// stores it under a fresh unique ID, and starts its delivery simulation.
// It returns a value snapshot of the stored order.
func (l *Ledger) Create(req CreateRequest) Order {
	now := time.Now()
	o := &Order{
		ID:              uuid.New().String(),
		Items:           append([]cart.Line(nil), req.Items...),
		Status:          StatusConfirmed,
		Subtotal:        req.Totals.Subtotal,
		DeliveryFee:     req.Totals.DeliveryFee,
		Discount:        req.Totals.Discount,
		Total:           req.Totals.GrandTotal,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		EtaMinutes:      req.EtaMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if o.Total.IsNegative() {
		o.Total = decimal.Zero
	}

	l.mu.Lock()
	l.orders[o.ID] = o
	l.mu.Unlock()

	l.lg.Info("Order created",
		zap.String("order_id", o.ID),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.Total.StringFixed(2)),
	)

	l.wg.Add(1)
	go l.simulate(o.ID)

	return o.clone()
}

// Get returns the current snapshot of the order with the given ID. The
// snapshot reflects the latest simulated status at call time. Unknown IDs
// yield ErrNotFound.
func (l *Ledger) Get(id string) (Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	o, ok := l.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o.clone(), nil
}

// simulate drives one order through the status sequence, one transition per
// stage interval, until the order is delivered or the ledger is closed.
func (l *Ledger) simulate(id string) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.cfg.StageInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			if l.advance(id) {
				return
			}
		}
	}
}

// advance moves the order one step forward in the status sequence and
// reports whether the order has reached its terminal state. The courier is
// assigned exactly on the transition into on_way and never changes after.
func (l *Ledger) advance(id string) (terminal bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.orders[id]
	if !ok {
		return true
	}

	next, ok := o.Status.Next()
	if !ok {
		return true
	}
	o.Status = next
	o.UpdatedAt = time.Now()

	if next == StatusOnWay {
		c := couriers[l.nextCourier%len(couriers)]
		l.nextCourier++
		o.Courier = &c
	}

	l.lg.Debug("Order status advanced",
		zap.String("order_id", id),
		zap.String("status", string(next)),
	)
	return next.Terminal()
}

// Close stops all simulation goroutines and waits for them to exit. Orders
// remain readable after Close; their status simply stops advancing. Safe to
// call more than once.
func (l *Ledger) Close() {
	l.closeOne.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
}
