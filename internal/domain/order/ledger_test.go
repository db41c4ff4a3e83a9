package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrega-app/entrega/internal/domain/cart"
)

func testRequest() CreateRequest {
	return CreateRequest{
		Items: []cart.Line{{
			Key:       "1",
			ItemID:    "1",
			Name:      "Pizza Margherita",
			UnitPrice: decimal.RequireFromString("32.90"),
			Quantity:  2,
		}},
		Totals: cart.Totals{
			ItemCount:   2,
			Subtotal:    decimal.RequireFromString("65.80"),
			DeliveryFee: decimal.RequireFromString("4.99"),
			Discount:    decimal.Zero,
			GrandTotal:  decimal.RequireFromString("70.79"),
		},
		DeliveryAddress: "Rua das Flores, 123",
		PaymentMethod:   "credit",
		EtaMinutes:      35,
	}
}

// waitDelivered polls the ledger until the order reaches delivered and
// returns every distinct status observed, in order.
func waitDelivered(t *testing.T, l *Ledger, id string) []Status {
	t.Helper()

	var seen []Status
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("order %s never delivered, saw %v", id, seen)
		default:
		}

		o, err := l.Get(id)
		require.NoError(t, err)
		if len(seen) == 0 || seen[len(seen)-1] != o.Status {
			seen = append(seen, o.Status)
		}
		if o.Status.Terminal() {
			return seen
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLedgerCreate(t *testing.T) {
	l := NewLedger(LedgerConfig{StageInterval: time.Hour}, nil)
	defer l.Close()

	o := l.Create(testRequest())
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Nil(t, o.Courier)
	assert.Equal(t, 35, o.EtaMinutes)
	assert.True(t, decimal.RequireFromString("70.79").Equal(o.Total))
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestLedgerCreate_UniqueIDs(t *testing.T) {
	l := NewLedger(LedgerConfig{StageInterval: time.Hour}, nil)
	defer l.Close()

	ids := make(map[string]struct{})
	for range 50 {
		o := l.Create(testRequest())
		ids[o.ID] = struct{}{}
	}
	assert.Len(t, ids, 50)
}

func TestLedgerGet_NotFound(t *testing.T) {
	l := NewLedger(LedgerConfig{StageInterval: time.Hour}, nil)
	defer l.Close()

	_, err := l.Get("no-such-order")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerSimulation_FullSequence(t *testing.T) {
	l := NewLedger(LedgerConfig{StageInterval: 5 * time.Millisecond}, nil)
	defer l.Close()

	o := l.Create(testRequest())
	seen := waitDelivered(t, l, o.ID)

	// Every observation run is a suffix-complete subsequence of the fixed
	// sequence: no skips backwards, never revisited, ends delivered.
	expect := []Status{StatusConfirmed, StatusPreparing, StatusOnWay, StatusDelivered}
	assert.Subset(t, expect, seen)
	assert.Equal(t, StatusDelivered, seen[len(seen)-1])
	last := -1
	for _, s := range seen {
		i := s.index()
		assert.Greater(t, i, last, "status %s regressed or repeated", s)
		last = i
	}
}

func TestLedgerSimulation_CourierAssigned(t *testing.T) {
	l := NewLedger(LedgerConfig{StageInterval: 5 * time.Millisecond}, nil)
	defer l.Close()

	o := l.Create(testRequest())
	waitDelivered(t, l, o.ID)

	final, err := l.Get(o.ID)
	require.NoError(t, err)
	require.NotNil(t, final.Courier)
	assert.NotEmpty(t, final.Courier.Name)
	assert.Greater(t, final.Courier.Rating, 0.0)
	assert.True(t, final.UpdatedAt.After(final.CreatedAt))
}

func TestLedgerSimulation_CouriersCycle(t *testing.T) {
	l := NewLedger(LedgerConfig{StageInterval: 2 * time.Millisecond}, nil)
	defer l.Close()

	names := make(map[string]struct{})
	for range 4 {
		o := l.Create(testRequest())
		waitDelivered(t, l, o.ID)
		final, err := l.Get(o.ID)
		require.NoError(t, err)
		require.NotNil(t, final.Courier)
		names[final.Courier.Name] = struct{}{}
	}
	// Four orders through a three-courier roster touch every courier.
	assert.Len(t, names, 3)
}

func TestLedgerGet_SnapshotIsolated(t *testing.T) {
	l := NewLedger(LedgerConfig{StageInterval: time.Hour}, nil)
	defer l.Close()

	created := l.Create(testRequest())
	snap, err := l.Get(created.ID)
	require.NoError(t, err)

	snap.Items[0].Quantity = 99
	snap.Status = StatusDelivered

	fresh, err := l.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Items[0].Quantity)
	assert.Equal(t, StatusConfirmed, fresh.Status)
}

func TestLedgerClose(t *testing.T) {
	l := NewLedger(LedgerConfig{StageInterval: time.Hour}, nil)
	o := l.Create(testRequest())

	l.Close()
	l.Close() // idempotent

	// Orders stay readable after Close; the status just stops moving.
	got, err := l.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
}
