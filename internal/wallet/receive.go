// internal/wallet/receive.go
package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/events"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/money"
	"github.com/AustinKelsay/voltage-demo-wallet/pkg/lndrest"
	"go.uber.org/zap"
)

// DefaultInvoiceExpiry is the invoice lifetime requested from the node when
// the caller does not pick one.
const DefaultInvoiceExpiry = 3600 // seconds

// Receiver drives the receive flow: create an invoice, hand out its payment
// request, and answer user-triggered settlement checks. It caches exactly one
// invoice at a time, replaced wholesale on every creation.
type Receiver struct {
	client NodeClient
	bus    *events.Bus

	mu       sync.Mutex
	current  *LocalInvoice
	notified bool
}

func NewReceiver(client NodeClient, bus *events.Bus) *Receiver {
	return &Receiver{
		client: client,
		bus:    bus,
	}
}

// CreateInvoice asks the node for a new invoice of amountSat satoshis and
// replaces the cached invoice with it.
func (r *Receiver) CreateInvoice(ctx context.Context, amountSat int64, memo string) (*LocalInvoice, error) {
	logger := logging.With(zap.Int64("amountSat", amountSat))
	logger.Info("Creating invoice")

	valueMsat, err := money.SatToMsat(amountSat)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice amount: %w", err)
	}

	resp, err := r.client.AddInvoice(ctx, &lndrest.AddInvoiceRequest{
		Memo:      memo,
		ValueMsat: valueMsat,
		Expiry:    DefaultInvoiceExpiry,
	})
	if err != nil {
		logger.Error("Failed to create invoice", zap.Error(err))
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	inv := &LocalInvoice{
		PaymentRequest: resp.PaymentRequest,
		PaymentHash:    resp.RHash,
		ValueMsat:      valueMsat,
		Timestamp:      time.Now().Unix(),
		Expiry:         DefaultInvoiceExpiry,
		Memo:           memo,
		Settled:        false,
	}

	r.mu.Lock()
	r.current = inv
	r.notified = false
	r.mu.Unlock()

	r.bus.Publish(events.TopicInvoiceCreated, inv)

	logger.Info("Invoice created", zap.String("paymentHash", inv.PaymentHash))
	return inv, nil
}

// Current returns the cached invoice without touching the node.
func (r *Receiver) Current() *LocalInvoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	c := *r.current
	return &c
}

// CheckInvoice looks the cached invoice up on the node and refreshes the
// cache. The unsettled to settled transition happens at most once, and the
// settlement notification fires exactly once no matter how many times the
// user re-checks.
func (r *Receiver) CheckInvoice(ctx context.Context) (*LocalInvoice, error) {
	r.mu.Lock()
	cur := r.current
	r.mu.Unlock()

	if cur == nil {
		return nil, fmt.Errorf("no invoice to check")
	}

	nodeInv, err := r.client.LookupInvoice(ctx, cur.PaymentHash)
	if err != nil {
		logging.Error("Failed to look up invoice",
			zap.String("paymentHash", cur.PaymentHash),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to check payment: %w", err)
	}

	settled := nodeInv.Settled || nodeInv.State == lndrest.InvoiceStateSettled

	refreshed := &LocalInvoice{
		PaymentRequest: cur.PaymentRequest,
		PaymentHash:    cur.PaymentHash,
		ValueMsat:      nodeInv.ValueMsat,
		Timestamp:      nodeInv.CreationDate,
		Expiry:         nodeInv.Expiry,
		Memo:           nodeInv.Memo,
		Settled:        settled,
	}
	if refreshed.ValueMsat == 0 {
		refreshed.ValueMsat = cur.ValueMsat
	}
	if refreshed.Timestamp == 0 {
		refreshed.Timestamp = cur.Timestamp
	}
	if refreshed.Expiry == 0 {
		refreshed.Expiry = cur.Expiry
	}

	var notify bool
	r.mu.Lock()
	r.current = refreshed
	if settled && !r.notified {
		r.notified = true
		notify = true
	}
	r.mu.Unlock()

	if notify {
		logging.Info("Invoice settled", zap.String("paymentHash", refreshed.PaymentHash))
		r.bus.Publish(events.TopicTransactionNew, refreshed)
	}

	return refreshed, nil
}

// ApplyUpdate folds a pushed invoice update into the cache, if it refers to
// the cached invoice. Used by the push watcher path.
func (r *Receiver) ApplyUpdate(inv *lndrest.Invoice) {
	settled := inv.Settled || inv.State == lndrest.InvoiceStateSettled

	// The hash check and the mutation share one critical section so an update
	// for a replaced invoice can never mark the new one settled.
	var notify bool
	var snapshot *LocalInvoice
	r.mu.Lock()
	if r.current == nil || inv.RHash != r.current.PaymentHash {
		r.mu.Unlock()
		return
	}
	r.current.Settled = settled
	if settled && !r.notified {
		r.notified = true
		notify = true
	}
	copied := *r.current
	snapshot = &copied
	r.mu.Unlock()

	if notify {
		r.bus.Publish(events.TopicTransactionNew, snapshot)
	}
}
