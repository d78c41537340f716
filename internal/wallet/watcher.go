// internal/wallet/watcher.go
package wallet

import (
	"context"
	"time"

	"github.com/avast/retry-go"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"github.com/AustinKelsay/voltage-demo-wallet/pkg/lndrest"
	"go.uber.org/zap"
)

// InvoiceWatcher watches a single invoice until it reaches a terminal state
// or the context ends. Implementations differ only in capability: push rides
// the node's subscription stream, pull polls. The returned channel closes
// when watching stops.
type InvoiceWatcher interface {
	Watch(ctx context.Context, hashHex string) (<-chan *lndrest.Invoice, error)
}

// PushWatcher subscribes to the node's invoice update stream and forwards
// updates for the watched hash.
type PushWatcher struct {
	client NodeClient
}

func NewPushWatcher(client NodeClient) *PushWatcher {
	return &PushWatcher{client: client}
}

func (w *PushWatcher) Watch(ctx context.Context, hashHex string) (<-chan *lndrest.Invoice, error) {
	updates, errs, err := w.client.SubscribeInvoices(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan *lndrest.Invoice)
	go func() {
		defer close(out)
		for {
			select {
			case inv, ok := <-updates:
				if !ok {
					return
				}
				if inv.RHash != hashHex {
					continue
				}
				select {
				case out <- inv:
				case <-ctx.Done():
					return
				}
				if invoiceTerminal(inv) {
					return
				}
			case err, ok := <-errs:
				if ok && err != nil {
					logging.Warn("Invoice stream error", zap.Error(err))
				}
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// PullWatcher polls the invoice with backed-off lookups.
type PullWatcher struct {
	client   NodeClient
	interval time.Duration
	attempts uint
}

func NewPullWatcher(client NodeClient, interval time.Duration, attempts uint) *PullWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if attempts == 0 {
		attempts = 30
	}
	return &PullWatcher{client: client, interval: interval, attempts: attempts}
}

func (w *PullWatcher) Watch(ctx context.Context, hashHex string) (<-chan *lndrest.Invoice, error) {
	out := make(chan *lndrest.Invoice)

	go func() {
		defer close(out)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		var polls uint
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			polls++
			inv, err := w.lookup(ctx, hashHex)
			if err != nil {
				logging.Warn("Invoice poll failed",
					zap.String("paymentHash", hashHex),
					zap.Error(err),
				)
			} else {
				select {
				case out <- inv:
				case <-ctx.Done():
					return
				}
				if invoiceTerminal(inv) {
					return
				}
			}

			if polls >= w.attempts {
				return
			}
		}
	}()
	return out, nil
}

func (w *PullWatcher) lookup(ctx context.Context, hashHex string) (*lndrest.Invoice, error) {
	var inv *lndrest.Invoice
	err := retry.Do(
		func() error {
			var err error
			inv, err = w.client.LookupInvoice(ctx, hashHex)
			return err
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
	)
	return inv, err
}

func invoiceTerminal(inv *lndrest.Invoice) bool {
	return inv.Settled ||
		inv.State == lndrest.InvoiceStateSettled ||
		inv.State == lndrest.InvoiceStateCanceled
}

// NewInvoiceWatcher prefers push and degrades to pull: Watch tries the
// subscription first and silently falls back to polling when the stream
// cannot be opened.
func NewInvoiceWatcher(client NodeClient) InvoiceWatcher {
	return &fallbackWatcher{
		push: NewPushWatcher(client),
		pull: NewPullWatcher(client, 0, 0),
	}
}

type fallbackWatcher struct {
	push *PushWatcher
	pull *PullWatcher
}

func (w *fallbackWatcher) Watch(ctx context.Context, hashHex string) (<-chan *lndrest.Invoice, error) {
	ch, err := w.push.Watch(ctx, hashHex)
	if err == nil {
		return ch, nil
	}
	logging.Warn("Invoice subscription unavailable, polling instead", zap.Error(err))
	return w.pull.Watch(ctx, hashHex)
}
