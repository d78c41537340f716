// internal/wallet/history.go
package wallet

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/money"
	"github.com/AustinKelsay/voltage-demo-wallet/pkg/lndrest"
	"go.uber.org/zap"
)

// genericSentLabel is the last resort when a payment's description cannot be
// resolved from its payment request or route.
const genericSentLabel = "Lightning payment"

// fetchLimit caps each node page fetch.
const fetchLimit = 100

// Historian reconciles the node's payment and invoice lists into the unified
// transaction view used by the history table. Everything is re-derived on
// every call; nothing is cached or persisted.
type Historian struct {
	client NodeClient
	now    func() time.Time
}

func NewHistorian(client NodeClient) *Historian {
	return &Historian{client: client, now: time.Now}
}

// ListTransactions fetches payments and invoices, normalizes them, applies
// the filter, and paginates. With a nil cursor the whole history is fetched
// and sliced client-side; with a cursor only the next node pages are fetched
// and the continuation offsets are returned.
func (h *Historian) ListTransactions(ctx context.Context, filter Filter, page Page) (*TransactionList, error) {
	payments, payOffset, err := h.fetchPayments(ctx, page.Cursor)
	if err != nil {
		logging.Error("Failed to load transactions", zap.Error(err))
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	invoices, invOffset, err := h.fetchInvoices(ctx, page.Cursor)
	if err != nil {
		logging.Error("Failed to load transactions", zap.Error(err))
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	txs := make([]Transaction, 0, len(payments)+len(invoices))
	for i := range payments {
		txs = append(txs, h.paymentToTransaction(ctx, &payments[i]))
	}
	for i := range invoices {
		txs = append(txs, h.invoiceToTransaction(&invoices[i]))
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})

	txs = filter.Apply(txs)

	list := &TransactionList{Total: len(txs)}
	if page.Cursor != nil {
		// cursor variant: the page is whatever the incremental fetch yielded
		list.Transactions = txs
		list.NextCursor = &Cursor{
			PaymentOffset: payOffset,
			InvoiceOffset: invOffset,
		}
	} else {
		list.Transactions = page.Slice(txs)
	}
	return list, nil
}

// maxDetailPages bounds how far back the detail lookup walks.
const maxDetailPages = 50

// Transaction returns a single reconciled transaction by its hash, for the
// detail view. There is no cache to consult, so the lookup walks the cursor
// pages until the hash turns up or the history is exhausted.
func (h *Historian) Transaction(ctx context.Context, id string) (*Transaction, error) {
	cursor := &Cursor{}
	for i := 0; i < maxDetailPages; i++ {
		list, err := h.ListTransactions(ctx, Filter{}, Page{Cursor: cursor})
		if err != nil {
			return nil, err
		}
		for j := range list.Transactions {
			if list.Transactions[j].ID == id {
				return &list.Transactions[j], nil
			}
		}
		if len(list.Transactions) == 0 || list.NextCursor == nil || *list.NextCursor == *cursor {
			break
		}
		cursor = list.NextCursor
	}
	return nil, fmt.Errorf("transaction not found")
}

func (h *Historian) fetchPayments(ctx context.Context, cursor *Cursor) ([]lndrest.Payment, uint64, error) {
	opts := lndrest.ListPaymentsOptions{
		IncludeIncomplete: true,
		MaxPayments:       fetchLimit,
		Reversed:          true,
	}
	if cursor != nil {
		opts.IndexOffset = cursor.PaymentOffset
	}

	resp, err := h.client.ListPayments(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	return resp.Payments, resp.FirstIndexOffset, nil
}

// fetchInvoices performs the two invoice calls the flow requires, pending
// first and settled second, and concatenates them. The node has no
// settled-only switch, so the second call filters settled client-side to
// avoid double-counting the pending set.
func (h *Historian) fetchInvoices(ctx context.Context, cursor *Cursor) ([]lndrest.Invoice, uint64, error) {
	pendingOpts := lndrest.ListInvoicesOptions{
		PendingOnly:    true,
		NumMaxInvoices: fetchLimit,
		Reversed:       true,
	}
	pending, err := h.client.ListInvoices(ctx, pendingOpts)
	if err != nil {
		return nil, 0, err
	}

	allOpts := lndrest.ListInvoicesOptions{
		NumMaxInvoices: fetchLimit,
		Reversed:       true,
	}
	if cursor != nil {
		allOpts.IndexOffset = cursor.InvoiceOffset
	}
	all, err := h.client.ListInvoices(ctx, allOpts)
	if err != nil {
		return nil, 0, err
	}

	invoices := make([]lndrest.Invoice, 0, len(pending.Invoices)+len(all.Invoices))
	invoices = append(invoices, pending.Invoices...)
	for _, inv := range all.Invoices {
		if inv.Settled || inv.State == lndrest.InvoiceStateSettled {
			invoices = append(invoices, inv)
		}
	}
	return invoices, all.FirstIndexOffset, nil
}

func (h *Historian) paymentToTransaction(ctx context.Context, p *lndrest.Payment) Transaction {
	date := time.Unix(p.CreationDate, 0)
	if p.CreationTimeNs > 0 {
		date = time.Unix(0, p.CreationTimeNs)
	}

	tx := Transaction{
		ID:             p.PaymentHash,
		Type:           TxTypeSent,
		Amount:         money.MsatToSat(p.ValueMsat),
		Fee:            money.MsatToSat(p.FeeMsat),
		Date:           date,
		Status:         p.Status,
		DisplayState:   DisplayStateFor(p.Status),
		PaymentRequest: p.PaymentRequest,
		RawData:        p,
	}
	tx.Description, tx.Destination = h.resolvePaymentDescription(ctx, p)
	return tx
}

// resolvePaymentDescription follows the resolution chain: decode the payment
// request remotely if present, else fall back to the last hop of the route,
// else a generic label.
func (h *Historian) resolvePaymentDescription(ctx context.Context, p *lndrest.Payment) (description, destination string) {
	if p.PaymentRequest != "" {
		decoded, err := h.client.DecodePayReq(ctx, p.PaymentRequest)
		if err == nil {
			if decoded.Description != "" {
				return decoded.Description, decoded.Destination
			}
			destination = decoded.Destination
		}
	}

	if hop := lastHop(p); hop != "" {
		if destination == "" {
			destination = hop
		}
		return "Sent to " + shortKey(hop), destination
	}

	return genericSentLabel, destination
}

func lastHop(p *lndrest.Payment) string {
	for i := len(p.HTLCs) - 1; i >= 0; i-- {
		route := p.HTLCs[i].Route
		if route != nil && len(route.Hops) > 0 {
			return route.Hops[len(route.Hops)-1].PubKey
		}
	}
	return ""
}

func shortKey(pubKey string) string {
	if len(pubKey) <= 12 {
		return pubKey
	}
	return pubKey[:12] + "…"
}

func (h *Historian) invoiceToTransaction(inv *lndrest.Invoice) Transaction {
	settled := inv.Settled || inv.State == lndrest.InvoiceStateSettled

	// settled invoices show what was actually paid, at settle time; open ones
	// show the asked amount at creation time
	amountMsat := inv.ValueMsat
	date := time.Unix(inv.CreationDate, 0)
	if settled {
		if inv.AmtPaidMsat > 0 {
			amountMsat = inv.AmtPaidMsat
		}
		if inv.SettleDate > 0 {
			date = time.Unix(inv.SettleDate, 0)
		}
	}

	expiry := time.Unix(inv.CreationDate+inv.Expiry, 0)
	expired := inv.State == lndrest.InvoiceStateOpen && inv.CreationDate+inv.Expiry < h.now().Unix()

	description := inv.Memo
	if description == "" {
		description = "Lightning invoice"
	}

	htlcState := ""
	if inv.State == lndrest.InvoiceStateAccepted {
		htlcState = lndrest.InvoiceStateAccepted
	}

	return Transaction{
		ID:             inv.RHash,
		Type:           TxTypeReceived,
		Amount:         money.MsatToSat(amountMsat),
		Date:           date,
		Description:    description,
		Status:         inv.State,
		DisplayState:   DisplayStateFor(inv.State),
		PaymentRequest: inv.PaymentRequest,
		IsExpired:      expired,
		ExpiryDate:     &expiry,
		HTLCState:      htlcState,
		RawData:        inv,
	}
}
