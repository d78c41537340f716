// internal/wallet/filter.go
package wallet

import "time"

// Filter is the ephemeral client-side filter state: type set, status set and
// date range. Empty sets and zero times mean "no restriction".
type Filter struct {
	Types    []TxType       `json:"types,omitempty"`
	Statuses []DisplayState `json:"statuses,omitempty"`
	From     time.Time      `json:"from,omitempty"`
	To       time.Time      `json:"to,omitempty"`
}

func (f Filter) matches(tx Transaction) bool {
	if len(f.Types) > 0 && !containsType(f.Types, tx.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !containsState(f.Statuses, tx.DisplayState) {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	return true
}

// Apply returns the transactions passing the filter, preserving order.
func (f Filter) Apply(txs []Transaction) []Transaction {
	if len(f.Types) == 0 && len(f.Statuses) == 0 && f.From.IsZero() && f.To.IsZero() {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func containsType(set []TxType, t TxType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

func containsState(set []DisplayState, s DisplayState) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

// Cursor carries the node index offsets needed to continue an incremental
// fetch. Opaque to the UI; it round-trips through the list response.
type Cursor struct {
	PaymentOffset uint64 `json:"paymentOffset"`
	InvoiceOffset uint64 `json:"invoiceOffset"`
}

// Page selects the pagination variant: plain offset/limit slicing over the
// fully fetched list, or cursor continuation against the node.
type Page struct {
	Offset int
	Limit  int
	Cursor *Cursor
}

// Slice applies offset/limit to an already-filtered list. Limit 0 means
// everything.
func (p Page) Slice(txs []Transaction) []Transaction {
	if p.Offset >= len(txs) {
		return []Transaction{}
	}
	txs = txs[p.Offset:]
	if p.Limit > 0 && p.Limit < len(txs) {
		txs = txs[:p.Limit]
	}
	return txs
}

// TransactionList is the paginated history result.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	NextCursor   *Cursor       `json:"nextCursor,omitempty"`
}
