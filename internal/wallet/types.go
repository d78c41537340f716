// internal/wallet/types.go
package wallet

import (
	"context"
	"time"

	"github.com/AustinKelsay/voltage-demo-wallet/pkg/lndrest"
)

// NodeClient is the slice of the node boundary the wallet flows consume.
// *lndrest.Client satisfies it; tests substitute fakes.
type NodeClient interface {
	GetInfo(ctx context.Context) (*lndrest.NodeInfo, error)
	AddInvoice(ctx context.Context, req *lndrest.AddInvoiceRequest) (*lndrest.AddInvoiceResponse, error)
	LookupInvoice(ctx context.Context, hashHex string) (*lndrest.Invoice, error)
	SendPayment(ctx context.Context, req *lndrest.SendPaymentRequest) (*lndrest.Payment, error)
	TrackPayment(ctx context.Context, hashHex string) (*lndrest.Payment, error)
	ListPayments(ctx context.Context, opts lndrest.ListPaymentsOptions) (*lndrest.ListPaymentsResponse, error)
	ListInvoices(ctx context.Context, opts lndrest.ListInvoicesOptions) (*lndrest.ListInvoicesResponse, error)
	DecodePayReq(ctx context.Context, payReq string) (*lndrest.DecodedPayReq, error)
	SubscribeInvoices(ctx context.Context) (<-chan *lndrest.Invoice, <-chan error, error)
}

// TxType distinguishes outgoing payments from incoming invoices.
type TxType string

const (
	TxTypeSent     TxType = "sent"
	TxTypeReceived TxType = "received"
)

// DisplayState is the fixed palette the UI renders raw node states into.
type DisplayState string

const (
	DisplaySuccess DisplayState = "success"
	DisplayError   DisplayState = "error"
	DisplayPending DisplayState = "pending"
	DisplayWaiting DisplayState = "waiting"
)

// displayStates maps every raw node state to its display bucket.
var displayStates = map[string]DisplayState{
	lndrest.PaymentStatusSucceeded: DisplaySuccess,
	lndrest.InvoiceStateSettled:    DisplaySuccess,
	lndrest.PaymentStatusFailed:    DisplayError,
	lndrest.InvoiceStateCanceled:   DisplayError,
	lndrest.PaymentStatusInFlight:  DisplayPending,
	lndrest.PaymentStatusPending:   DisplayPending,
	lndrest.InvoiceStateAccepted:   DisplayPending,
	lndrest.InvoiceStateOpen:       DisplayWaiting,
}

// DisplayStateFor buckets a raw node state; unknown states render as pending
// rather than lying about an outcome.
func DisplayStateFor(raw string) DisplayState {
	if s, ok := displayStates[raw]; ok {
		return s
	}
	return DisplayPending
}

// Transaction is the unified view model the history surface renders. It is
// derived, never authoritative: rebuilt from node responses on every fetch,
// identified only by the node's payment hash.
type Transaction struct {
	ID             string       `json:"id"`
	Type           TxType       `json:"type"`
	Amount         int64        `json:"amount"` // sats
	Fee            int64        `json:"fee"`    // sats
	Date           time.Time    `json:"date"`
	Description    string       `json:"description"`
	Status         string       `json:"status"`
	DisplayState   DisplayState `json:"displayState"`
	PaymentRequest string       `json:"paymentRequest,omitempty"`
	Destination    string       `json:"destination,omitempty"`
	IsExpired      bool         `json:"isExpired,omitempty"`
	ExpiryDate     *time.Time   `json:"expiryDate,omitempty"`
	HTLCState      string       `json:"htlcState,omitempty"`
	RawData        interface{}  `json:"rawData,omitempty"`
}

// LocalInvoice is the client-side cache of the most recently created invoice,
// replaced wholesale on each creation or status check.
type LocalInvoice struct {
	PaymentRequest string `json:"payment_request"`
	PaymentHash    string `json:"payment_hash"`
	ValueMsat      int64  `json:"value_msat,string"`
	Timestamp      int64  `json:"timestamp"`
	Expiry         int64  `json:"expiry"`
	Memo           string `json:"memo,omitempty"`
	Settled        bool   `json:"settled"`
}

// IsExpired reports whether an unsettled invoice is past its expiry window.
// Settlement always wins over expiry.
func (inv *LocalInvoice) IsExpired(now time.Time) bool {
	if inv.Settled {
		return false
	}
	return inv.Timestamp+inv.Expiry < now.Unix()
}
