// pkg/lndrest/types.go
package lndrest

// Invoice states as reported by the node.
const (
	InvoiceStateOpen     = "OPEN"
	InvoiceStateSettled  = "SETTLED"
	InvoiceStateCanceled = "CANCELED"
	InvoiceStateAccepted = "ACCEPTED"
)

// Payment states as reported by the node.
const (
	PaymentStatusInFlight  = "IN_FLIGHT"
	PaymentStatusSucceeded = "SUCCEEDED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusPending   = "PENDING"
)

type AddInvoiceRequest struct {
	Memo      string `json:"memo,omitempty"`
	ValueMsat int64  `json:"value_msat,string"`
	Expiry    int64  `json:"expiry,string,omitempty"`
}

type AddInvoiceResponse struct {
	RHash          string `json:"r_hash"`
	PaymentRequest string `json:"payment_request"`
	AddIndex       uint64 `json:"add_index,string"`
	PaymentAddr    string `json:"payment_addr"`
}

type Invoice struct {
	Memo           string `json:"memo"`
	RHash          string `json:"r_hash"`
	Value          int64  `json:"value,string"`
	ValueMsat      int64  `json:"value_msat,string"`
	Settled        bool   `json:"settled"`
	CreationDate   int64  `json:"creation_date,string"`
	SettleDate     int64  `json:"settle_date,string"`
	PaymentRequest string `json:"payment_request"`
	Expiry         int64  `json:"expiry,string"`
	AmtPaidMsat    int64  `json:"amt_paid_msat,string"`
	State          string `json:"state"`
	AddIndex       uint64 `json:"add_index,string"`
}

type ListInvoicesResponse struct {
	Invoices         []Invoice `json:"invoices"`
	FirstIndexOffset uint64    `json:"first_index_offset,string"`
	LastIndexOffset  uint64    `json:"last_index_offset,string"`
}

type Hop struct {
	ChanID  uint64 `json:"chan_id,string"`
	PubKey  string `json:"pub_key"`
	AmtMsat int64  `json:"amt_to_forward_msat,string"`
}

type Route struct {
	TotalAmtMsat  int64 `json:"total_amt_msat,string"`
	TotalFeesMsat int64 `json:"total_fees_msat,string"`
	Hops          []Hop `json:"hops"`
}

type HTLCAttempt struct {
	Status string `json:"status"`
	Route  *Route `json:"route,omitempty"`
}

type Payment struct {
	PaymentHash     string        `json:"payment_hash"`
	ValueMsat       int64         `json:"value_msat,string"`
	FeeMsat         int64         `json:"fee_msat,string"`
	CreationTimeNs  int64         `json:"creation_time_ns,string"`
	CreationDate    int64         `json:"creation_date,string"`
	PaymentRequest  string        `json:"payment_request"`
	Status          string        `json:"status"`
	PaymentPreimage string        `json:"payment_preimage"`
	FailureReason   string        `json:"failure_reason"`
	HTLCs           []HTLCAttempt `json:"htlcs"`
	PaymentIndex    uint64        `json:"payment_index,string"`
}

type ListPaymentsResponse struct {
	Payments         []Payment `json:"payments"`
	FirstIndexOffset uint64    `json:"first_index_offset,string"`
	LastIndexOffset  uint64    `json:"last_index_offset,string"`
}

type SendPaymentRequest struct {
	PaymentRequest string `json:"payment_request"`
	TimeoutSeconds int64  `json:"timeout_seconds"`
	FeeLimitSat    int64  `json:"fee_limit_sat,string,omitempty"`
}

type DecodedPayReq struct {
	Destination string `json:"destination"`
	PaymentHash string `json:"payment_hash"`
	NumSatoshis int64  `json:"num_satoshis,string"`
	NumMsat     int64  `json:"num_msat,string"`
	Timestamp   int64  `json:"timestamp,string"`
	Expiry      int64  `json:"expiry,string"`
	Description string `json:"description"`
}

type NodeInfo struct {
	Alias          string `json:"alias"`
	IdentityPubkey string `json:"identity_pubkey"`
	BlockHeight    uint32 `json:"block_height"`
	SyncedToChain  bool   `json:"synced_to_chain"`
	Version        string `json:"version"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
