package wallet

import (
	"context"
	"errors"

	"github.com/AustinKelsay/voltage-demo-wallet/pkg/lndrest"
)

// fakeNode implements NodeClient with pluggable behavior per test.
type fakeNode struct {
	getInfo           func(ctx context.Context) (*lndrest.NodeInfo, error)
	addInvoice        func(ctx context.Context, req *lndrest.AddInvoiceRequest) (*lndrest.AddInvoiceResponse, error)
	lookupInvoice     func(ctx context.Context, hashHex string) (*lndrest.Invoice, error)
	sendPayment       func(ctx context.Context, req *lndrest.SendPaymentRequest) (*lndrest.Payment, error)
	trackPayment      func(ctx context.Context, hashHex string) (*lndrest.Payment, error)
	listPayments      func(ctx context.Context, opts lndrest.ListPaymentsOptions) (*lndrest.ListPaymentsResponse, error)
	listInvoices      func(ctx context.Context, opts lndrest.ListInvoicesOptions) (*lndrest.ListInvoicesResponse, error)
	decodePayReq      func(ctx context.Context, payReq string) (*lndrest.DecodedPayReq, error)
	subscribeInvoices func(ctx context.Context) (<-chan *lndrest.Invoice, <-chan error, error)
}

var errFakeUnset = errors.New("fake method not set")

func (f *fakeNode) GetInfo(ctx context.Context) (*lndrest.NodeInfo, error) {
	if f.getInfo == nil {
		return nil, errFakeUnset
	}
	return f.getInfo(ctx)
}

func (f *fakeNode) AddInvoice(ctx context.Context, req *lndrest.AddInvoiceRequest) (*lndrest.AddInvoiceResponse, error) {
	if f.addInvoice == nil {
		return nil, errFakeUnset
	}
	return f.addInvoice(ctx, req)
}

func (f *fakeNode) LookupInvoice(ctx context.Context, hashHex string) (*lndrest.Invoice, error) {
	if f.lookupInvoice == nil {
		return nil, errFakeUnset
	}
	return f.lookupInvoice(ctx, hashHex)
}

func (f *fakeNode) SendPayment(ctx context.Context, req *lndrest.SendPaymentRequest) (*lndrest.Payment, error) {
	if f.sendPayment == nil {
		return nil, errFakeUnset
	}
	return f.sendPayment(ctx, req)
}

func (f *fakeNode) TrackPayment(ctx context.Context, hashHex string) (*lndrest.Payment, error) {
	if f.trackPayment == nil {
		return nil, errFakeUnset
	}
	return f.trackPayment(ctx, hashHex)
}

func (f *fakeNode) ListPayments(ctx context.Context, opts lndrest.ListPaymentsOptions) (*lndrest.ListPaymentsResponse, error) {
	if f.listPayments == nil {
		return &lndrest.ListPaymentsResponse{}, nil
	}
	return f.listPayments(ctx, opts)
}

func (f *fakeNode) ListInvoices(ctx context.Context, opts lndrest.ListInvoicesOptions) (*lndrest.ListInvoicesResponse, error) {
	if f.listInvoices == nil {
		return &lndrest.ListInvoicesResponse{}, nil
	}
	return f.listInvoices(ctx, opts)
}

func (f *fakeNode) DecodePayReq(ctx context.Context, payReq string) (*lndrest.DecodedPayReq, error) {
	if f.decodePayReq == nil {
		return nil, errFakeUnset
	}
	return f.decodePayReq(ctx, payReq)
}

func (f *fakeNode) SubscribeInvoices(ctx context.Context) (<-chan *lndrest.Invoice, <-chan error, error) {
	if f.subscribeInvoices == nil {
		return nil, nil, errFakeUnset
	}
	return f.subscribeInvoices(ctx)
}
