package lndrest

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{
		BaseURL:  srv.URL,
		Macaroon: "0201deadbeef",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestRequestsCarryMacaroonHeader(t *testing.T) {
	var gotMacaroon string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMacaroon = r.Header.Get("Grpc-Metadata-macaroon")
		w.Write([]byte(`{"alias":"test-node","identity_pubkey":"02aa","block_height":800000,"synced_to_chain":true}`))
	})

	info, err := client.GetInfo(context.Background())
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if gotMacaroon != "0201deadbeef" {
		t.Fatalf("macaroon header = %q", gotMacaroon)
	}
	if info.Alias != "test-node" || info.BlockHeight != 800000 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestAddInvoiceNormalizesHash(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/invoices" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		// the node base64-encodes byte fields
		w.Write([]byte(`{"r_hash":"qrvM3Q==","payment_request":"lnbc10n1fake","add_index":"5"}`))
	})

	resp, err := client.AddInvoice(context.Background(), &AddInvoiceRequest{ValueMsat: 10000, Memo: "test"})
	if err != nil {
		t.Fatalf("AddInvoice: %v", err)
	}
	if resp.RHash != "aabbccdd" {
		t.Fatalf("r_hash = %q, want aabbccdd", resp.RHash)
	}
	if resp.AddIndex != 5 {
		t.Fatalf("add_index = %d, want 5", resp.AddIndex)
	}
}

// The router track endpoint takes the hash as a bytes path parameter, so the
// gateway expects URL-safe base64 of the raw hash rather than hex.
func TestTrackPaymentEncodesHashAsBase64URL(t *testing.T) {
	hashHex := strings.Repeat("aabbccdd", 8)
	raw, err := hex.DecodeString(hashHex)
	if err != nil {
		t.Fatalf("hex.DecodeString: %v", err)
	}

	var gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"result":{"payment_hash":"` + hashHex + `","status":"SUCCEEDED","value_msat":"10000"}}`))
	})

	payment, err := client.TrackPayment(context.Background(), hashHex)
	if err != nil {
		t.Fatalf("TrackPayment: %v", err)
	}
	if payment.Status != PaymentStatusSucceeded {
		t.Fatalf("status = %q, want SUCCEEDED", payment.Status)
	}

	want := "/v2/router/track/" + base64.RawURLEncoding.EncodeToString(raw)
	if gotPath != want {
		t.Fatalf("track path = %q, want %q", gotPath, want)
	}
}

func TestTrackPaymentRejectsMalformedHash(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a malformed hash")
	})

	if _, err := client.TrackPayment(context.Background(), "not-hex"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

// The payment response may be newline-delimited states; only the last counts.
func TestSendPaymentKeepsLastStreamedState(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"payment_hash":"aa","status":"IN_FLIGHT","value_msat":"10000"}}` + "\n" +
			`{"result":{"payment_hash":"aa","status":"SUCCEEDED","value_msat":"10000","fee_msat":"1000","payment_preimage":"beef"}}` + "\n"))
	})

	p, err := client.SendPayment(context.Background(), &SendPaymentRequest{PaymentRequest: "lnbc1fake", TimeoutSeconds: 5})
	if err != nil {
		t.Fatalf("SendPayment: %v", err)
	}
	if p.Status != PaymentStatusSucceeded {
		t.Fatalf("status = %q, want SUCCEEDED", p.Status)
	}
	if p.FeeMsat != 1000 {
		t.Fatalf("fee_msat = %d, want 1000", p.FeeMsat)
	}
}

// A single bare JSON object is just as valid as a stream.
func TestSendPaymentAcceptsSingleObject(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payment_hash":"bb","status":"SUCCEEDED","value_msat":"21000"}`))
	})

	p, err := client.SendPayment(context.Background(), &SendPaymentRequest{PaymentRequest: "lnbc1fake"})
	if err != nil {
		t.Fatalf("SendPayment: %v", err)
	}
	if p.PaymentHash != "bb" || p.Status != PaymentStatusSucceeded {
		t.Fatalf("unexpected payment: %+v", p)
	}
}

func TestSendPaymentRejectsMalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	})

	_, err := client.SendPayment(context.Background(), &SendPaymentRequest{PaymentRequest: "lnbc1fake"})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "unable to parse payment response") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendPaymentSurfacesStreamedError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"invoice is already paid"}}`))
	})

	_, err := client.SendPayment(context.Background(), &SendPaymentRequest{PaymentRequest: "lnbc1fake"})
	if err == nil || !strings.Contains(err.Error(), "invoice is already paid") {
		t.Fatalf("expected streamed node error, got %v", err)
	}
}

func TestListInvoicesQueryAndNormalization(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("pending_only") != "true" {
			t.Errorf("pending_only = %q", q.Get("pending_only"))
		}
		if q.Get("num_max_invoices") != "50" {
			t.Errorf("num_max_invoices = %q", q.Get("num_max_invoices"))
		}
		w.Write([]byte(`{"invoices":[{"r_hash":"qrvM3Q==","state":"OPEN","value_msat":"5000","creation_date":"100","expiry":"3600"}],"first_index_offset":"9","last_index_offset":"12"}`))
	})

	resp, err := client.ListInvoices(context.Background(), ListInvoicesOptions{PendingOnly: true, NumMaxInvoices: 50})
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(resp.Invoices) != 1 || resp.Invoices[0].RHash != "aabbccdd" {
		t.Fatalf("unexpected invoices: %+v", resp.Invoices)
	}
	if resp.FirstIndexOffset != 9 || resp.LastIndexOffset != 12 {
		t.Fatalf("unexpected offsets: %+v", resp)
	}
}

func TestNodeErrorsAreReported(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"unable to locate invoice"}`))
	})

	_, err := client.LookupInvoice(context.Background(), "aabb")
	if err == nil || !strings.Contains(err.Error(), "unable to locate invoice") {
		t.Fatalf("expected node error message, got %v", err)
	}
}

func TestSubscribeInvoicesStreamsUpdates(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"r_hash":"qrvM3Q==","state":"OPEN"}}` + "\n" +
			`{"result":{"r_hash":"qrvM3Q==","state":"SETTLED","settled":true}}` + "\n"))
	})

	updates, errs, err := client.SubscribeInvoices(context.Background())
	if err != nil {
		t.Fatalf("SubscribeInvoices: %v", err)
	}

	var got []*Invoice
	for inv := range updates {
		got = append(got, inv)
	}
	if err := <-errs; err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(got))
	}
	if got[0].RHash != "aabbccdd" || !got[1].Settled {
		t.Fatalf("unexpected updates: %+v %+v", got[0], got[1])
	}
}

func TestHashToHex(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"AABBCC":   "aabbcc",   // already hex, lowercased
		"qrvM3Q==": "aabbccdd", // std base64
	}
	for in, want := range cases {
		if got := HashToHex(in); got != want {
			t.Fatalf("HashToHex(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	if _, err := NewClient(&Config{Macaroon: "aa"}); err == nil {
		t.Fatal("expected error without base URL")
	}
	if _, err := NewClient(&Config{BaseURL: "https://node:8080"}); err == nil {
		t.Fatal("expected error without macaroon")
	}
}
