// pkg/lndrest/client.go
package lndrest

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"go.uber.org/zap"
)

// Client talks to an LND node over its REST API. The node owns every
// Lightning semantic (routing, HTLCs, settlement); the client only shapes
// requests and decodes responses.
type Client struct {
	baseURL  string
	macaroon string
	http     *http.Client
}

type Config struct {
	// BaseURL is the node's REST endpoint, e.g. https://node.example:8080
	BaseURL string
	// Macaroon is the hex-encoded authentication macaroon passed to the node
	// verbatim on every request.
	Macaroon string
	// Timeout bounds non-streaming requests. Zero means 30s.
	Timeout time.Duration
	// InsecureSkipVerify disables TLS verification for self-signed node certs.
	InsecureSkipVerify bool
}

func NewClient(cfg *Config) (*Client, error) {
	logger := logging.GetLogger()

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("node base URL is required")
	}
	if cfg.Macaroon == "" {
		return nil, fmt.Errorf("node macaroon is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	logger.Info("Creating LND REST client", zap.String("baseURL", cfg.BaseURL))
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		macaroon: cfg.Macaroon,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Grpc-Metadata-macaroon", c.macaroon)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("node request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read node response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node returned %d: %s", resp.StatusCode, nodeError(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode node response: %w", err)
		}
	}
	return nil
}

func nodeError(data []byte) string {
	var e errorResponse
	if err := json.Unmarshal(data, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return strings.TrimSpace(string(data))
}

// GetInfo returns basic identity and sync information about the node.
func (c *Client) GetInfo(ctx context.Context) (*NodeInfo, error) {
	var info NodeInfo
	if err := c.do(ctx, http.MethodGet, "/v1/getinfo", nil, &info); err != nil {
		logging.Error("Failed to get node info", zap.Error(err))
		return nil, err
	}
	return &info, nil
}

// AddInvoice asks the node to create an invoice for the given millisatoshi
// value. The returned r_hash is normalized to hex.
func (c *Client) AddInvoice(ctx context.Context, req *AddInvoiceRequest) (*AddInvoiceResponse, error) {
	logger := logging.With(zap.Int64("valueMsat", req.ValueMsat))
	logger.Info("Creating invoice")

	var resp AddInvoiceResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invoices", req, &resp); err != nil {
		logger.Error("Failed to create invoice", zap.Error(err))
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	resp.RHash = HashToHex(resp.RHash)
	logger.Info("Invoice created", zap.String("paymentHash", resp.RHash))
	return &resp, nil
}

// LookupInvoice fetches a single invoice by its hex payment hash.
func (c *Client) LookupInvoice(ctx context.Context, hashHex string) (*Invoice, error) {
	var inv Invoice
	if err := c.do(ctx, http.MethodGet, "/v1/invoice/"+url.PathEscape(hashHex), nil, &inv); err != nil {
		logging.Error("Failed to look up invoice",
			zap.String("paymentHash", hashHex),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to look up invoice: %w", err)
	}
	inv.RHash = HashToHex(inv.RHash)
	return &inv, nil
}

type ListInvoicesOptions struct {
	PendingOnly    bool
	IndexOffset    uint64
	NumMaxInvoices uint64
	Reversed       bool
}

func (c *Client) ListInvoices(ctx context.Context, opts ListInvoicesOptions) (*ListInvoicesResponse, error) {
	q := url.Values{}
	if opts.PendingOnly {
		q.Set("pending_only", "true")
	}
	if opts.IndexOffset > 0 {
		q.Set("index_offset", strconv.FormatUint(opts.IndexOffset, 10))
	}
	if opts.NumMaxInvoices > 0 {
		q.Set("num_max_invoices", strconv.FormatUint(opts.NumMaxInvoices, 10))
	}
	if opts.Reversed {
		q.Set("reversed", "true")
	}

	path := "/v1/invoices"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var resp ListInvoicesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	for i := range resp.Invoices {
		resp.Invoices[i].RHash = HashToHex(resp.Invoices[i].RHash)
	}
	return &resp, nil
}

type ListPaymentsOptions struct {
	IncludeIncomplete bool
	IndexOffset       uint64
	MaxPayments       uint64
	Reversed          bool
}

func (c *Client) ListPayments(ctx context.Context, opts ListPaymentsOptions) (*ListPaymentsResponse, error) {
	q := url.Values{}
	if opts.IncludeIncomplete {
		q.Set("include_incomplete", "true")
	}
	if opts.IndexOffset > 0 {
		q.Set("index_offset", strconv.FormatUint(opts.IndexOffset, 10))
	}
	if opts.MaxPayments > 0 {
		q.Set("max_payments", strconv.FormatUint(opts.MaxPayments, 10))
	}
	if opts.Reversed {
		q.Set("reversed", "true")
	}

	path := "/v1/payments"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var resp ListPaymentsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return &resp, nil
}

// DecodePayReq asks the node to decode a BOLT11 payment request.
func (c *Client) DecodePayReq(ctx context.Context, payReq string) (*DecodedPayReq, error) {
	var decoded DecodedPayReq
	if err := c.do(ctx, http.MethodGet, "/v1/payreq/"+url.PathEscape(payReq), nil, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode payment request: %w", err)
	}
	return &decoded, nil
}

// HashToHex normalizes a node-reported hash to lowercase hex. The REST API
// base64-encodes byte fields; decoded payment requests already carry hex.
func HashToHex(s string) string {
	if s == "" {
		return s
	}
	if _, err := hex.DecodeString(s); err == nil {
		return strings.ToLower(s)
	}
	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		return hex.EncodeToString(raw)
	}
	if raw, err := base64.URLEncoding.DecodeString(s); err == nil {
		return hex.EncodeToString(raw)
	}
	return s
}
