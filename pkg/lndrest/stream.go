// pkg/lndrest/stream.go
package lndrest

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"go.uber.org/zap"
)

// ErrUnparsablePayment reports a payment response body that was neither a
// single JSON object nor newline-delimited JSON objects.
var ErrUnparsablePayment = errors.New("unable to parse payment response")

// streamEnvelope is the tagged wrapper the router REST endpoints use around
// each streamed state. Older endpoints send the payment object bare, so both
// shapes are accepted at the boundary.
type streamEnvelope struct {
	Result *Payment       `json:"result"`
	Error  *errorResponse `json:"error"`
}

// streamClient issues requests without the default timeout; streams live as
// long as their context does.
func (c *Client) streamClient() *http.Client {
	return &http.Client{Transport: c.http.Transport}
}

// SendPayment pays a BOLT11 invoice through the node's router and returns the
// final payment state. The response body may be one JSON object or a
// newline-delimited sequence of successive states; only the last one counts.
func (c *Client) SendPayment(ctx context.Context, req *SendPaymentRequest) (*Payment, error) {
	logger := logging.With(zap.Int64("timeoutSeconds", req.TimeoutSeconds))
	logger.Info("Sending payment")

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/v2/router/send", req)
	if err != nil {
		return nil, err
	}

	resp, err := c.streamClient().Do(httpReq)
	if err != nil {
		logger.Error("Payment request failed", zap.Error(err))
		return nil, fmt.Errorf("payment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("node returned %d: %s", resp.StatusCode, nodeError(data))
	}

	payment, err := decodePaymentStream(resp.Body)
	if err != nil {
		logger.Error("Failed to parse payment response", zap.Error(err))
		return nil, err
	}

	logger.Info("Payment stream finished",
		zap.String("status", payment.Status),
		zap.String("paymentHash", payment.PaymentHash),
	)
	return payment, nil
}

// decodePaymentStream reads newline-delimited JSON payment states and keeps
// the last one. Each line is either a bare payment object or a result
// envelope.
func decodePaymentStream(r io.Reader) (*Payment, error) {
	scanner := bufio.NewScanner(r)
	// payment states with full routes can exceed the default line limit
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var last *Payment
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		p, err := decodePaymentLine([]byte(line))
		if err != nil {
			return nil, err
		}
		last = p
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsablePayment, err)
	}
	if last == nil {
		return nil, ErrUnparsablePayment
	}
	return last, nil
}

func decodePaymentLine(line []byte) (*Payment, error) {
	var env streamEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsablePayment, err)
	}
	if env.Error != nil {
		msg := env.Error.Message
		if msg == "" {
			msg = env.Error.Error
		}
		return nil, fmt.Errorf("payment failed: %s", msg)
	}
	if env.Result != nil {
		return env.Result, nil
	}

	// bare payment object
	var p Payment
	if err := json.Unmarshal(line, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsablePayment, err)
	}
	if p.Status == "" && p.PaymentHash == "" {
		return nil, ErrUnparsablePayment
	}
	return &p, nil
}

// TrackPayment returns the current state of a payment by its hex hash. The
// router streams states; the first one reflects where the payment stands now,
// which is all a poll needs.
func (c *Client) TrackPayment(ctx context.Context, hashHex string) (*Payment, error) {
	raw, err := hex.DecodeString(hashHex)
	if err != nil {
		return nil, fmt.Errorf("invalid payment hash %q: %w", hashHex, err)
	}
	// The router endpoint takes the hash as a bytes path parameter, which the
	// REST gateway decodes as URL-safe base64. Invoice lookups keep hex since
	// that route takes an r_hash_str.
	path := "/v2/router/track/" + base64.RawURLEncoding.EncodeToString(raw) + "?no_inflight_updates=false"
	httpReq, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.streamClient().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("track request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("node returned %d: %s", resp.StatusCode, nodeError(data))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return decodePaymentLine([]byte(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsablePayment, err)
	}
	return nil, ErrUnparsablePayment
}

// SubscribeInvoices opens a push stream of invoice updates. Both channels
// close when the stream ends; a nil error return only means the stream
// opened. Callers that cannot open the stream fall back to polling.
func (c *Client) SubscribeInvoices(ctx context.Context) (<-chan *Invoice, <-chan error, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/v1/invoices/subscribe", nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.streamClient().Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to invoices: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, nil, fmt.Errorf("node returned %d: %s", resp.StatusCode, nodeError(data))
	}

	updates := make(chan *Invoice)
	errs := make(chan error, 1)

	go func() {
		defer close(updates)
		defer close(errs)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			var env struct {
				Result *Invoice `json:"result"`
			}
			inv := &Invoice{}
			if err := json.Unmarshal([]byte(line), &env); err == nil && env.Result != nil {
				inv = env.Result
			} else if err := json.Unmarshal([]byte(line), inv); err != nil {
				errs <- fmt.Errorf("failed to decode invoice update: %w", err)
				return
			}
			inv.RHash = HashToHex(inv.RHash)

			select {
			case updates <- inv:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			errs <- fmt.Errorf("invoice stream ended: %w", err)
		}
	}()

	return updates, errs, nil
}
