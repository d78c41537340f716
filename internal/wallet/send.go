// internal/wallet/send.go
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/events"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/money"
	"github.com/AustinKelsay/voltage-demo-wallet/pkg/lndrest"
	"go.uber.org/zap"
)

// SendState is the send flow's state machine position.
type SendState string

const (
	SendStateIdle      SendState = "idle"
	SendStateSending   SendState = "sending"
	SendStateSucceeded SendState = "succeeded"
	SendStateFailed    SendState = "failed"
	SendStateInFlight  SendState = "in_flight"
)

// SendResult is the outcome handed back to the UI after a send attempt.
type SendResult struct {
	State         SendState `json:"state"`
	Status        string    `json:"status"`
	PaymentHash   string    `json:"paymentHash,omitempty"`
	Preimage      string    `json:"preimage,omitempty"`
	AmountSat     int64     `json:"amountSat"`
	FeeSat        int64     `json:"feeSat"`
	FailureReason string    `json:"failureReason,omitempty"`
}

// SenderConfig bounds the send flow. The node gets TimeoutSeconds for the
// payment itself; if the response stream ends while the payment is still in
// flight, the sender polls up to TrackAttempts times with backoff instead of
// waiting forever.
type SenderConfig struct {
	TimeoutSeconds int64
	FeeLimitSat    int64
	TrackAttempts  uint
	TrackDelay     time.Duration
}

// Sender drives the send flow state machine:
// idle -> sending -> {succeeded | failed | in_flight}.
type Sender struct {
	client NodeClient
	bus    *events.Bus
	cfg    SenderConfig
}

func NewSender(client NodeClient, bus *events.Bus, cfg SenderConfig) *Sender {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 60
	}
	if cfg.TrackAttempts == 0 {
		cfg.TrackAttempts = 5
	}
	if cfg.TrackDelay <= 0 {
		cfg.TrackDelay = time.Second
	}
	return &Sender{client: client, bus: bus, cfg: cfg}
}

var errStillInFlight = errors.New("payment still in flight")

// Send pays the given BOLT11 invoice and returns the final observed state.
func (s *Sender) Send(ctx context.Context, paymentRequest string) (*SendResult, error) {
	if paymentRequest == "" {
		return nil, fmt.Errorf("payment request is required")
	}

	logger := logging.GetLogger()
	logger.Info("Sending payment")

	payment, err := s.client.SendPayment(ctx, &lndrest.SendPaymentRequest{
		PaymentRequest: paymentRequest,
		TimeoutSeconds: s.cfg.TimeoutSeconds,
		FeeLimitSat:    s.cfg.FeeLimitSat,
	})
	if err != nil {
		logger.Error("Payment failed", zap.Error(err))
		return &SendResult{
			State:         SendStateFailed,
			FailureReason: err.Error(),
		}, err
	}

	if payment.Status == lndrest.PaymentStatusInFlight {
		payment = s.trackInFlight(ctx, payment)
	}

	result := s.resultFrom(payment)

	switch result.State {
	case SendStateSucceeded:
		s.bus.Publish(events.TopicPaymentSent, result)
		s.bus.Publish(events.TopicTransactionNew, result)
		logger.Info("Payment succeeded",
			zap.String("paymentHash", result.PaymentHash),
			zap.Int64("feeSat", result.FeeSat),
		)
	case SendStateFailed:
		logger.Warn("Payment failed",
			zap.String("paymentHash", result.PaymentHash),
			zap.String("reason", result.FailureReason),
		)
	case SendStateInFlight:
		logger.Warn("Payment still in flight after tracking",
			zap.String("paymentHash", result.PaymentHash),
		)
	}

	return result, nil
}

// trackInFlight polls the payment with backed-off retries. When attempts run
// out the last observed state stands; the UI reports in_flight rather than
// spinning forever.
func (s *Sender) trackInFlight(ctx context.Context, payment *lndrest.Payment) *lndrest.Payment {
	logger := logging.With(zap.String("paymentHash", payment.PaymentHash))
	logger.Info("Tracking in-flight payment", zap.Uint("attempts", s.cfg.TrackAttempts))

	last := payment
	err := retry.Do(
		func() error {
			if ctx.Err() != nil {
				return retry.Unrecoverable(ctx.Err())
			}
			p, err := s.client.TrackPayment(ctx, payment.PaymentHash)
			if err != nil {
				return err
			}
			last = p
			if p.Status == lndrest.PaymentStatusInFlight || p.Status == lndrest.PaymentStatusPending {
				return errStillInFlight
			}
			return nil
		},
		retry.Attempts(s.cfg.TrackAttempts),
		retry.Delay(s.cfg.TrackDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("Track attempt", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	if err != nil {
		logger.Warn("Payment tracking ended without a terminal state", zap.Error(err))
	}
	return last
}

func (s *Sender) resultFrom(payment *lndrest.Payment) *SendResult {
	result := &SendResult{
		Status:      payment.Status,
		PaymentHash: payment.PaymentHash,
		Preimage:    payment.PaymentPreimage,
		AmountSat:   money.MsatToSat(payment.ValueMsat),
		FeeSat:      money.MsatToSat(payment.FeeMsat),
	}

	switch payment.Status {
	case lndrest.PaymentStatusSucceeded:
		result.State = SendStateSucceeded
	case lndrest.PaymentStatusFailed:
		result.State = SendStateFailed
		result.FailureReason = payment.FailureReason
	default:
		result.State = SendStateInFlight
	}
	return result
}
