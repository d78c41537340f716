// internal/server/handlers.go
package server

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/money"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/wallet"
	"github.com/AustinKelsay/voltage-demo-wallet/pkg/lndrest"
	"github.com/AustinKelsay/voltage-demo-wallet/pkg/qr"
	"go.uber.org/zap"
)

func (s *Server) handleInfo(c *fiber.Ctx) error {
	info, err := s.node.GetInfo(c.Context())
	if err != nil {
		logging.Error("Failed to load node info", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to load node info"})
	}
	return c.JSON(info)
}

type createInvoiceRequest struct {
	Amount string `json:"amount"`
	Memo   string `json:"memo"`
}

type createInvoiceResponse struct {
	Invoice *wallet.LocalInvoice `json:"invoice"`
	QR      string               `json:"qr"`
}

func (s *Server) handleCreateInvoice(c *fiber.Ctx) error {
	var req createInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	amount, err := money.ParseSat(strings.TrimSpace(req.Amount))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if amount == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")
	}

	inv, err := s.receiver.CreateInvoice(c.Context(), amount, req.Memo)
	if err != nil {
		logging.Error("Failed to create invoice", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to create invoice"})
	}

	uri, err := qr.DataURI(inv.PaymentRequest, 0)
	if err != nil {
		// the invoice is still usable without its QR image
		logging.Warn("Failed to render QR code", zap.Error(err))
		uri = ""
	}

	go s.watchInvoice(inv)

	return c.Status(fiber.StatusCreated).JSON(createInvoiceResponse{Invoice: inv, QR: uri})
}

// watchInvoice follows the invoice until settlement or expiry, folding pushed
// updates into the receive flow. The request context is long gone by now, so
// the watch gets its own lifetime bounded by the invoice expiry.
func (s *Server) watchInvoice(inv *wallet.LocalInvoice) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(inv.Expiry)*time.Second)
	defer cancel()

	ch, err := s.watcher.Watch(ctx, inv.PaymentHash)
	if err != nil {
		logging.Warn("Could not watch invoice",
			zap.String("paymentHash", inv.PaymentHash),
			zap.Error(err),
		)
		return
	}
	for update := range ch {
		s.receiver.ApplyUpdate(update)
	}
}

func (s *Server) handleCheckInvoice(c *fiber.Ctx) error {
	inv, err := s.receiver.CheckInvoice(c.Context())
	if err != nil {
		if s.receiver.Current() == nil {
			return fiber.NewError(fiber.StatusNotFound, "no invoice to check")
		}
		logging.Error("Failed to check payment", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to check payment"})
	}
	return c.JSON(fiber.Map{
		"invoice": inv,
		"expired": inv.IsExpired(time.Now()),
	})
}

type sendPaymentRequest struct {
	PaymentRequest string `json:"payment_request"`
}

func (s *Server) handleSendPayment(c *fiber.Ctx) error {
	var req sendPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.PaymentRequest) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "payment_request is required")
	}

	result, err := s.sender.Send(c.Context(), strings.TrimSpace(req.PaymentRequest))
	if err != nil {
		message := "Failed to send payment"
		if errors.Is(err, lndrest.ErrUnparsablePayment) {
			message = lndrest.ErrUnparsablePayment.Error()
		}
		logging.Error("Failed to send payment", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": message})
	}
	return c.JSON(result)
}

func (s *Server) handleListTransactions(c *fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	page := pageFromQuery(c)

	list, err := s.historian.ListTransactions(c.Context(), filter, page)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to load transactions"})
	}
	return c.JSON(list)
}

func (s *Server) handleTransactionDetail(c *fiber.Ctx) error {
	tx, err := s.historian.Transaction(c.Context(), c.Params("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to load transactions"})
	}
	return c.JSON(tx)
}

func (s *Server) handleQR(c *fiber.Ctx) error {
	data := c.Query("data")
	if data == "" {
		return fiber.NewError(fiber.StatusBadRequest, "data is required")
	}
	size, _ := strconv.Atoi(c.Query("size"))

	png, err := qr.PNG(data, size)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to render QR code")
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

func filterFromQuery(c *fiber.Ctx) (wallet.Filter, error) {
	var f wallet.Filter

	for _, t := range splitParam(c.Query("type")) {
		switch wallet.TxType(t) {
		case wallet.TxTypeSent, wallet.TxTypeReceived:
			f.Types = append(f.Types, wallet.TxType(t))
		default:
			return f, fiber.NewError(fiber.StatusBadRequest, "unknown type: "+t)
		}
	}

	for _, st := range splitParam(c.Query("status")) {
		f.Statuses = append(f.Statuses, wallet.DisplayState(st))
	}

	if v := c.Query("from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return f, err
		}
		f.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return f, err
		}
		f.To = t
	}
	return f, nil
}

func pageFromQuery(c *fiber.Ctx) wallet.Page {
	var page wallet.Page

	page.Limit, _ = strconv.Atoi(c.Query("limit"))
	page.Offset, _ = strconv.Atoi(c.Query("offset"))
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 1 && page.Limit > 0 {
		page.Offset = (p - 1) * page.Limit
	}

	payOffset, err1 := strconv.ParseUint(c.Query("payment_cursor"), 10, 64)
	invOffset, err2 := strconv.ParseUint(c.Query("invoice_cursor"), 10, 64)
	if err1 == nil || err2 == nil {
		page.Cursor = &wallet.Cursor{PaymentOffset: payOffset, InvoiceOffset: invOffset}
	}
	return page
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseTimeParam(v string) (time.Time, error) {
	if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(unix, 0), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "invalid time: "+v)
	}
	return t, nil
}
