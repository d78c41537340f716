// internal/server/server.go
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/config"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/events"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/wallet"
	"go.uber.org/zap"
)

// Server is the browser-facing HTTP surface. It owns no wallet semantics;
// every route translates a user action into a flow call and renders the
// outcome, converting failures into single user-facing strings.
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	node      wallet.NodeClient
	bus       *events.Bus
	receiver  *wallet.Receiver
	sender    *wallet.Sender
	historian *wallet.Historian
	watcher   wallet.InvoiceWatcher
}

func New(cfg *config.Config, node wallet.NodeClient, bus *events.Bus) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(requestLogger())

	s := &Server{
		app:      app,
		cfg:      cfg,
		node:     node,
		bus:      bus,
		receiver: wallet.NewReceiver(node, bus),
		sender: wallet.NewSender(node, bus, wallet.SenderConfig{
			TimeoutSeconds: int64(cfg.PaymentTimeout),
			FeeLimitSat:    cfg.FeeLimitSat,
			TrackAttempts:  cfg.TrackAttempts,
		}),
		historian: wallet.NewHistorian(node),
		watcher:   wallet.NewInvoiceWatcher(node),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	api := s.app.Group("/api")
	api.Get("/info", s.handleInfo)
	api.Post("/invoices", paymentRateLimit(), s.handleCreateInvoice)
	api.Get("/invoices/current", s.handleCheckInvoice)
	api.Post("/payments", paymentRateLimit(), s.handleSendPayment)
	api.Get("/transactions", s.handleListTransactions)
	api.Get("/transactions/:id", s.handleTransactionDetail)
	api.Get("/qr", s.handleQR)
}

// Listen blocks serving HTTP until Shutdown.
func (s *Server) Listen() error {
	logging.Info("Listening", zap.String("port", s.cfg.Port))
	return s.app.Listen(":" + s.cfg.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func paymentRateLimit() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
	})
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logging.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("took", time.Since(start)),
		)
		return err
	}
}
