// cmd/main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AustinKelsay/voltage-demo-wallet/internal/config"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/events"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/logging"
	"github.com/AustinKelsay/voltage-demo-wallet/internal/server"
	"github.com/AustinKelsay/voltage-demo-wallet/pkg/lndrest"
	"go.uber.org/zap"
)

func main() {
	logging.Init()
	defer logging.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	client, err := lndrest.NewClient(&lndrest.Config{
		BaseURL:  cfg.NodeURL,
		Macaroon: cfg.Macaroon,
	})
	if err != nil {
		log.Fatalf("failed to create node client: %v", err)
	}

	bus := events.NewBus()
	defer bus.Close()

	// cross-component notifications just get logged here; components
	// re-fetch on their own when the user acts
	bus.Subscribe(events.TopicTransactionNew, func(ev events.Event) {
		logging.Info("New transaction", zap.String("topic", string(ev.Topic)))
	})

	srv := server.New(cfg, client, bus)

	go func() {
		if err := srv.Listen(); err != nil {
			logging.Error("Server stopped", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logging.Info("Shutting down")
	if err := srv.Shutdown(); err != nil {
		logging.Error("Shutdown failed", zap.Error(err))
	}
}
