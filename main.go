package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/clearhouse/options-ledger/src/assets"
	"github.com/clearhouse/options-ledger/src/clearing/router"
	"github.com/clearhouse/options-ledger/src/clearing/services"
	"github.com/clearhouse/options-ledger/src/eventpubsub"
	"github.com/clearhouse/options-ledger/src/logger"
	"github.com/clearhouse/options-ledger/src/utils"
)

func main() {
	if err := utils.InitEnvironmentVariables(); err != nil {
		log.Fatalf("main: failed to init environment: %v", err)
	}

	logger.Init()
	eventpubsub.Init()

	configPath := utils.GetEnvOrDefault("MARKETS_CONFIG", "markets.yaml")
	cfg, err := services.LoadMarketsConfig(configPath)
	if err != nil {
		log.Fatalf("main: %v", err)
	}

	owner := assets.Address(utils.GetEnvOrDefault("REGISTRY_OWNER", "admin"))
	registry := services.NewMarketRegistry(owner, nil)

	tokens := services.BuildTokens(cfg)
	if err := registry.CreateMarketsFromConfig(cfg, tokens); err != nil {
		log.Fatalf("main: %v", err)
	}

	recorder := services.NewSettlementRecorder()
	if err := recorder.Start(); err != nil {
		log.Fatalf("main: %v", err)
	}

	r := mux.NewRouter()
	router.SetupHandler(r.PathPrefix("/markets").Subrouter(), registry, recorder)

	port := utils.GetEnvOrDefault("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	go func() {
		log.Infof("market api listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("main: server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("main: shutdown: %v", err)
	}

	log.Info("server stopped")
}
