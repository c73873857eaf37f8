package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"custodia/config"
	"custodia/core/state"
	"custodia/native/arbiter"
	"custodia/native/escrow"
	"custodia/observability"
	"custodia/observability/logging"
	"custodia/rpc"
	"custodia/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("CUSTODIA_ENV"))
	logger := logging.Setup("custodiad", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	manager := state.NewManager(db)
	directory := arbiter.NewDirectory(manager)

	vault, err := config.ParseAddress(cfg.VaultAddress)
	if err != nil {
		logger.Error("Invalid vault address", slog.Any("error", err))
		os.Exit(1)
	}
	feeRecipient, err := config.ParseAddress(cfg.FeeRecipient)
	if err != nil {
		logger.Error("Invalid fee recipient address", slog.Any("error", err))
		os.Exit(1)
	}
	minAmount, err := cfg.MinAmount()
	if err != nil {
		logger.Error("Invalid minimum escrow amount", slog.Any("error", err))
		os.Exit(1)
	}

	engine := escrow.NewEngine()
	engine.SetState(manager)
	engine.SetDirectory(directory)
	engine.SetVault(vault)
	engine.SetFeeRecipient(feeRecipient)
	engine.SetProtocolFeeBps(cfg.ProtocolFeeBps)
	engine.SetLimits(minAmount, cfg.MaxEscrowDuration)
	engine.SetPauses(config.Switches{Pause: cfg.Paused, Halt: cfg.Emergency})
	engine.SetEmergency(config.Switches{Pause: cfg.Paused, Halt: cfg.Emergency})
	engine.SetEmitter(observability.NewMetricsEmitter(nil))

	server := rpc.NewServer(engine, directory, logger)

	logger.Info("Starting RPC server", slog.String("address", cfg.RPCAddress))
	if err := http.ListenAndServe(cfg.RPCAddress, server.Router()); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
