package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wager-pool/internal/config"
	"wager-pool/internal/income"
	"wager-pool/internal/ledger"
	"wager-pool/internal/logging"
	"wager-pool/internal/notify"
	"wager-pool/internal/store"
	httptransport "wager-pool/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Server.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.Server.DBPath).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	led := ledger.New(st, ledgerConfig(cfg.Ledger))

	disp := notify.FromConfig(cfg.Notify, cfg.Ledger.Currency)
	disp.Start(ctx)
	defer func() {
		if err := disp.Close(); err != nil {
			log.Warn().Err(err).Msg("notify close failed")
		}
	}()
	log.Info().Strs("sinks", disp.Sinks()).Msg("notify dispatcher ready")

	if cfg.Ledger.IncomeAmount > 0 {
		job := income.New(led, disp, cfg.Ledger.IncomeAmount, cfg.Ledger.IncomeInterval)
		if err := job.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("income job start failed")
		}
		log.Info().
			Int64("amount", cfg.Ledger.IncomeAmount).
			Dur("interval", cfg.Ledger.IncomeInterval).
			Msg("income job started")
	} else {
		log.Info().Msg("income job disabled")
	}

	r := httptransport.NewRouter(led, disp, cfg.Server)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func ledgerConfig(c config.LedgerConfig) ledger.Config {
	return ledger.Config{
		StartingBalance: c.StartingBalance,
		IncomeAmount:    c.IncomeAmount,
		BetAmounts:      c.BetAmounts,
	}
}
