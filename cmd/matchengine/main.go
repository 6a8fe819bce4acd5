// Command matchengine wires together the matching engine, the trace ring,
// and the drain consumer, and submits a handful of orders to demonstrate
// the wiring end to end. It is not a CSV-driven benchmark harness or a
// network-facing server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/arcbook/matchengine/internal/config"
	"github.com/arcbook/matchengine/internal/domain"
	"github.com/arcbook/matchengine/internal/matching"
	"github.com/arcbook/matchengine/internal/trace/drain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	configPath := flag.String("config", "", "path to a config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	eng := matching.NewEngine(matching.Config{
		Emit:             cfg.Emit && cfg.Output == config.OutputFile,
		SnapshotInterval: cfg.SnapshotInterval,
	})

	var d *drain.Drain
	if cfg.Emit && cfg.Output == config.OutputFile {
		f, err := os.Create(cfg.Logfile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Logfile).Msg("opening trace log")
		}
		d, err = drain.New(eng.Ring(), f, cfg.SnapshotLevels)
		if err != nil {
			log.Fatal().Err(err).Msg("constructing drain")
		}
		d.Start()
		defer func() {
			if err := d.Shutdown(); err != nil {
				log.Error().Err(err).Msg("drain shutdown")
			}
		}()
	}

	submitDemo(eng)

	<-ctx.Done()
}

func submitDemo(eng *matching.Engine) {
	orders := []domain.NewOrderParams{
		{Side: domain.Sell, Type: domain.Limit, Price: decimal.RequireFromString("100.00"), HasPrice: true, Quantity: 10},
		{Side: domain.Sell, Type: domain.Limit, Price: decimal.RequireFromString("100.50"), HasPrice: true, Quantity: 10},
		{Side: domain.Buy, Type: domain.Market, Quantity: 15},
		{Side: domain.Buy, Type: domain.Limit, Price: decimal.RequireFromString("99.00"), HasPrice: true, Quantity: 5},
	}

	for _, params := range orders {
		reports, err := eng.Submit(params)
		if err != nil {
			log.Error().Err(err).Msg("rejected order")
			continue
		}
		log.Info().Int("reports", len(reports)).Str("side", params.Side.String()).Msg("submitted")
	}
}
