package main

import (
	"os"

	"github.com/1sol-io/1sol-interface-sub000/internal/config"
	"github.com/1sol-io/1sol-interface-sub000/internal/http"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/accounts"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/batcher"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/blockchain"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/executor"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/pricing"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/registry"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/submitter"
	"github.com/1sol-io/1sol-interface-sub000/internal/services/venues"
	"github.com/1sol-io/1sol-interface-sub000/internal/wallet"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"
)

func main() {
	// load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using process environment")
	}

	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.RPCConfig{},
		&config.EngineConfig{},
		&config.PricingConfig{},
	)

	// di container
	dic, err := container.New(
		// config
		conf,

		// services
		&blockchain.BlockhashCacheService{},
		&wallet.Service{},
		&pricing.ClientService{},
		&registry.Service{},

		&accounts.ResolverService{},
		&venues.Service{},
		&batcher.Service{},
		&submitter.Service{},
		&executor.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	// Run() blocks until SIGINT/SIGTERM
	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	// Run() doesn't call Stop(), we must do it manually
	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
