package config

import (
	"errors"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
)

type PricingConfig struct {
	// BaseURL of the pricing service serving route quotes.
	BaseURL string

	// APIVersion selects the quote endpoint version path segment.
	// Default: "v2"
	APIVersion string

	// ChainID identifies the target chain on the quote endpoint.
	// Default: "103"
	ChainID string

	// RefreshIntervalSec is how often an active quote is re-fetched while the
	// user reviews it. Default: 10
	RefreshIntervalSec int

	// RequestTimeoutSec bounds each quote HTTP call. Default: 10
	RequestTimeoutSec int
}

func (c *PricingConfig) Key() string {
	return PRICING_CONFIG_KEY
}

func (c *PricingConfig) Load() error {
	c.BaseURL = common.GetEnvOrDefault("PRICING_BASE_URL", "https://api.1sol.io")
	c.APIVersion = common.GetEnvOrDefault("PRICING_API_VERSION", "v2")
	c.ChainID = common.GetEnvOrDefault("PRICING_CHAIN_ID", "103")
	c.RefreshIntervalSec = common.GetEnvOrDefaultInt("PRICING_REFRESH_INTERVAL_SEC", 10)
	c.RequestTimeoutSec = common.GetEnvOrDefaultInt("PRICING_REQUEST_TIMEOUT_SEC", 10)
	return c.Validate()
}

func (c *PricingConfig) Validate() error {
	if c.BaseURL == "" || c.RefreshIntervalSec <= 0 {
		return errors.New("invalid pricing config")
	}
	return nil
}
