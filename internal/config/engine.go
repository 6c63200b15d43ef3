package config

import (
	"errors"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
)

type EngineConfig struct {
	// ConfirmTimeoutSec bounds how long a submitted transaction is polled
	// before the attempt is abandoned. Default: 30
	ConfirmTimeoutSec int

	// ConfirmPollMs is the interval between signature-status polls.
	// Default: 500
	ConfirmPollMs int

	// PriorityFeeMicroLamports, when > 0, prefixes each transaction with a
	// compute-budget price instruction.
	PriorityFeeMicroLamports int

	// DBPath is the BoltDB file backing the venue registry.
	// Default: "./data/engine.db"
	DBPath string

	// PersistenceEnabled controls whether discovered venues are saved to disk.
	// Default: true
	PersistenceEnabled bool
}

func (c *EngineConfig) Key() string {
	return ENGINE_CONFIG_KEY
}

func (c *EngineConfig) Load() error {
	c.ConfirmTimeoutSec = common.GetEnvOrDefaultInt("CONFIRM_TIMEOUT_SEC", 30)
	c.ConfirmPollMs = common.GetEnvOrDefaultInt("CONFIRM_POLL_MS", 500)
	c.PriorityFeeMicroLamports = common.GetEnvOrDefaultInt("PRIORITY_FEE_MICRO_LAMPORTS", 0)
	c.DBPath = common.GetEnvOrDefault("ENGINE_DB_PATH", "./data/engine.db")
	c.PersistenceEnabled = common.GetEnvOrDefault("ENGINE_PERSISTENCE_ENABLED", "true") == "true"
	return c.Validate()
}

func (c *EngineConfig) Validate() error {
	if c.ConfirmTimeoutSec <= 0 || c.ConfirmPollMs <= 0 {
		return errors.New("invalid engine config")
	}
	return nil
}
