package config

import (
	"errors"
	"os"
)

type RPCConfig struct {
	RPCUrl    string
	WSUrl     string
	RPCApiKey string
	// WalletKey is the base58-encoded private key the engine signs with when
	// no external wallet is attached.
	WalletKey string
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	r.RPCUrl = os.Getenv("RPC_URL")
	r.WSUrl = os.Getenv("WS_URL")
	r.RPCApiKey = os.Getenv("RPC_KEY")
	r.WalletKey = os.Getenv("WALLET_KEY")
	return nil
}

func (r *RPCConfig) Validate() error {
	if r.RPCUrl == "" {
		return errors.New("invalid rpc config")
	}
	return nil
}
