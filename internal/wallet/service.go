package wallet

import (
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/config"
)

const SERVICE_NAME = "WalletService"

// Service exposes the configured wallet through the container.
type Service struct {
	container.BaseDIInstance

	wallet Wallet
}

func (svc *Service) ID() string {
	return SERVICE_NAME
}

func (svc *Service) Configure(c container.IContainer) error {
	rpcConfig := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	w, err := NewLocalWallet(rpcConfig.WalletKey)
	if err != nil {
		return err
	}
	svc.wallet = w
	return nil
}

func (svc *Service) Wallet() Wallet {
	return svc.wallet
}
