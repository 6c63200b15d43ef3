package venues

import (
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/config"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
	"github.com/1sol-io/1sol-interface-sub000/internal/services"
)

const SERVICE_NAME = "VenueAdapterService"

// Service owns one adapter per venue kind and hands them out to the
// executor.
type Service struct {
	container.BaseDIInstance

	adapters map[domain.VenueKind]Adapter
	logger   *services.ServiceLogger
}

func (svc *Service) ID() string {
	return SERVICE_NAME
}

func (svc *Service) Configure(c container.IContainer) error {
	rpcConfig := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	rpcClient := rpc.New(rpcConfig.RPCUrl)
	svc.adapters = BuildAdapters(rpcClient)
	svc.logger = services.NewServiceLogger(svc)
	return nil
}

// BuildAdapters wires the full adapter set against one reader. Split out so
// tests can hand in a stub reader.
func BuildAdapters(reader venueReader) map[domain.VenueKind]Adapter {
	return map[domain.VenueKind]Adapter{
		domain.VenuePoolSwap:            NewTokenSwapAdapter(reader),
		domain.VenueOrderBook:           NewSerumAdapter(reader),
		domain.VenueStableSwap:          NewStableSwapAdapter(reader),
		domain.VenueConstantFunctionAMM: NewRaydiumAdapter(reader),
	}
}

func (svc *Service) ByKind(k domain.VenueKind) (Adapter, error) {
	adapter, ok := svc.adapters[k]
	if !ok {
		return nil, fmt.Errorf("no adapter for venue kind %s", k)
	}
	return adapter, nil
}
