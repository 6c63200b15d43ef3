package registry

import (
	"encoding/binary"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/1sol-io/1sol-interface-sub000/internal/common"
	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

var errShortAccount = errors.New("venue account data too short")

func pubkeyAt(data []byte, offset int) solana.PublicKey {
	var pk solana.PublicKey
	copy(pk[:], data[offset:offset+32])
	return pk
}

// Discovery only needs the traded pair, liveness flags, and reserve
// balances where the layout carries them, so records are parsed at fixed
// offsets instead of decoding the full layouts.

func parseTokenSwapVenue(addr solana.PublicKey, data []byte) (*domain.VenueRecord, error) {
	if len(data) < tokenSwapAccountSize {
		return nil, errShortAccount
	}
	return &domain.VenueRecord{
		Address:  addr,
		Kind:     domain.VenuePoolSwap,
		Program:  common.TokenSwapProgramID,
		MintA:    pubkeyAt(data, 131),
		MintB:    pubkeyAt(data, 163),
		Active:   data[1] == 1,
		ReserveA: binary.LittleEndian.Uint64(data[195:203]),
		ReserveB: binary.LittleEndian.Uint64(data[203:211]),
	}, nil
}

func parseSerumVenue(addr solana.PublicKey, data []byte) (*domain.VenueRecord, error) {
	if len(data) < serumMarketSize {
		return nil, errShortAccount
	}
	// account flags: bit 0 initialized, bit 1 market
	flags := data[5]
	return &domain.VenueRecord{
		Address: addr,
		Kind:    domain.VenueOrderBook,
		Program: common.SerumDexProgramID,
		MintA:   pubkeyAt(data, 53),
		MintB:   pubkeyAt(data, 85),
		Active:  flags&0b11 == 0b11,
	}, nil
}

func parseStableSwapVenue(addr solana.PublicKey, data []byte) (*domain.VenueRecord, error) {
	if len(data) < stableSwapAccountSize {
		return nil, errShortAccount
	}
	isInitialized := data[0] == 1
	isPaused := data[1] == 1
	return &domain.VenueRecord{
		Address: addr,
		Kind:    domain.VenueStableSwap,
		Program: common.StableSwapProgramID,
		MintA:   pubkeyAt(data, 203),
		MintB:   pubkeyAt(data, 235),
		Active:  isInitialized && !isPaused,
	}, nil
}

func parseRaydiumVenue(addr solana.PublicKey, data []byte) (*domain.VenueRecord, error) {
	if len(data) < raydiumAmmSize {
		return nil, errShortAccount
	}
	// status 6 is swap-enabled on v4 amms; 1 covers older initialized pools
	status := data[0]
	return &domain.VenueRecord{
		Address:  addr,
		Kind:     domain.VenueConstantFunctionAMM,
		Program:  common.RaydiumAmmProgramID,
		MintA:    pubkeyAt(data, 400),
		MintB:    pubkeyAt(data, 432),
		Active:   status == 1 || status == 6,
		ReserveA: binary.LittleEndian.Uint64(data[464:472]),
		ReserveB: binary.LittleEndian.Uint64(data[472:480]),
	}, nil
}
