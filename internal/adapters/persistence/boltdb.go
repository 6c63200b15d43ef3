package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"

	"github.com/1sol-io/1sol-interface-sub000/internal/domain"
)

const (
	VenuesBucket = "venues"

	DefaultDBPath = "./data/engine.db"
)

type StoredVenue struct {
	Address      string `json:"address"`
	Kind         uint8  `json:"kind"`
	Program      string `json:"programId"`
	MintA        string `json:"mintA"`
	MintB        string `json:"mintB"`
	Active       bool   `json:"active"`
	ReserveA     uint64 `json:"reserveA"`
	ReserveB     uint64 `json:"reserveB"`
	LastSeenSlot uint64 `json:"lastSeenSlot"`
}

type Storage struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[venueStorage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) SaveVenue(venue *domain.VenueRecord) error {
	data, err := sonic.Marshal(venueToStored(venue))
	if err != nil {
		return fmt.Errorf("failed to marshal venue: %w", err)
	}

	return s.db.Set(VenuesBucket, []byte(venue.Address.String()), data)
}

func (s *Storage) SaveVenueBatch(venues []*domain.VenueRecord) error {
	if len(venues) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, venue := range venues {
		data, err := sonic.Marshal(venueToStored(venue))
		if err != nil {
			return fmt.Errorf("failed to marshal venue %s: %w", venue.Address.String(), err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(VenuesBucket),
			Key:    []byte(venue.Address.String()),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add venue %s to batch: %w", venue.Address.String(), err)
		}
	}

	if err := batch.Execute(); err != nil {
		return fmt.Errorf("failed to execute venue batch: %w", err)
	}
	return nil
}

func (s *Storage) LoadVenues() ([]*domain.VenueRecord, error) {
	items, err := s.db.List(VenuesBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}

	venues := make([]*domain.VenueRecord, 0, len(items))
	for _, item := range items {
		var stored StoredVenue
		if err := sonic.Unmarshal(item, &stored); err != nil {
			log.Warn().Err(err).Msg("[venueStorage] skipping unreadable venue record")
			continue
		}
		venue, err := storedToVenue(&stored)
		if err != nil {
			log.Warn().Err(err).Str("address", stored.Address).Msg("[venueStorage] skipping invalid venue record")
			continue
		}
		venues = append(venues, venue)
	}
	return venues, nil
}

func venueToStored(v *domain.VenueRecord) *StoredVenue {
	return &StoredVenue{
		Address:      v.Address.String(),
		Kind:         uint8(v.Kind),
		Program:      v.Program.String(),
		MintA:        v.MintA.String(),
		MintB:        v.MintB.String(),
		Active:       v.Active,
		ReserveA:     v.ReserveA,
		ReserveB:     v.ReserveB,
		LastSeenSlot: v.LastSeenSlot,
	}
}

func storedToVenue(s *StoredVenue) (*domain.VenueRecord, error) {
	address, err := solana.PublicKeyFromBase58(s.Address)
	if err != nil {
		return nil, err
	}
	program, err := solana.PublicKeyFromBase58(s.Program)
	if err != nil {
		return nil, err
	}
	mintA, err := solana.PublicKeyFromBase58(s.MintA)
	if err != nil {
		return nil, err
	}
	mintB, err := solana.PublicKeyFromBase58(s.MintB)
	if err != nil {
		return nil, err
	}
	return &domain.VenueRecord{
		Address:      address,
		Kind:         domain.VenueKind(s.Kind),
		Program:      program,
		MintA:        mintA,
		MintB:        mintB,
		Active:       s.Active,
		ReserveA:     s.ReserveA,
		ReserveB:     s.ReserveB,
		LastSeenSlot: s.LastSeenSlot,
	}, nil
}
