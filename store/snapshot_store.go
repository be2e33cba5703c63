// Package store persists core pool snapshots to a database, the same job
// the teacher's CorePool.Flush(db) did for its gorm.Model-embedded CorePool.
// It stays outside the core engine package so the engine's own import graph
// carries no DB dependency.
package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	clmmcore "github.com/clmmsim/engine"
)

// SnapshotRecord is the gorm-mapped row a PoolSnapshot is flushed into, keyed
// by pool address and block number the way the teacher's CorePool rows were
// keyed by (implicitly) one row per pool plus a CurrentBlockNum column.
type SnapshotRecord struct {
	gorm.Model
	PoolAddress string `gorm:"index"`
	BlockNumber uint64 `gorm:"index"`
	Data        string `gorm:"type:text"`
}

func (SnapshotRecord) TableName() string { return "pool_snapshots" }

// Store wraps a *gorm.DB the same way CorePool.Flush took one as an
// argument, except here the dependency is held rather than threaded through
// every call.
type Store struct {
	db *gorm.DB
}

// New opens a Store against db, auto-migrating the snapshot table.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("store: automigrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Flush serializes pool's current state and writes it, inserting a new row
// if this is the first flush for poolAddress at this exact block number and
// updating in place otherwise — mirroring the teacher's HasCreated flag on
// CorePool.Flush.
func (s *Store) Flush(poolAddress string, pool *clmmcore.PoolEngine) error {
	snap := pool.Save()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: marshal snapshot: %w", err)
	}

	var existing SnapshotRecord
	err = s.db.Where("pool_address = ? AND block_number = ?", poolAddress, snap.BlockNumber).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Data = string(data)
		return s.db.Save(&existing).Error
	case err == gorm.ErrRecordNotFound:
		record := SnapshotRecord{PoolAddress: poolAddress, BlockNumber: snap.BlockNumber, Data: string(data)}
		return s.db.Create(&record).Error
	default:
		return fmt.Errorf("store: lookup existing snapshot: %w", err)
	}
}

// Load rebuilds a PoolEngine from the most recent snapshot at or before
// blockNumber for poolAddress.
func (s *Store) Load(poolAddress string, blockNumber uint64) (*clmmcore.PoolEngine, error) {
	var record SnapshotRecord
	err := s.db.Where("pool_address = ? AND block_number <= ?", poolAddress, blockNumber).
		Order("block_number DESC").
		First(&record).Error
	if err != nil {
		return nil, fmt.Errorf("store: load snapshot: %w", err)
	}

	var snap clmmcore.PoolSnapshot
	if err := json.Unmarshal([]byte(record.Data), &snap); err != nil {
		return nil, fmt.Errorf("store: unmarshal snapshot: %w", err)
	}
	return clmmcore.LoadPool(snap)
}

// Latest rebuilds a PoolEngine from the most recent snapshot for poolAddress,
// regardless of block number.
func (s *Store) Latest(poolAddress string) (*clmmcore.PoolEngine, error) {
	var record SnapshotRecord
	err := s.db.Where("pool_address = ?", poolAddress).
		Order("block_number DESC").
		First(&record).Error
	if err != nil {
		return nil, fmt.Errorf("store: load latest snapshot: %w", err)
	}

	var snap clmmcore.PoolSnapshot
	if err := json.Unmarshal([]byte(record.Data), &snap); err != nil {
		return nil, fmt.Errorf("store: unmarshal snapshot: %w", err)
	}
	return clmmcore.LoadPool(snap)
}
