// Package storage archives the best controller of each generation so a later
// run can resume from it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/racers/neural"
)

// ErrNotInitialized is returned by stores used before Init.
var ErrNotInitialized = errors.New("store is not initialized")

// Champion is the best car of one generation.
type Champion struct {
	RunID      string
	Generation int
	CarID      int
	Fitness    int
	Network    *neural.Network
	CreatedAt  time.Time
}

// Store persists champions.
type Store interface {
	Init(ctx context.Context) error
	SaveChampion(ctx context.Context, c Champion) error
	// BestChampion returns the highest-fitness champion of runID, or of any
	// run when runID is empty. Ties go to the earliest saved.
	BestChampion(ctx context.Context, runID string) (Champion, bool, error)
	// Champions returns runID's champions in generation order.
	Champions(ctx context.Context, runID string) ([]Champion, error)
	Close() error
}

// NewStore creates a store for the given backend.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}
