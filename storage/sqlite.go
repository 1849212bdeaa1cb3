package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pthm-cable/racers/neural"
)

// SQLiteStore keeps champions in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveChampion(ctx context.Context, c Champion) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if c.Network == nil {
		return errors.New("champion has no network")
	}

	payload, err := c.Network.MarshalWeights()
	if err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO champions (run_id, generation, car_id, fitness, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			car_id = excluded.car_id,
			fitness = excluded.fitness,
			created_at = excluded.created_at,
			payload = excluded.payload
	`, c.RunID, c.Generation, c.CarID, c.Fitness, c.CreatedAt.UnixNano(), payload)
	return err
}

func (s *SQLiteStore) BestChampion(ctx context.Context, runID string) (Champion, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Champion{}, false, err
	}

	query := `SELECT run_id, generation, car_id, fitness, created_at, payload
		FROM champions ORDER BY fitness DESC, rowid ASC LIMIT 1`
	args := []any{}
	if runID != "" {
		query = `SELECT run_id, generation, car_id, fitness, created_at, payload
			FROM champions WHERE run_id = ? ORDER BY fitness DESC, rowid ASC LIMIT 1`
		args = append(args, runID)
	}

	c, err := scanChampion(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Champion{}, false, nil
		}
		return Champion{}, false, err
	}
	return c, true, nil
}

func (s *SQLiteStore) Champions(ctx context.Context, runID string) ([]Champion, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, generation, car_id, fitness, created_at, payload
		FROM champions WHERE run_id = ? ORDER BY generation ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Champion
	for rows.Next() {
		c, err := scanChampion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChampion(row rowScanner) (Champion, error) {
	var (
		c       Champion
		created int64
		payload []byte
	)
	if err := row.Scan(&c.RunID, &c.Generation, &c.CarID, &c.Fitness, &created, &payload); err != nil {
		return Champion{}, err
	}
	nn, err := neural.UnmarshalWeights(payload)
	if err != nil {
		return Champion{}, fmt.Errorf("decode champion %s/%d: %w", c.RunID, c.Generation, err)
	}
	c.Network = nn
	c.CreatedAt = time.Unix(0, created)
	return c, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS champions (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			car_id INTEGER NOT NULL,
			fitness INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
		CREATE INDEX IF NOT EXISTS champions_fitness ON champions (fitness DESC);
	`)
	return err
}
