// Package history keeps a local record of finished briefing runs.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// startedLayout is fixed width so keys sort by start time within a date.
const startedLayout = "20060102T150405.000000000"

// RunRecord summarizes one run.
type RunRecord struct {
	RunID        string    `json:"run_id"`
	RunDate      string    `json:"run_date"`
	ProviderID   string    `json:"provider_id"`
	ItemCount    int       `json:"item_count"`
	Titles       []string  `json:"titles"`
	TotalSeconds int       `json:"total_seconds"`
	OutputDir    string    `json:"output_dir"`
	VideoPath    string    `json:"video_path"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

func (r RunRecord) key() []byte {
	return []byte(r.RunDate + "/" + r.StartedAt.UTC().Format(startedLayout) + "/" + r.RunID)
}

// Store is a bbolt-backed run log. Keys are
// "YYYYMMDD/<started at, UTC>/<run id>", so a reverse cursor walk yields the
// newest run date first and, within a date, the latest started run first.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Record stores rec, replacing any record with the same date, start time
// and id.
func (s *Store) Record(rec RunRecord) error {
	if rec.RunID == "" || rec.RunDate == "" {
		return errors.New("run record needs run id and run date")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Put(rec.key(), data)
	})
}

// List returns up to limit records, newest run date first. A limit of zero
// or less returns everything.
func (s *Store) List(limit int) ([]RunRecord, error) {
	var out []RunRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode run %s: %w", k, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}
