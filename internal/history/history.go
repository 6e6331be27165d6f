// Package history persists collected snapshots to a local SQLite database
// so past cycles survive agent restarts. Writes are batched: snapshots
// accumulate in memory and are flushed in one transaction once the batch
// fills or the store is closed.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/sysalert/agent/internal/models"
)

// Recorder accepts finished snapshots for persistence.
type Recorder interface {
	Record(ctx context.Context, snap *models.Snapshot) error
	Close() error
}

// Entry is one persisted row read back from the store.
type Entry struct {
	Timestamp       time.Time
	CPUAverage      float64
	PackageWatts    float64
	MemoryPercent   float64
	BatteryPercent  float64
	BatteryCharging bool
	ThermalPressure int
	Workload        string
	QualityScore    int
}

// Store is the SQLite-backed Recorder.
type Store struct {
	db        *sql.DB
	logger    *zap.Logger
	batchSize int

	mu    sync.Mutex
	batch []Entry
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    timestamp INTEGER PRIMARY KEY,
    cpu_average REAL,
    package_w REAL,
    memory_percent REAL,
    battery_percent REAL,
    battery_charging INTEGER,
    thermal_pressure INTEGER,
    workload TEXT,
    quality_score INTEGER
)`

// Open creates or opens the snapshot database at path. The database runs in
// WAL mode so the single writer never blocks concurrent readers.
func Open(path string, batchSize int, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history: empty database path")
	}
	if batchSize < 1 {
		batchSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}

	logger.Debug("History store opened",
		zap.String("path", path),
		zap.Int("batch_size", batchSize))

	return &Store{
		db:        db,
		logger:    logger,
		batchSize: batchSize,
		batch:     make([]Entry, 0, batchSize),
	}, nil
}

// Record buffers one snapshot and flushes the batch once it is full.
func (s *Store) Record(ctx context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = append(s.batch, Entry{
		Timestamp:       snap.Timestamp,
		CPUAverage:      snap.CPU.Average,
		PackageWatts:    snap.CPU.Power.PackageWatts,
		MemoryPercent:   snap.Memory.UsedPercent,
		BatteryPercent:  snap.Battery.Percentage,
		BatteryCharging: snap.Battery.Charging,
		ThermalPressure: snap.Thermal.Pressure,
		Workload:        snap.Performance.Workload,
		QualityScore:    snap.Health.QualityScore,
	})
	if len(s.batch) < s.batchSize {
		return nil
	}
	return s.flushLocked(ctx)
}

// Flush writes any buffered snapshots immediately.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *Store) flushLocked(ctx context.Context) error {
	if len(s.batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO snapshots (
            timestamp, cpu_average, package_w, memory_percent,
            battery_percent, battery_charging, thermal_pressure,
            workload, quality_score
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            cpu_average = excluded.cpu_average,
            package_w = excluded.package_w,
            memory_percent = excluded.memory_percent,
            battery_percent = excluded.battery_percent,
            battery_charging = excluded.battery_charging,
            thermal_pressure = excluded.thermal_pressure,
            workload = excluded.workload,
            quality_score = excluded.quality_score
    `)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("history: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range s.batch {
		charging := 0
		if e.BatteryCharging {
			charging = 1
		}
		if _, err := stmt.ExecContext(ctx,
			e.Timestamp.Unix(), e.CPUAverage, e.PackageWatts, e.MemoryPercent,
			e.BatteryPercent, charging, e.ThermalPressure,
			e.Workload, e.QualityScore,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("history: insert snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit batch: %w", err)
	}

	s.logger.Debug("Flushed snapshot batch", zap.Int("count", len(s.batch)))
	s.batch = s.batch[:0]
	return nil
}

// Recent returns up to n persisted entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT timestamp, cpu_average, package_w, memory_percent,
               battery_percent, battery_charging, thermal_pressure,
               workload, quality_score
        FROM snapshots ORDER BY timestamp DESC LIMIT ?
    `, n)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		var charging int
		if err := rows.Scan(&ts, &e.CPUAverage, &e.PackageWatts, &e.MemoryPercent,
			&e.BatteryPercent, &charging, &e.ThermalPressure,
			&e.Workload, &e.QualityScore); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0).UTC()
		e.BatteryCharging = charging == 1
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate rows: %w", err)
	}
	return out, nil
}

// Close flushes any buffered snapshots, folds the WAL back into the main
// database file, and closes the handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flushErr := s.flushLocked(context.Background())

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Warn("WAL checkpoint failed", zap.Error(err))
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("history: close database: %w", err)
	}
	return flushErr
}
