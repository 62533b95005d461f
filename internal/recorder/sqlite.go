package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	_ "modernc.org/sqlite"

	"CommodityTracker/internal/model"
)

// SQLiteRecorder persists raw series to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets the watch loop write while CLI runs read.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_points (
			symbol   TEXT NOT NULL,
			day      TEXT NOT NULL,
			value    REAL,
			fetch_id TEXT,
			PRIMARY KEY (symbol, day)
		)`,

		`CREATE TABLE IF NOT EXISTS fetch_log (
			id         TEXT PRIMARY KEY,
			symbol     TEXT NOT NULL,
			source     TEXT,
			fetched_at INTEGER NOT NULL,
			points     INTEGER,
			first_day  TEXT,
			last_day   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_symbol_ts ON fetch_log(symbol, fetched_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) SaveSeries(ctx context.Context, series model.PriceSeries, source string) (FetchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	first, last := series.Span()
	rec := FetchRecord{
		ID:        uuid.NewString(),
		Symbol:    series.Symbol,
		Source:    source,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
		Points:    series.Len(),
		FirstDay:  first,
		LastDay:   last,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return FetchRecord{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO price_points (symbol, day, value, fetch_id)
		VALUES (?,?,?,?)
		ON CONFLICT(symbol, day) DO UPDATE SET value = excluded.value, fetch_id = excluded.fetch_id`)
	if err != nil {
		return FetchRecord{}, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range series.Points() {
		var v sql.NullFloat64
		if p.Valid {
			v = sql.NullFloat64{Float64: p.Value, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, series.Symbol, p.Date.Format(model.DateFormat), v, rec.ID); err != nil {
			return FetchRecord{}, fmt.Errorf("upsert %s %s: %w", series.Symbol, p.Date.Format(model.DateFormat), err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO fetch_log
		(id, symbol, source, fetched_at, points, first_day, last_day)
		VALUES (?,?,?,?,?,?,?)`,
		rec.ID, rec.Symbol, rec.Source, rec.FetchedAt.Unix(), rec.Points,
		formatDay(first), formatDay(last),
	); err != nil {
		return FetchRecord{}, fmt.Errorf("insert fetch log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return FetchRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRecorder) LoadSeries(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	lo, hi := "0000-01-01", "9999-12-31"
	if !start.IsZero() {
		lo = start.Format(model.DateFormat)
	}
	if !end.IsZero() {
		hi = end.Format(model.DateFormat)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT day, value FROM price_points
		WHERE symbol = ? AND day >= ? AND day <= ? ORDER BY day`, symbol, lo, hi)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("query %s: %w", symbol, err)
	}
	defer rows.Close()

	var points []model.Point
	for rows.Next() {
		var (
			day string
			v   sql.NullFloat64
		)
		if err := rows.Scan(&day, &v); err != nil {
			return model.PriceSeries{}, fmt.Errorf("scan %s: %w", symbol, err)
		}
		d, err := time.Parse(model.DateFormat, day)
		if err != nil {
			continue
		}
		if v.Valid {
			points = append(points, model.At(d, v.Float64))
		} else {
			points = append(points, model.Gap(d))
		}
	}
	if err := rows.Err(); err != nil {
		return model.PriceSeries{}, err
	}
	return model.NewPriceSeries(symbol, points), nil
}

func (r *SQLiteRecorder) LastFetch(ctx context.Context, symbol string) (FetchRecord, bool, error) {
	var (
		rec         FetchRecord
		ts          int64
		first, last sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, symbol, source, fetched_at, points, first_day, last_day
		FROM fetch_log WHERE symbol = ? ORDER BY fetched_at DESC, rowid DESC LIMIT 1`, symbol).
		Scan(&rec.ID, &rec.Symbol, &rec.Source, &ts, &rec.Points, &first, &last)
	if err == sql.ErrNoRows {
		return FetchRecord{}, false, nil
	}
	if err != nil {
		return FetchRecord{}, false, fmt.Errorf("last fetch %s: %w", symbol, err)
	}
	rec.FetchedAt = time.Unix(ts, 0).UTC()
	rec.FirstDay, _ = time.Parse(model.DateFormat, first.String)
	rec.LastDay, _ = time.Parse(model.DateFormat, last.String)
	return rec, true, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateFormat)
}
