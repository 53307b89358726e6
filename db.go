package terrain

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bodgit/terrain/tile"
	_ "github.com/mattn/go-sqlite3"
)

var timeNow = time.Now

// Ledger records the outcome of every chunk baked so that unchanged chunks
// can be skipped on later runs
type Ledger struct {
	db *sql.DB
}

// Record is the ledger entry for a single chunk
type Record struct {
	Coordinate        tile.Coordinate
	Source            string
	SHA1              string
	Config            string
	HolesFilled       int
	DiagonalGapsFixed int
	ComponentsBefore  int
	ComponentsAfter   int
	BakedAt           time.Time
}

// NewLedger opens or creates the ledger database in file
func NewLedger(file string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	// Workers write concurrently, let database/sql serialise them
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS tile (x INTEGER NOT NULL, y INTEGER NOT NULL, source TEXT NOT NULL, sha1 TEXT NOT NULL, config TEXT NOT NULL, holes INTEGER NOT NULL, gaps INTEGER NOT NULL, components_before INTEGER NOT NULL, components_after INTEGER NOT NULL, baked_at INTEGER NOT NULL, PRIMARY KEY (x, y))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{
		db: db,
	}, nil
}

// Close closes the underlying database
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores r, replacing any existing entry for the same coordinate
func (l *Ledger) Record(r Record) error {
	if _, err := l.db.Exec("INSERT OR REPLACE INTO tile (x, y, source, sha1, config, holes, gaps, components_before, components_after, baked_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", r.Coordinate.X, r.Coordinate.Y, r.Source, r.SHA1, r.Config, r.HolesFilled, r.DiagonalGapsFixed, r.ComponentsBefore, r.ComponentsAfter, r.BakedAt.Unix()); err != nil {
		return err
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		r       Record
		bakedAt int64
	)
	if err := s.Scan(&r.Coordinate.X, &r.Coordinate.Y, &r.Source, &r.SHA1, &r.Config, &r.HolesFilled, &r.DiagonalGapsFixed, &r.ComponentsBefore, &r.ComponentsAfter, &bakedAt); err != nil {
		return nil, err
	}
	r.BakedAt = time.Unix(bakedAt, 0)
	return &r, nil
}

const selectRecord = "SELECT x, y, source, sha1, config, holes, gaps, components_before, components_after, baked_at FROM tile"

// Find returns the entry for c, or nil if there isn't one
func (l *Ledger) Find(c tile.Coordinate) (*Record, error) {
	r, err := scanRecord(l.db.QueryRow(selectRecord+" WHERE x = ? AND y = ?", c.X, c.Y))
	switch err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return r, nil
	default:
		return nil, err
	}
}

// Records returns every entry in row-major tile order
func (l *Ledger) Records() ([]Record, error) {
	rows, err := l.db.Query(selectRecord + " ORDER BY y, x")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}

	return records, rows.Err()
}
