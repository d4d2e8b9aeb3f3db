package history

import (
	"database/sql"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"go-typer/internal/typer"
)

const driverName = "duckdb"

const createSessionsTableQuery = `
	CREATE TABLE IF NOT EXISTS sessions(
		id VARCHAR PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		script VARCHAR,
		mode VARCHAR,
		speed INTEGER,
		runes INTEGER,
		revealed INTEGER,
		ticks INTEGER,
		key_count INTEGER,
		suppressed INTEGER,
		elapsed_ms BIGINT,
		outcome VARCHAR
	)
`

const insertSessionQuery = `
	INSERT INTO sessions (id, script, mode, speed, runes, revealed, ticks, key_count, suppressed, elapsed_ms, outcome)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const recentSessionsQuery = `
	SELECT
		id, created_at, script, mode,
		speed, runes, revealed, ticks,
		key_count, suppressed, elapsed_ms, outcome
	FROM sessions
	ORDER BY created_at DESC
	LIMIT ?
`

type Record struct {
	ID         string
	CreatedAt  time.Time
	Script     string
	Mode       string
	Speed      int
	Runes      int
	Revealed   int
	Ticks      int
	Keys       int
	Suppressed int
	Elapsed    time.Duration
	Outcome    string
}

func FromStats(script string, stats typer.Stats) *Record {
	return &Record{
		ID:         stats.ID,
		Script:     script,
		Mode:       stats.Mode.String(),
		Speed:      stats.Speed,
		Runes:      stats.Runes,
		Revealed:   stats.Index,
		Ticks:      stats.Ticks,
		Keys:       stats.Keys,
		Suppressed: stats.Suppressed,
		Elapsed:    stats.Elapsed,
		Outcome:    stats.Outcome.String(),
	}
}

type Store struct {
	db *sql.DB
}

// Open opens the history database at path; an empty path is in-memory.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)

	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(createSessionsTableQuery); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Insert(r *Record) error {
	_, err := s.db.Exec(
		insertSessionQuery,
		r.ID,
		r.Script,
		r.Mode,
		r.Speed,
		r.Runes,
		r.Revealed,
		r.Ticks,
		r.Keys,
		r.Suppressed,
		r.Elapsed.Milliseconds(),
		r.Outcome,
	)

	return err
}

func (s *Store) Count() (int, error) {
	row := s.db.QueryRow("SELECT count(*) FROM sessions")

	var count int

	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]*Record, error) {
	rows, err := s.db.Query(recentSessionsQuery, limit)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var records []*Record

	for rows.Next() {
		r := Record{}

		var elapsedMs int64

		err := rows.Scan(
			&r.ID,
			&r.CreatedAt,
			&r.Script,
			&r.Mode,
			&r.Speed,
			&r.Runes,
			&r.Revealed,
			&r.Ticks,
			&r.Keys,
			&r.Suppressed,
			&elapsedMs,
			&r.Outcome,
		)

		if err != nil {
			return nil, err
		}

		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
