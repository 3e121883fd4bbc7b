package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"benchtrim/internal/benchmark"
)

// sqlStore holds the queries shared by the SQL backends. Queries are written
// with "?" placeholders and rebound for drivers that number them.
type sqlStore struct {
	db       *sql.DB
	numbered bool
}

func (s *sqlStore) bind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// Save stores the run and its results in one transaction.
func (s *sqlStore) Save(run benchmark.Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(
		s.bind(`INSERT INTO runs (created_at, input, output) VALUES (?, ?, ?) RETURNING id`),
		run.Timestamp.UnixNano(), run.Input, run.Output,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	insert := s.bind(`INSERT INTO run_results (run_id, position, title, name, unit, median_elapsed, samples) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, r := range run.Results {
		if _, err := tx.Exec(insert, id, i, r.Title, r.Name, r.Unit, r.MedianElapsed, r.Samples); err != nil {
			return fmt.Errorf("failed to insert result %q: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// LoadAll returns every stored run, oldest first.
func (s *sqlStore) LoadAll() ([]benchmark.Run, error) {
	rows, err := s.db.Query(`SELECT id, created_at, input, output FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}

	for i := range runs {
		if runs[i].Results, err = s.loadResults(runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// LoadLatest returns the most recent run, or nil if none was stored yet.
func (s *sqlStore) LoadLatest() (*benchmark.Run, error) {
	rows, err := s.db.Query(`SELECT id, created_at, input, output FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}

	run := runs[0]
	if run.Results, err = s.loadResults(run.ID); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *sqlStore) loadResults(runID int64) ([]benchmark.RunResult, error) {
	rows, err := s.db.Query(
		s.bind(`SELECT title, name, unit, median_elapsed, samples FROM run_results WHERE run_id = ? ORDER BY position`),
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []benchmark.RunResult{}
	for rows.Next() {
		var r benchmark.RunResult
		if err := rows.Scan(&r.Title, &r.Name, &r.Unit, &r.MedianElapsed, &r.Samples); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanRuns(rows *sql.Rows) ([]benchmark.Run, error) {
	defer rows.Close()

	var runs []benchmark.Run
	for rows.Next() {
		var run benchmark.Run
		var createdAt int64
		if err := rows.Scan(&run.ID, &createdAt, &run.Input, &run.Output); err != nil {
			return nil, err
		}
		run.Timestamp = time.Unix(0, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
