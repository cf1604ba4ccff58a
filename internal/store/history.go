package store

import (
	"database/sql"

	"github.com/cockroachdb/errors"
)

// --- Run history ---

// InsertRun records a run and its per-file outcomes in one transaction and
// returns the run ID.
func (s *Store) InsertRun(run *Run, files []*RunFile) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "insert run: begin")
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO runs (started_at, finished_at, recipes, cycles, converged, state, warning) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.StartedAt, run.FinishedAt, marshalStrings(run.Recipes), run.Cycles, run.Converged, run.State, run.Warning,
	)
	if err != nil {
		return 0, errors.Wrap(err, "insert run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "last insert id")
	}

	for _, f := range files {
		res, err := tx.Exec(
			"INSERT INTO run_files (run_id, path, change, recipes, before_hash, after_hash, error) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, f.Path, f.Change, marshalStrings(f.Recipes), f.BeforeHash, f.AfterHash, f.Error,
		)
		if err != nil {
			return 0, errors.Wrapf(err, "insert run file %s", f.Path)
		}
		f.RunID = id
		if f.ID, err = res.LastInsertId(); err != nil {
			return 0, errors.Wrap(err, "last insert id")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "insert run: commit")
	}
	run.ID = id
	return id, nil
}

// Runs returns the most recent runs first, at most limit of them. A limit
// below 1 returns all runs.
func (s *Store) Runs(limit int) ([]*Run, error) {
	q := "SELECT id, started_at, finished_at, recipes, cycles, converged, state, warning FROM runs ORDER BY id DESC"
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "runs")
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		r := &Run{}
		var recipes string
		var finished sql.NullTime
		var warning sql.NullString
		if err := rows.Scan(&r.ID, &r.StartedAt, &finished, &recipes, &r.Cycles, &r.Converged, &r.State, &warning); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		r.FinishedAt = finished.Time
		r.Recipes = unmarshalStrings(recipes)
		r.Warning = warning.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunFiles returns the per-file outcomes of a run in insertion order.
func (s *Store) RunFiles(runID int64) ([]*RunFile, error) {
	return s.queryRunFiles(runFileColumns+" WHERE run_id = ? ORDER BY id", runID)
}

// FileHistory returns every recorded outcome for path, newest first.
func (s *Store) FileHistory(path string) ([]*RunFile, error) {
	return s.queryRunFiles(runFileColumns+" WHERE path = ? ORDER BY id DESC", path)
}

const runFileColumns = "SELECT id, run_id, path, change, recipes, before_hash, after_hash, error FROM run_files"

func (s *Store) queryRunFiles(query string, args ...any) ([]*RunFile, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query run files")
	}
	defer rows.Close()
	var out []*RunFile
	for rows.Next() {
		f := &RunFile{}
		var recipes, before, after, msg sql.NullString
		if err := rows.Scan(&f.ID, &f.RunID, &f.Path, &f.Change, &recipes, &before, &after, &msg); err != nil {
			return nil, errors.Wrap(err, "scan run file")
		}
		f.Recipes = unmarshalStrings(recipes.String)
		f.BeforeHash = before.String
		f.AfterHash = after.String
		f.Error = msg.String
		out = append(out, f)
	}
	return out, rows.Err()
}
