// Package sqlite provides a SQLite-backed storage implementation.
// The (participant_id, game_kind) primary key enforces at most one result per pair.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
	"github.com/mcoot/eventgames/internal/storage/sqlite/migrations"
)

// Storage persists participants, teams and results in SQLite
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open opens the database at path and applies embedded migrations
func Open(ctx context.Context, path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// Participant operations

func (s *Storage) CreateParticipant(ctx context.Context, p *model.Participant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (id, display_name, email, team, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(p.ID), p.DisplayName, p.Email, p.Team, toNanos(p.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrParticipantExists
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, email, team, created_at FROM participants WHERE id = ?`,
		string(id),
	)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, email, team, created_at FROM participants ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	participants := []*model.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row scanner) (*model.Participant, error) {
	var (
		p         model.Participant
		id        string
		createdAt int64
	)
	if err := row.Scan(&id, &p.DisplayName, &p.Email, &p.Team, &createdAt); err != nil {
		return nil, err
	}
	p.ID = model.ParticipantID(id)
	p.CreatedAt = fromNanos(createdAt)
	return &p, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO teams (name_key, name, media_path, sort_order) VALUES (?, ?, ?, ?)
ON CONFLICT (name_key) DO UPDATE SET
    name = excluded.name,
    media_path = excluded.media_path,
    sort_order = excluded.sort_order`,
		teamKey(team.Name), team.Name, team.MediaPath, team.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("save team: %w", err)
	}
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	err := s.db.QueryRowContext(ctx,
		`SELECT name, media_path, sort_order FROM teams WHERE name_key = ?`,
		teamKey(name),
	).Scan(&team.Name, &team.MediaPath, &team.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	return &team, nil
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, media_path, sort_order FROM teams`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	teams := []*model.Team{}
	for rows.Next() {
		var team model.Team
		if err := rows.Scan(&team.Name, &team.MediaPath, &team.SortOrder); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, &team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	storage.SortTeams(teams)
	return teams, nil
}

func (s *Storage) DeleteTeam(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE name_key = ?`, teamKey(name))
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrTeamNotFound
	}
	return nil
}

func (s *Storage) RenameTeam(ctx context.Context, from string, team *model.Team) (int, error) {
	oldKey, newKey := teamKey(from), teamKey(team.Name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin rename team: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE teams SET name_key = ?, name = ?, media_path = ?, sort_order = ? WHERE name_key = ?`,
		newKey, team.Name, team.MediaPath, team.SortOrder, oldKey,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, model.ErrTeamExists
		}
		return 0, fmt.Errorf("rename team: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, model.ErrTeamNotFound
	}

	// Team names on participants are matched in Go so case folding agrees
	// with teamKey for non-ASCII names
	rows, err := tx.QueryContext(ctx, `SELECT id, team FROM participants`)
	if err != nil {
		return 0, fmt.Errorf("list participant teams: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan participant team: %w", err)
		}
		if teamKey(name) == oldKey {
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, fmt.Errorf("list participant teams: %w", err)
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE participants SET team = ? WHERE id = ?`, team.Name, id); err != nil {
			return 0, fmt.Errorf("move participant: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rename team: %w", err)
	}
	return len(ids), nil
}

func teamKey(name string) string {
	return model.TeamKey(name)
}

// Result operations

func (s *Storage) InsertResult(ctx context.Context, result *model.GameResult) (bool, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO game_results (participant_id, game_kind, score, attempts, submitted_at) VALUES (?, ?, ?, 1, ?)`,
		string(result.ParticipantID), string(result.Kind), result.Score, toNanos(result.SubmittedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert result: %w", err)
	}
	return true, nil
}

func (s *Storage) UpsertBestResult(ctx context.Context, result *model.GameResult) (model.SubmitOutcome, *model.GameResult, error) {
	var (
		score, attempts int
		storedAt        int64
		previous        sql.NullInt64
	)
	// SET expressions see the row as it was before the update, so
	// previous_score captures the score this statement replaced
	err := s.db.QueryRowContext(ctx, `
INSERT INTO game_results (participant_id, game_kind, score, attempts, submitted_at) VALUES (?, ?, ?, 1, ?)
ON CONFLICT (participant_id, game_kind) DO UPDATE SET
    attempts = game_results.attempts + 1,
    previous_score = game_results.score,
    submitted_at = CASE WHEN excluded.score < game_results.score
        THEN excluded.submitted_at ELSE game_results.submitted_at END,
    score = MIN(game_results.score, excluded.score)
RETURNING score, attempts, submitted_at, previous_score`,
		string(result.ParticipantID), string(result.Kind), result.Score, toNanos(result.SubmittedAt),
	).Scan(&score, &attempts, &storedAt, &previous)
	if err != nil {
		return "", nil, fmt.Errorf("upsert result: %w", err)
	}

	outcome := model.OutcomeAlreadyRecorded
	switch {
	case attempts == 1:
		outcome = model.OutcomeAccepted
	case previous.Valid && int64(score) < previous.Int64:
		outcome = model.OutcomeImproved
	}

	return outcome, &model.GameResult{
		ParticipantID: result.ParticipantID,
		Kind:          result.Kind,
		Score:         score,
		Attempts:      attempts,
		SubmittedAt:   fromNanos(storedAt),
	}, nil
}

func (s *Storage) GetResultsForParticipant(ctx context.Context, id model.ParticipantID) ([]*model.GameResult, error) {
	return s.queryResults(ctx,
		`SELECT participant_id, game_kind, score, attempts, submitted_at FROM game_results WHERE participant_id = ?`,
		string(id),
	)
}

func (s *Storage) ListResults(ctx context.Context) ([]*model.GameResult, error) {
	return s.queryResults(ctx,
		`SELECT participant_id, game_kind, score, attempts, submitted_at FROM game_results`,
	)
}

func (s *Storage) queryResults(ctx context.Context, query string, args ...any) ([]*model.GameResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []*model.GameResult{}
	for rows.Next() {
		var (
			r           model.GameResult
			pid, kind   string
			submittedAt int64
		)
		if err := rows.Scan(&pid, &kind, &r.Score, &r.Attempts, &submittedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.ParticipantID = model.ParticipantID(pid)
		r.Kind = model.GameKind(kind)
		r.SubmittedAt = fromNanos(submittedAt)
		results = append(results, &r)
	}
	return results, rows.Err()
}

func (s *Storage) DeleteAllResults(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM game_results`)
	if err != nil {
		return 0, fmt.Errorf("delete results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
