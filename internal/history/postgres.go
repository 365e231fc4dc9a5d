package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tennis-referee-service/internal/domain/matches"
	"tennis-referee-service/internal/scoring"
)

// DBTX is the subset of pgx shared by pools, connections and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const recordColumns = `id, court_id, court_name, format, started_at, finished_at, duration_ms,
		sets_history, player1, player2, winner, winner_name`

// PgArchive stores finished matches in the matches table.
type PgArchive struct {
	db DBTX
}

// NewPgArchive returns a Postgres-backed archive.
func NewPgArchive(db DBTX) *PgArchive {
	return &PgArchive{db: db}
}

// OpenPool creates a pgx connection pool and checks that the database answers.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func (a *PgArchive) Save(ctx context.Context, r matches.Record) error {
	if r.FinishedAt.IsZero() {
		return fmt.Errorf("archive %s: %w", r.ID, matches.ErrNotFinished)
	}
	format, err := json.Marshal(r.Lineup)
	if err != nil {
		return fmt.Errorf("encode format: %w", err)
	}
	sets, err := json.Marshal(r.SetsHistory)
	if err != nil {
		return fmt.Errorf("encode sets history: %w", err)
	}
	p1, err := json.Marshal(r.Player1)
	if err != nil {
		return fmt.Errorf("encode player1: %w", err)
	}
	p2, err := json.Marshal(r.Player2)
	if err != nil {
		return fmt.Errorf("encode player2: %w", err)
	}

	tag, err := a.db.Exec(ctx, `
		INSERT INTO matches (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`,
		r.ID, r.CourtID, r.CourtName, string(format), r.StartedAt, r.FinishedAt, r.DurationMS,
		string(sets), string(p1), string(p2), int(r.Winner), r.WinnerName,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (a *PgArchive) Get(ctx context.Context, id string) (matches.Record, error) {
	row := a.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM matches WHERE id = $1`, id)
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return matches.Record{}, ErrNotFound
	}
	return r, err
}

func (a *PgArchive) List(ctx context.Context, q Query) ([]matches.Record, error) {
	sql, args := listQuery(q.Normalize())
	rows, err := a.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	out := make([]matches.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return out, nil
}

func (a *PgArchive) Delete(ctx context.Context, id string) error {
	tag, err := a.db.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *PgArchive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRow(ctx, `SELECT count(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

func listQuery(q Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	if q.CourtID != "" {
		args = append(args, q.CourtID)
		where = append(where, fmt.Sprintf("court_id = $%d", len(args)))
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		where = append(where, fmt.Sprintf("finished_at >= $%d", len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		where = append(where, fmt.Sprintf("finished_at <= $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + recordColumns + ` FROM matches`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	args = append(args, q.Limit)
	fmt.Fprintf(&b, " ORDER BY finished_at DESC, id ASC LIMIT $%d", len(args))
	return b.String(), args
}

func scanRecord(row pgx.Row) (matches.Record, error) {
	var (
		r      matches.Record
		winner int16
	)
	var format, sets, p1, p2 []byte
	err := row.Scan(&r.ID, &r.CourtID, &r.CourtName, &format, &r.StartedAt, &r.FinishedAt, &r.DurationMS,
		&sets, &p1, &p2, &winner, &r.WinnerName)
	if err != nil {
		return matches.Record{}, err
	}
	if err := json.Unmarshal(format, &r.Lineup); err != nil {
		return matches.Record{}, fmt.Errorf("decode format: %w", err)
	}
	if err := json.Unmarshal(sets, &r.SetsHistory); err != nil {
		return matches.Record{}, fmt.Errorf("decode sets history: %w", err)
	}
	if err := json.Unmarshal(p1, &r.Player1); err != nil {
		return matches.Record{}, fmt.Errorf("decode player1: %w", err)
	}
	if err := json.Unmarshal(p2, &r.Player2); err != nil {
		return matches.Record{}, fmt.Errorf("decode player2: %w", err)
	}
	r.Winner = scoring.Side(winner)
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	return r, nil
}
