package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tennis-referee-service/internal/domain/matches"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs    []execCall
	execTag  pgconn.CommandTag
	execErr  error
	rows     [][]any
	queryErr error
	lastSQL  string
	lastArgs []any
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.rows, idx: -1}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	if len(f.rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: f.rows[0]}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.idx], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.idx], dest)
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		target.Set(reflect.ValueOf(v).Convert(target.Type()))
	}
	return nil
}

// rowFor renders r the way Postgres hands the columns back.
func rowFor(t *testing.T, r matches.Record) []any {
	t.Helper()
	enc := func(v any) []byte {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return b
	}
	return []any{
		r.ID, r.CourtID, r.CourtName, enc(r.Lineup), r.StartedAt.In(time.Local), r.FinishedAt.In(time.Local), r.DurationMS,
		enc(r.SetsHistory), enc(r.Player1), enc(r.Player2), int16(r.Winner), r.WinnerName,
	}
}

func TestPgArchiveSave(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	a := NewPgArchive(db)
	r := record("m1", "1", today)

	require.NoError(t, a.Save(context.Background(), r))
	require.Len(t, db.execs, 1)
	call := db.execs[0]
	assert.Contains(t, call.sql, "INSERT INTO matches")
	assert.Contains(t, call.sql, "ON CONFLICT (id) DO NOTHING")
	require.Len(t, call.args, 12)
	assert.Equal(t, "m1", call.args[0])
	assert.JSONEq(t, `{"kind":"singles","player1":{"id":1,"name":"Ann"},"player2":{"id":2,"name":"Bea"}}`, call.args[3].(string))
	assert.Equal(t, 1, call.args[10])

	db.execTag = pgconn.NewCommandTag("INSERT 0 0")
	assert.ErrorIs(t, a.Save(context.Background(), r), ErrExists)

	db.execErr = errors.New("connection reset")
	assert.ErrorContains(t, a.Save(context.Background(), r), "insert match")

	assert.ErrorIs(t, a.Save(context.Background(), record("m2", "1", time.Time{})), matches.ErrNotFinished)
}

func TestPgArchiveGet(t *testing.T) {
	r := record("m1", "1", today)
	db := &fakeDB{rows: [][]any{rowFor(t, r)}}
	a := NewPgArchive(db)

	got, err := a.Get(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.Equal(t, []any{"m1"}, db.lastArgs)

	db.rows = nil
	_, err = a.Get(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPgArchiveList(t *testing.T) {
	first := record("b", "2", today)
	second := record("a", "2", today.Add(-time.Hour))
	db := &fakeDB{rows: [][]any{rowFor(t, first), rowFor(t, second)}}
	a := NewPgArchive(db)

	from := today.AddDate(0, 0, -1)
	list, err := a.List(context.Background(), Query{CourtID: "2", From: from, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0])
	assert.Equal(t, second, list[1])

	assert.Contains(t, db.lastSQL, "WHERE court_id = $1 AND finished_at >= $2")
	assert.True(t, strings.HasSuffix(db.lastSQL, "ORDER BY finished_at DESC, id ASC LIMIT $3"))
	assert.Equal(t, []any{"2", from, 10}, db.lastArgs)

	db.queryErr = errors.New("boom")
	_, err = a.List(context.Background(), Query{})
	assert.ErrorContains(t, err, "list matches")
}

func TestListQueryWithoutFilters(t *testing.T) {
	sql, args := listQuery(Query{}.Normalize())
	assert.NotContains(t, sql, "WHERE")
	assert.Equal(t, []any{defaultLimit}, args)

	to := today
	sql, args = listQuery(Query{To: to, Limit: 3})
	assert.Contains(t, sql, "WHERE finished_at <= $1")
	assert.Equal(t, []any{to, 3}, args)
}

func TestPgArchiveDeleteAndCount(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("DELETE 1")}
	a := NewPgArchive(db)
	require.NoError(t, a.Delete(context.Background(), "m1"))
	assert.Equal(t, []any{"m1"}, db.execs[0].args)

	db.execTag = pgconn.NewCommandTag("DELETE 0")
	assert.ErrorIs(t, a.Delete(context.Background(), "m1"), ErrNotFound)

	db.rows = [][]any{{7}}
	n, err := a.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
