// Package dbtest provides in-memory stand-ins for the db package interfaces.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/rpattn/nwreports/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Statement is one recorded Exec or Query call.
type Statement struct {
	SQL  string
	Args []any
}

// Querier records statements and returns canned results.
type Querier struct {
	mu sync.Mutex

	Execs   []Statement
	Queries []Statement

	// ExecErrors fails any Exec whose SQL starts with the key.
	ExecErrors map[string]error
	// OnExec runs after a successful Exec; tests use it to emulate table state.
	OnExec func(sql string, args []any)

	Rows     *Rows
	QueryErr error

	Commits   int
	Rollbacks int
	BeginErr  error
	CommitErr error
}

var _ db.Querier = (*Querier)(nil)

func (q *Querier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.mu.Lock()
	q.Execs = append(q.Execs, Statement{SQL: sql, Args: args})
	hook := q.OnExec
	var failure error
	for prefix, err := range q.ExecErrors {
		if strings.HasPrefix(strings.TrimSpace(sql), prefix) {
			failure = err
			break
		}
	}
	q.mu.Unlock()

	if failure != nil {
		return pgconn.CommandTag{}, failure
	}
	if hook != nil {
		hook(sql, args)
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (q *Querier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.Queries = append(q.Queries, Statement{SQL: sql, Args: args})
	if q.QueryErr != nil {
		return nil, q.QueryErr
	}
	if q.Rows == nil {
		return &Rows{}, nil
	}
	return q.Rows, nil
}

func (q *Querier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	rows, err := q.Query(ctx, sql, args...)
	return &row{rows: rows, err: err}
}

func (q *Querier) Begin(context.Context) (pgx.Tx, error) {
	if q.BeginErr != nil {
		return nil, q.BeginErr
	}
	return &Tx{q: q}, nil
}

// ExecCount returns how many Exec calls started with prefix.
func (q *Querier) ExecCount(prefix string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, stmt := range q.Execs {
		if strings.HasPrefix(strings.TrimSpace(stmt.SQL), prefix) {
			n++
		}
	}
	return n
}

// Tx delegates statements to the parent Querier and counts commits.
type Tx struct {
	pgx.Tx
	q *Querier
}

func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.q.Exec(ctx, sql, args...)
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.q.Query(ctx, sql, args...)
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.q.QueryRow(ctx, sql, args...)
}

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.q.Begin(ctx)
}

func (t *Tx) Commit(context.Context) error {
	t.q.mu.Lock()
	defer t.q.mu.Unlock()
	if t.q.CommitErr != nil {
		return t.q.CommitErr
	}
	t.q.Commits++
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	t.q.mu.Lock()
	defer t.q.mu.Unlock()
	t.q.Rollbacks++
	return nil
}

// Gate hands its Querier to every callback and counts entries.
type Gate struct {
	Q     *Querier
	Calls int
	Err   error

	mu sync.Mutex
}

var _ db.Gate = (*Gate)(nil)

func (g *Gate) Do(ctx context.Context, fn func(q db.Querier) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Calls++
	if g.Err != nil {
		return g.Err
	}
	if g.Q == nil {
		g.Q = &Querier{}
	}
	return fn(g.Q)
}

// Rows serves a fixed result set by column name.
type Rows struct {
	Columns []string
	Data    [][]any
	Failure error

	pos    int
	closed bool
}

var _ pgx.Rows = (*Rows)(nil)

func (r *Rows) Close()     { r.closed = true }
func (r *Rows) Err() error { return r.Failure }

func (r *Rows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("SELECT %d", len(r.Data)))
}

func (r *Rows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.Columns))
	for i, name := range r.Columns {
		out[i] = pgconn.FieldDescription{Name: name}
	}
	return out
}

func (r *Rows) Next() bool {
	if r.closed || r.pos >= len(r.Data) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.Data) {
		return errors.New("scan called without a current row")
	}
	values := r.Data[r.pos-1]
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}

	for i, target := range dest {
		ptr := reflect.ValueOf(target)
		if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		elem := ptr.Elem()
		if values[i] == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}

		value := reflect.ValueOf(values[i])
		switch {
		case value.Type().AssignableTo(elem.Type()):
			elem.Set(value)
		case elem.Kind() == reflect.Pointer && value.Type().AssignableTo(elem.Type().Elem()):
			boxed := reflect.New(elem.Type().Elem())
			boxed.Elem().Set(value)
			elem.Set(boxed)
		case value.Type().ConvertibleTo(elem.Type()):
			elem.Set(value.Convert(elem.Type()))
		default:
			return fmt.Errorf("scan: cannot assign %T to %s", values[i], elem.Type())
		}
	}
	return nil
}

func (r *Rows) Values() ([]any, error) {
	if r.pos == 0 || r.pos > len(r.Data) {
		return nil, errors.New("values called without a current row")
	}
	return r.Data[r.pos-1], nil
}

func (r *Rows) RawValues() [][]byte { return nil }
func (r *Rows) Conn() *pgx.Conn     { return nil }

type row struct {
	rows pgx.Rows
	err  error
}

func (r *row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	defer r.rows.Close()
	if !r.rows.Next() {
		return pgx.ErrNoRows
	}
	return r.rows.Scan(dest...)
}
