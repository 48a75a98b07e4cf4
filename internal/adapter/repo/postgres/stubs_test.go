package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	sql  string
	args []any
}

// assign copies test values into Scan destinations.
func assign(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: got %d destinations, want %d", len(dest), len(vals))
	}
	for i, v := range vals {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *float64:
			*d = v.(float64)
		case *int:
			*d = v.(int)
		case *time.Time:
			*d = v.(time.Time)
		case *[]byte:
			*d = v.([]byte)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

type rowStub struct {
	vals []any
	err  error
}

func (r rowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.vals)
}

// rowsStub implements pgx.Rows; methods the repos never call panic through the nil embed.
type rowsStub struct {
	pgx.Rows
	data   [][]any
	i      int
	err    error
	closed bool
}

func (r *rowsStub) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *rowsStub) Scan(dest ...any) error { return assign(dest, r.data[r.i-1]) }
func (r *rowsStub) Err() error { return r.err }
func (r *rowsStub) Close() { r.closed = true }

type txStub struct {
	pgx.Tx
	execs      []call
	failOnExec int // 1-based; 0 never fails
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *txStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, call{sql: sql, args: args})
	if t.failOnExec == len(t.execs) {
		return pgconn.CommandTag{}, errors.New("exec failed")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *txStub) Commit(context.Context) error {
	t.committed = t.commitErr == nil
	return t.commitErr
}

func (t *txStub) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type poolStub struct {
	execErr  error
	execs    []call
	row      rowStub
	queries  []call
	rows     *rowsStub
	queryErr error
	tx       *txStub
	beginErr error
}

func (p *poolStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execs = append(p.execs, call{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), p.execErr
}

func (p *poolStub) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.queries = append(p.queries, call{sql: sql, args: args})
	return p.row
}

func (p *poolStub) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.queries = append(p.queries, call{sql: sql, args: args})
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	return p.rows, nil
}

func (p *poolStub) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}
