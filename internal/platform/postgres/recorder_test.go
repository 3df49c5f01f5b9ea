package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"
)

// queryRecorder backs a database/sql connection with canned result sets and
// records every statement it executes, arguments included. Store tests use
// it to assert on the generated SQL and the bound values without a live
// database.
type queryRecorder struct {
	mu      sync.Mutex
	calls   []recordedCall
	results []stubResultSet
}

type recordedCall struct {
	query string
	args  []driver.Value
}

type stubResultSet struct {
	columns []string
	rows    [][]driver.Value
}

func (r *queryRecorder) enqueue(columns []string, rows ...[]driver.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, stubResultSet{columns: columns, rows: rows})
}

func (r *queryRecorder) record(query string, named []driver.NamedValue) {
	args := make([]driver.Value, len(named))
	for i, nv := range named {
		args[i] = nv.Value
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{query: query, args: args})
}

func (r *queryRecorder) pop() stubResultSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.results) == 0 {
		return stubResultSet{}
	}
	set := r.results[0]
	r.results = r.results[1:]
	return set
}

func (r *queryRecorder) lastQuery() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1].query
}

func (r *queryRecorder) call(i int) recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

func (r *queryRecorder) queryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// newRecordedDB opens a database handle backed by the recorder.
func newRecordedDB(t *testing.T) (*sql.DB, *queryRecorder) {
	t.Helper()

	rec := &queryRecorder{}
	db := sql.OpenDB(recorderConnector{rec: rec})
	t.Cleanup(func() { _ = db.Close() })
	return db, rec
}

type recorderConnector struct{ rec *queryRecorder }

func (c recorderConnector) Connect(context.Context) (driver.Conn, error) {
	return recorderConn{rec: c.rec}, nil
}

func (c recorderConnector) Driver() driver.Driver { return recorderDriver{} }

type recorderDriver struct{}

func (recorderDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

type recorderConn struct{ rec *queryRecorder }

func (recorderConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements not supported")
}

func (recorderConn) Close() error { return nil }

func (recorderConn) Begin() (driver.Tx, error) { return recorderTx{}, nil }

// CheckNamedValue accepts every argument as-is so the recorder sees the
// values the stores actually bind.
func (recorderConn) CheckNamedValue(*driver.NamedValue) error { return nil }

func (c recorderConn) QueryContext(
	_ context.Context,
	query string,
	args []driver.NamedValue,
) (driver.Rows, error) {
	c.rec.record(query, args)
	return &stubRows{set: c.rec.pop()}, nil
}

func (c recorderConn) ExecContext(
	_ context.Context,
	query string,
	args []driver.NamedValue,
) (driver.Result, error) {
	c.rec.record(query, args)
	return driver.RowsAffected(1), nil
}

type recorderTx struct{}

func (recorderTx) Commit() error   { return nil }
func (recorderTx) Rollback() error { return nil }

type stubRows struct {
	set stubResultSet
	pos int
}

func (r *stubRows) Columns() []string { return r.set.columns }

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.set.rows) {
		return io.EOF
	}
	copy(dest, r.set.rows[r.pos])
	r.pos++
	return nil
}
