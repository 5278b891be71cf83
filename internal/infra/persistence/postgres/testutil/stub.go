// Package testutil provides a stub database that understands the postgres state-table statements.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// StubRow is one row of the stubbed state table.
type StubRow struct {
	Payload     []byte
	ContentType string
	UpdatedAt   int64
}

// StubConn records statements and keeps the state table in memory.
type StubConn struct {
	mu       sync.Mutex
	Execs    []string
	Rows     map[string]StubRow
	FailPing bool
	FailExec bool
}

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Rows: make(map[string]StubRow)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	up := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(up, "INSERT INTO STATE"):
		if len(args) != 4 {
			return nil, fmt.Errorf("insert expects 4 args, got %d", len(args))
		}
		payload, _ := args[1].Value.([]byte)
		ct, _ := args[2].Value.(string)
		ts, _ := args[3].Value.(int64)
		c.Rows[args[0].Value.(string)] = StubRow{Payload: append([]byte(nil), payload...), ContentType: ct, UpdatedAt: ts}
		return driver.RowsAffected(1), nil
	case strings.HasPrefix(up, "DELETE FROM STATE"):
		key := args[0].Value.(string)
		if _, ok := c.Rows[key]; !ok {
			return driver.RowsAffected(0), nil
		}
		delete(c.Rows, key)
		return driver.RowsAffected(1), nil
	}
	return driver.RowsAffected(0), nil
}

// QueryContext implements driver.QueryerContext.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	up := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(up, "SELECT PAYLOAD"):
		rows := &stubRows{cols: []string{"payload", "content_type", "updated_at"}}
		if row, ok := c.Rows[args[0].Value.(string)]; ok {
			rows.rows = append(rows.rows, []driver.Value{row.Payload, row.ContentType, row.UpdatedAt})
		}
		return rows, nil
	case strings.HasPrefix(up, "SELECT BUCKET"):
		prefix := unlike(args[0].Value.(string))
		keys := make([]string, 0, len(c.Rows))
		for k := range c.Rows {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		rows := &stubRows{cols: []string{"bucket", "octet_length", "content_type", "updated_at"}}
		for _, k := range keys {
			row := c.Rows[k]
			rows.rows = append(rows.rows, []driver.Value{k, int64(len(row.Payload)), row.ContentType, row.UpdatedAt})
		}
		return rows, nil
	}
	return nil, fmt.Errorf("unsupported query: %s", query)
}

func unlike(pattern string) string {
	pattern = strings.TrimSuffix(pattern, "%")
	return strings.NewReplacer(`\\`, `\`, `\%`, `%`, `\_`, `_`).Replace(pattern)
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
