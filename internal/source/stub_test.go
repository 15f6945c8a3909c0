package source

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

// stubConn is an in-memory stand-in for the catalog_documents table that
// records every statement it sees.
type stubConn struct {
	mu        sync.Mutex
	execs     []string
	docs      map[string][]byte
	failPing  bool
	failExec  bool
	failBegin bool
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{docs: make(map[string][]byte)}
	name := fmt.Sprintf("stubdocs%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) Ping(context.Context) error {
	if c.failPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.failBegin {
		return nil, fmt.Errorf("begin fail")
	}
	return stubTx{}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, fmt.Errorf("exec fail")
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO") {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected 2 args, got %d", len(args))
		}
		payload, _ := args[1].Value.([]byte)
		c.docs[args[0].Value.(string)] = payload
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.HasPrefix(query, "SELECT payload") {
		doc, ok := c.docs[args[0].Value.(string)]
		if !ok {
			return &stubRows{cols: []string{"payload"}}, nil
		}
		return &stubRows{cols: []string{"payload"}, rows: [][]driver.Value{{doc}}}, nil
	}
	names := make([]string, 0, len(c.docs))
	for name := range c.docs {
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	rows := make([][]driver.Value, len(names))
	for i, name := range names {
		rows[i] = []driver.Value{name}
	}
	return &stubRows{cols: []string{"document"}, rows: rows}, nil
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
