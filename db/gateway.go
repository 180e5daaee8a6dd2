package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Row is a single result row keyed by column name
type Row map[string]any

// QueryResult carries the rows of a read statement, or the write counters of
// anything else.
type QueryResult struct {
	Rows         []Row
	RowsAffected int64
	LastInsertID int64
}

var procedureNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var readKeywords = map[string]bool{
	"SELECT":   true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"WITH":     true,
	"EXPLAIN":  true,
	"PRAGMA":   true,
}

// Gateway owns the single shared database connection. Every entity model goes
// through it, and access is serialized so concurrent requests observe the
// same one-connection semantics.
type Gateway struct {
	mu     sync.Mutex
	open   Opener
	driver string
	log    *zap.Logger

	gdb  *gorm.DB
	conn *sqlx.DB
	tx   *sqlx.Tx

	procMu     sync.RWMutex
	procedures map[string]bool
}

func NewGateway(open Opener, driver string, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		open:       open,
		driver:     driver,
		log:        log,
		procedures: map[string]bool{},
	}
}

// Driver returns the configured driver name
func (g *Gateway) Driver() string {
	return g.driver
}

// Connect opens the connection when absent, or when the existing one no
// longer answers a ping. Calling it on a healthy connection is a no-op.
func (g *Gateway) Connect(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connectLocked(ctx)
}

func (g *Gateway) connectLocked(ctx context.Context) error {
	// the open transaction holds the only pooled connection
	if g.tx != nil {
		return nil
	}
	if g.conn != nil {
		if err := g.conn.PingContext(ctx); err == nil {
			return nil
		}
		g.log.Warn("Database connection lost, reconnecting")
		g.closeLocked()
	}

	gdb, err := g.open(ctx)
	if err != nil {
		g.log.Error("Database connection failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	g.gdb = gdb
	g.conn = sqlx.NewDb(sqlDB, sqlxDriverName(g.driver))
	g.log.Info("Database connected", zap.String("driver", g.driver))
	return nil
}

// GORM returns the gorm handle sharing the gateway's connection. It is nil
// until Connect succeeds.
func (g *Gateway) GORM() *gorm.DB {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gdb
}

// Ping checks the connection without reopening it
func (g *Gateway) Ping(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return ErrConnection
	}
	if g.tx != nil {
		var one int
		if err := g.tx.QueryRowxContext(ctx, "SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("%w: %w", ErrConnection, err)
		}
		return nil
	}
	if err := g.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return nil
}

// ExecuteQuery runs one statement. Reads return their rows; writes are
// committed immediately (or joined to the open transaction) and report the
// affected row count. A failed write is rolled back before the error surfaces,
// and inside an explicit transaction that ends the transaction.
func (g *Gateway) ExecuteQuery(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.connectLocked(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		g.log.Debug("Query executed", zap.String("sql", query), zap.Duration("elapsed", time.Since(start)))
	}()

	if IsReadStatement(query) {
		rows, err := g.queryer().QueryxContext(ctx, query, args...)
		if err != nil {
			return nil, g.operationError(err)
		}
		defer rows.Close()

		out, err := scanRows(rows)
		if err != nil {
			return nil, g.operationError(err)
		}
		return &QueryResult{Rows: out}, nil
	}

	if g.tx != nil {
		res, err := g.tx.ExecContext(ctx, query, args...)
		if err != nil {
			opErr := g.operationError(err)
			g.rollbackLocked()
			return nil, opErr
		}
		return writeResult(res), nil
	}

	tx, err := g.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, g.operationError(err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			g.log.Warn("Rollback failed", zap.Error(rbErr))
		}
		return nil, g.operationError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, g.operationError(err)
	}
	return writeResult(res), nil
}

// Query is ExecuteQuery for statements expected to return rows
func (g *Gateway) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	res, err := g.ExecuteQuery(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// CallProcedure invokes a stored procedure and flattens every result set it
// produces into a single row list. A nil error means the call succeeded, even
// when no rows came back.
func (g *Gateway) CallProcedure(ctx context.Context, name string, args ...any) ([]Row, error) {
	if !procedureNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: invalid procedure name %q", ErrOperation, name)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.connectLocked(ctx); err != nil {
		return nil, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	stmt := fmt.Sprintf("CALL %s(%s)", name, placeholders)

	rows, err := g.queryer().QueryxContext(ctx, stmt, args...)
	if err != nil {
		g.rollbackLocked()
		return nil, g.operationError(err)
	}
	defer rows.Close()

	var out []Row
	for {
		batch, err := scanRows(rows)
		if err != nil {
			g.rollbackLocked()
			return nil, g.operationError(err)
		}
		out = append(out, batch...)
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		g.rollbackLocked()
		return nil, g.operationError(err)
	}

	g.log.Debug("Procedure called", zap.String("procedure", name), zap.Int("rows", len(out)))
	return out, nil
}

// Begin opens a transaction that subsequent statements join until Commit or
// Rollback.
func (g *Gateway) Begin(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.connectLocked(ctx); err != nil {
		return err
	}
	if g.tx != nil {
		return fmt.Errorf("%w: transaction already in progress", ErrOperation)
	}

	tx, err := g.conn.BeginTxx(ctx, nil)
	if err != nil {
		return g.operationError(err)
	}
	g.tx = tx
	return nil
}

// Commit commits the open transaction; without one it does nothing
func (g *Gateway) Commit() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.tx == nil {
		return nil
	}
	err := g.tx.Commit()
	g.tx = nil
	if err != nil {
		return g.operationError(err)
	}
	return nil
}

// Rollback aborts the open transaction; without one it does nothing
func (g *Gateway) Rollback() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.tx == nil {
		return nil
	}
	err := g.tx.Rollback()
	g.tx = nil
	if err != nil {
		return g.operationError(err)
	}
	return nil
}

// Close releases the connection
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closeLocked()
}

func (g *Gateway) closeLocked() error {
	if g.tx != nil {
		_ = g.tx.Rollback()
		g.tx = nil
	}
	if g.conn == nil {
		return nil
	}
	err := g.conn.Close()
	g.conn = nil
	g.gdb = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	g.log.Info("Database connection closed")
	return nil
}

func (g *Gateway) rollbackLocked() {
	if g.tx == nil {
		return
	}
	if err := g.tx.Rollback(); err != nil {
		g.log.Warn("Rollback failed", zap.Error(err))
	}
	g.tx = nil
}

func (g *Gateway) queryer() sqlx.QueryerContext {
	if g.tx != nil {
		return g.tx
	}
	return g.conn
}

// operationError wraps a driver error as ErrOperation, keeping gorm's
// translated sentinel (foreign key, duplicate key) in the chain.
func (g *Gateway) operationError(err error) error {
	if g.gdb != nil {
		if translator, ok := g.gdb.Dialector.(gorm.ErrorTranslator); ok {
			if translated := translator.Translate(err); translated != err {
				return fmt.Errorf("%w: %w: %w", ErrOperation, translated, err)
			}
		}
	}
	return fmt.Errorf("%w: %w", ErrOperation, err)
}

// IsReadStatement reports whether the statement returns rows rather than
// modifying data.
func IsReadStatement(query string) bool {
	q := strings.TrimLeft(query, " \t\r\n(")
	end := strings.IndexFunc(q, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '('
	})
	if end >= 0 {
		q = q[:end]
	}
	return readKeywords[strings.ToUpper(q)]
}

func scanRows(rows *sqlx.Rows) ([]Row, error) {
	out := []Row{}
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, err
		}
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
		out = append(out, Row(m))
	}
	return out, rows.Err()
}

type sqlResult interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

func writeResult(res sqlResult) *QueryResult {
	out := &QueryResult{}
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out
}
