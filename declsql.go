// Package declsql exposes a declared set of SQL statements as named,
// invokable accessor methods on one database connection. Statements are
// prepared lazily on first use and cached for the life of the connection.
//
// A DB is not safe for concurrent use: each method shares one prepared
// statement, so callers serialize access or use one DB per goroutine.
package declsql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

type DB struct {
	sqlDB   *sql.DB
	dialect Dialect
	methods map[string]Method
	stmts   map[string]*sql.Stmt
	log     *zap.Logger

	lastErr string
	failed  bool
	closed  bool
}

type Option func(*DB)

func WithLogger(log *zap.Logger) Option {
	return func(db *DB) {
		db.log = log
	}
}

// New builds the accessor registry over an already-opened handle.
// Definitions are validated eagerly; the first violation aborts with
// ConfigError.
func New(sqldb *sql.DB, dialect Dialect, methods map[string]Method, opts ...Option) (*DB, error) {
	db := &DB{
		sqlDB:   sqldb,
		dialect: dialect,
		methods: make(map[string]Method, len(methods)),
		stmts:   make(map[string]*sql.Stmt),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(db)
	}
	if len(methods) == 0 {
		return nil, &ConfigError{msg: "no methods defined"}
	}
	for name, m := range methods {
		if err := validateMethod(name, m, dialect, db.log); err != nil {
			return nil, err
		}
		db.methods[name] = m
	}
	return db, nil
}

// Open connects per cfg, verifies the connection with a ping, and builds
// the registry. The dialect is resolved from the driver name.
func Open(cfg Config, methods map[string]Method, opts ...Option) (*DB, error) {
	dialect, ok := DialectFor(cfg.Driver)
	if !ok {
		return nil, &ConfigError{msg: "unknown driver " + cfg.Driver}
	}
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, &ConfigError{msg: err.Error()}
	}
	sqldb, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, &ConnectError{Driver: cfg.Driver, err: err}
	}
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, &ConnectError{Driver: cfg.Driver, err: err}
	}
	db, err := New(sqldb, dialect, methods, opts...)
	if err != nil {
		sqldb.Close()
		return nil, err
	}
	return db, nil
}

// Invoke runs the named method with arguments bound positionally from
// args and returns the value its shape declares: []any for RowsFlat and
// RowAsSlice, map[string]any for RowAsMap, []map[string]any for
// RowsAsMaps, int64 for ExecResult and LastInsertID.
//
// Failures come back as *OpError and are also recorded in the error
// state read by IsError and LastError. A failed call leaves the
// connection usable.
func (db *DB) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	db.failed = false
	db.lastErr = ""
	if db.closed {
		return nil, db.fail(&OpError{Method: name, err: ErrClosed})
	}
	m, ok := db.methods[name]
	if !ok {
		return nil, db.fail(&OpError{Method: name, err: ErrNoSuchMethod})
	}
	stmt, err := db.stmt(ctx, name, m)
	if err != nil {
		return nil, db.fail(&OpError{Method: name, Stage: "prepare", err: err})
	}
	bind, operr := db.bindArgs(name, m, args)
	if operr != nil {
		return nil, db.fail(operr)
	}

	var result any
	if m.Shape.isQuery() {
		rows, err := stmt.QueryContext(ctx, bind...)
		if err != nil {
			return nil, db.fail(&OpError{Method: name, Stage: "execute", err: err})
		}
		result, err = shapeRows(rows, m.Shape)
		if err != nil {
			return nil, db.fail(&OpError{Method: name, Stage: "fetch", err: err})
		}
	} else {
		res, err := stmt.ExecContext(ctx, bind...)
		if err != nil {
			return nil, db.fail(&OpError{Method: name, Stage: "execute", err: err})
		}
		switch m.Shape {
		case LastInsertID:
			id, err := res.LastInsertId()
			if err != nil {
				return nil, db.fail(&OpError{Method: name, Stage: "last insert id", err: err})
			}
			result = id
		default:
			affected, err := res.RowsAffected()
			if err != nil {
				return nil, db.fail(&OpError{Method: name, Stage: "rows affected", err: err})
			}
			result = affected
		}
	}
	db.log.Debug("invoke", zap.String("method", name), zap.Stringer("shape", m.Shape))
	return result, nil
}

// stmt returns the cached prepared statement for name, preparing it on
// first use.
func (db *DB) stmt(ctx context.Context, name string, m Method) (*sql.Stmt, error) {
	if s, ok := db.stmts[name]; ok {
		return s, nil
	}
	s, err := db.sqlDB.PrepareContext(ctx, m.SQL)
	if err != nil {
		return nil, err
	}
	db.stmts[name] = s
	return s, nil
}

func (db *DB) bindArgs(name string, m Method, args map[string]any) ([]any, *OpError) {
	rest := make(map[string]any, len(args))
	for k, v := range args {
		rest[k] = v
	}
	bind := make([]any, 0, len(m.Args))
	for _, arg := range m.Args {
		v, ok := rest[arg]
		if !ok {
			return nil, &OpError{Method: name, err: fmt.Errorf("%w: %s", ErrMissingArg, arg)}
		}
		if db.dialect.TypedLimitArgs && strings.HasPrefix(arg, "limit_") {
			iv, err := asInt64(v)
			if err != nil {
				return nil, &OpError{Method: name, Stage: "bind " + arg, err: err}
			}
			v = iv
		}
		bind = append(bind, v)
		delete(rest, arg)
	}
	for k := range rest {
		db.log.Warn("useless argument", zap.String("method", name), zap.String("arg", k))
	}
	return bind, nil
}

func (db *DB) fail(err *OpError) error {
	db.failed = true
	db.lastErr = err.Error()
	db.log.Debug("invoke failed", zap.String("method", err.Method), zap.Error(err))
	return err
}

// IsError reports whether the most recent operation failed.
func (db *DB) IsError() bool {
	return db.failed
}

// LastError returns the message of the most recent failure, or "".
func (db *DB) LastError() string {
	return db.lastErr
}

// Close finalizes every cached prepared statement, then closes the
// underlying connection. The first failure is recorded in the error
// state and returned; closing twice is a no-op.
func (db *DB) Close() error {
	if db.closed {
		return nil
	}
	db.closed = true
	db.failed = false
	db.lastErr = ""
	var first error
	for name, s := range db.stmts {
		if err := s.Close(); err != nil && first == nil {
			first = fmt.Errorf("finalize %s: %w", name, err)
		}
	}
	if err := db.sqlDB.Close(); err != nil && first == nil {
		first = err
	}
	if first != nil {
		db.failed = true
		db.lastErr = first.Error()
	}
	return first
}

// RawExec runs a statement outside the registry against the same
// connection.
func (db *DB) RawExec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.sqlDB.ExecContext(ctx, query, args...)
}

// RawQuery runs a query outside the registry against the same
// connection.
func (db *DB) RawQuery(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.sqlDB.QueryContext(ctx, query, args...)
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("cannot bind %T as integer", v)
}
