package session

import (
	"context"
	"fmt"
	"garage-site/internal/config"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// AdminKey is the session key set once the admin secret was entered.
const AdminKey = "admin"

// Manager is an interface that abstracts the session management implementation.
// This allows for easier testing and dependency injection.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetBool(ctx context.Context, key string) bool
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	RenewToken(ctx context.Context) error
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
}

var _ Manager = (*scs.SessionManager)(nil)

// New creates the session manager and its store. The returned close function
// releases the database connection, if any.
func New(cfg config.SessionConfig, secure bool) (*scs.SessionManager, func() error, error) {
	sm := scs.New()
	sm.Lifetime = time.Duration(cfg.Lifetime) * time.Hour
	if sm.Lifetime <= 0 {
		sm.Lifetime = 12 * time.Hour
	}
	sm.Cookie.Name = "garage_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure

	noop := func() error { return nil }

	switch strings.ToLower(cfg.Store) {
	case "", "memory":
		sm.Store = memstore.New()
		return sm, noop, nil

	case "sqlite":
		db, err := NewDB("sqlite", cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if _, err := db.Exec(sqliteSchema); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to create sessions table: %w", err)
		}
		sm.Store = sqlite3store.New(db.DB)
		return sm, db.Close, nil

	case "mysql":
		db, err := NewDB("mysql", cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		for _, stmt := range mysqlSchema {
			if _, err := db.Exec(stmt); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("failed to create sessions table: %w", err)
			}
		}
		sm.Store = mysqlstore.New(db.DB)
		return sm, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// NewDB creates a new database connection pool.
func NewDB(driver, dsn string) (*sqlx.DB, error) {
	// sqlx.Connect opens a connection and pings it to verify it's alive.
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s session database: %w", driver, err)
	}
	if driver == "sqlite" {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
	token CHAR(43) PRIMARY KEY,
	data BLOB NOT NULL,
	expiry TIMESTAMP(6) NOT NULL,
	INDEX sessions_expiry_idx (expiry)
)`,
}
