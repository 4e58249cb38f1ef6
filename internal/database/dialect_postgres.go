package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDialect targets hosted deployments where DATABASE_URL points at a
// PostgreSQL server shared by several app instances
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// DSN passes DATABASE_URL through unchanged; lib/pq reads sslmode and the
// rest from the URL itself
func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

// RewriteQuery turns the repositories' ? placeholders into $1, $2, ...
func (d *PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

// SupportsLastInsertId is false: user, word, question and result inserts get
// their ids back through RETURNING id
func (d *PostgresDialect) SupportsLastInsertId() bool {
	return false
}

// ConfigureConnection sizes the pool for short catalog reads and the single
// transaction written when a run completes
func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

// BoolValue renders the literals used by the dictionary status filters
func (d *PostgresDialect) BoolValue(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// Upsert backs learned-word, favourite, setting and blocked-word writes
func (d *PostgresDialect) Upsert(table string, columns, conflict, update []string) string {
	return upsertOnConflict(table, columns, conflict, update)
}
