package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if result {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO users (name, email) VALUES (?, ?)",
			expected: "INSERT INTO users (name, email) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE users SET name = ?, email = ? WHERE id = ?",
			expected: "UPDATE users SET name = ?, email = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestBoolValue(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		value   bool
		want    string
	}{
		{"SQLite true", NewSQLiteDialect(), true, "1"},
		{"SQLite false", NewSQLiteDialect(), false, "0"},
		{"PostgreSQL true", NewPostgresDialect(), true, "TRUE"},
		{"MySQL false", NewMySQLDialect(), false, "FALSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.BoolValue(tt.value); got != tt.want {
				t.Errorf("BoolValue(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestUpsert(t *testing.T) {
	columns := []string{"user_id", "word_id", "is_favorite"}
	conflict := []string{"user_id", "word_id"}

	tests := []struct {
		name     string
		dialect  Dialect
		update   []string
		expected string
	}{
		{
			name:     "SQLite update",
			dialect:  NewSQLiteDialect(),
			update:   []string{"is_favorite"},
			expected: "INSERT INTO learned_words (user_id, word_id, is_favorite) VALUES (?, ?, ?) ON CONFLICT (user_id, word_id) DO UPDATE SET is_favorite = excluded.is_favorite",
		},
		{
			name:     "PostgreSQL ignore",
			dialect:  NewPostgresDialect(),
			expected: "INSERT INTO learned_words (user_id, word_id, is_favorite) VALUES (?, ?, ?) ON CONFLICT (user_id, word_id) DO NOTHING",
		},
		{
			name:     "MySQL update",
			dialect:  NewMySQLDialect(),
			update:   []string{"is_favorite"},
			expected: "INSERT INTO learned_words (user_id, word_id, is_favorite) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE is_favorite = VALUES(is_favorite)",
		},
		{
			name:     "MySQL ignore",
			dialect:  NewMySQLDialect(),
			expected: "INSERT IGNORE INTO learned_words (user_id, word_id, is_favorite) VALUES (?, ?, ?)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.Upsert("learned_words", columns, conflict, tt.update)
			if result != tt.expected {
				t.Errorf("Upsert() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := NewMySQLDialect().DSN(DialectConfig{URL: "user:pass@tcp(localhost:3306)/lingvo"})
	for _, want := range []string{"parseTime=true", "multiStatements=true"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN() = %q, missing %q", dsn, want)
		}
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		input   string
		driver  string
		wantErr bool
	}{
		{"", "sqlite3", false},
		{"SQLite", "sqlite3", false},
		{"postgresql", "postgres", false},
		{"mysql", "mysql", false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := DialectFor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor(%q) error = %v", tt.input, err)
			}
			if err == nil && d.DriverName() != tt.driver {
				t.Errorf("DriverName() = %v, want %v", d.DriverName(), tt.driver)
			}
		})
	}
}

func TestSplitWords(t *testing.T) {
	got := splitWords("Don't panic, DON'T panic!  Привіт")
	want := []string{"don't", "panic", "привіт"}
	if len(got) != len(want) {
		t.Fatalf("splitWords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitWords()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
