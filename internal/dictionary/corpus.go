// Package dictionary sources training corpora from Postgres. It streams
// document text out of a configurable table into a plain-text corpus file
// that lm.Train consumes.
package dictionary

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"

	"github.com/lib/pq"

	"github.com/contextspell/internal/config"
	"github.com/contextspell/internal/debug"
)

// Connect opens a Postgres connection from PG* environment variables.
func Connect() (*sql.DB, error) {
	host := config.GetEnv("PGHOST", "localhost")
	port := config.GetEnv("PGPORT", "5432")
	user := config.GetEnv("PGUSER", "postgres")
	password := config.GetEnv("PGPASSWORD", "postgres")
	dbname := config.GetEnv("PGDATABASE", "contextspell")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

// CorpusSource streams document text rows from one table/column.
type CorpusSource struct {
	db     *sql.DB
	table  string
	column string
	debug  bool
}

// NewCorpusSource creates a source reading column from table. Empty values
// default to the documents table's body column.
func NewCorpusSource(db *sql.DB, table, column string) *CorpusSource {
	if table == "" {
		table = "documents"
	}
	if column == "" {
		column = "body"
	}
	return &CorpusSource{db: db, table: table, column: column}
}

// SetDebug enables progress output during exports.
func (s *CorpusSource) SetDebug(enabled bool) {
	s.debug = enabled
}

// Export streams every non-empty document into a newline-delimited corpus
// file at path and returns the number of documents written.
func (s *CorpusSource) Export(path string) (int64, error) {
	done := debug.Timing(s.debug, fmt.Sprintf("corpus export from %s", s.table))
	defer done()

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s IS NOT NULL AND %s != ''",
		pq.QuoteIdentifier(s.column), pq.QuoteIdentifier(s.table),
		pq.QuoteIdentifier(s.column), pq.QuoteIdentifier(s.column),
	)
	rows, err := s.db.Query(query)
	if err != nil {
		return 0, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating corpus file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var count int64
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return count, fmt.Errorf("scanning document row: %w", err)
		}
		if _, err := w.WriteString(body); err != nil {
			return count, fmt.Errorf("writing corpus file: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return count, fmt.Errorf("writing corpus file: %w", err)
		}
		count++
		if count%10000 == 0 {
			debug.Output(s.debug, "exported %d documents", count)
		}
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("reading document rows: %w", err)
	}
	if err := w.Flush(); err != nil {
		return count, fmt.Errorf("flushing corpus file: %w", err)
	}
	return count, nil
}
