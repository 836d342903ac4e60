// Copyright 2025 DriverHub
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"driverhub/sessions/base"
)

// Session is the PostgreSQL driver session. Statements use PostgreSQL
// dialect with $n placeholders.
type Session struct {
	db     *sql.DB
	id     string // correlation id for log lines
	logger *log.Logger
}

func newSession(db *sql.DB, logger *log.Logger) *Session {
	return &Session{
		db:     db,
		id:     uuid.NewString(),
		logger: logger,
	}
}

// Ping verifies the backing pool is alive.
func (s *Session) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return base.NewSessionError(PluginID, "Ping", "database unreachable", err)
	}
	return nil
}

// Query executes a SELECT and returns the rows as column → value maps.
func (s *Session) Query(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, base.NewSessionError(PluginID, "Query", "query execution failed", err)
	}
	defer func() { _ = rows.Close() }()

	results, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("session %s: query returned %d rows in %v", s.id, len(results), time.Since(start))
	return results, nil
}

// Exec executes a write statement and returns the affected row count.
func (s *Session) Exec(ctx context.Context, statement string, args ...interface{}) (int64, error) {
	result, err := s.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, base.NewSessionError(PluginID, "Exec", "command execution failed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return -1, nil
	}
	return affected, nil
}

// Schemas lists the non-system schemas of the connected database.
func (s *Session) Schemas(ctx context.Context) ([]string, error) {
	return s.stringColumn(ctx, "Schemas",
		`SELECT schema_name FROM information_schema.schemata
		 WHERE schema_name NOT IN ('pg_catalog', 'information_schema')
		   AND schema_name NOT LIKE 'pg_toast%'
		 ORDER BY schema_name`)
}

// Tables lists the tables of one schema.
func (s *Session) Tables(ctx context.Context, schema string) ([]string, error) {
	return s.stringColumn(ctx, "Tables",
		"SELECT table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name",
		schema)
}

// Close releases the session and its connection pool.
func (s *Session) Close(ctx context.Context) error {
	if err := s.db.Close(); err != nil {
		return base.NewSessionError(PluginID, "Close", "failed to close connection", err)
	}
	return nil
}

func (s *Session) stringColumn(ctx context.Context, op, statement string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, base.NewSessionError(PluginID, op, "metadata query failed", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, base.NewSessionError(PluginID, op, "failed to scan row", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, base.NewSessionError(PluginID, op, "error during row iteration", err)
	}
	return names, nil
}

// scanRows materializes a result set into column → value maps. lib/pq
// returns text-like and numeric-like columns as []byte when scanned
// into interface{}; those are converted to string.
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, base.NewSessionError(PluginID, "Query", "failed to get columns", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, base.NewSessionError(PluginID, "Query", "failed to get column types", err)
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, base.NewSessionError(PluginID, "Query", "failed to scan row", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i], columnTypes[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, base.NewSessionError(PluginID, "Query", "error during row iteration", err)
	}
	return results, nil
}

func convertValue(val interface{}, colType *sql.ColumnType) interface{} {
	bytes, ok := val.([]byte)
	if !ok {
		return val
	}

	typeName := strings.ToUpper(colType.DatabaseTypeName())
	switch {
	case strings.Contains(typeName, "CHAR"),
		strings.Contains(typeName, "TEXT"),
		typeName == "UUID",
		typeName == "NAME",
		typeName == "JSON",
		typeName == "JSONB":
		return string(bytes)
	case strings.Contains(typeName, "NUMERIC"),
		strings.Contains(typeName, "DECIMAL"):
		// Keep arbitrary-precision numerics as strings.
		return string(bytes)
	default:
		return bytes
	}
}
