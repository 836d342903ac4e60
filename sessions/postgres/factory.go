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

// Package postgres provides the PostgreSQL driver-session plugin. It
// opens database/sql pools via lib/pq and serves sessions speaking
// PostgreSQL dialect with $n placeholders.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"reflect"
	"time"

	_ "github.com/lib/pq"

	"driverhub/datasource"
	"driverhub/sessions/base"
)

// PluginID is the registry identifier for the PostgreSQL session plugin.
const PluginID = "postgresDriverSession"

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultPingTimeout     = 10 * time.Second
)

// Settings is the PostgreSQL shape of a datasource settingsInfo blob.
// Either DSN carries a complete connection string, or the connection
// is assembled from the individual fields.
type Settings struct {
	DSN             string `json:"dsn,omitempty"`
	Host            string `json:"host,omitempty"`
	Port            int    `json:"port,omitempty"`
	Database        string `json:"database,omitempty"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
	SSLMode         string `json:"sslMode,omitempty"`
	MaxOpenConns    int    `json:"maxOpenConns,omitempty"`
	MaxIdleConns    int    `json:"maxIdleConns,omitempty"`
	ConnMaxLifetime string `json:"connMaxLifetime,omitempty"`
}

// ParseSettings decodes a settingsInfo blob.
func ParseSettings(settingsInfo string) (*Settings, error) {
	if settingsInfo == "" {
		return nil, fmt.Errorf("settingsInfo is empty")
	}
	var s Settings
	if err := json.Unmarshal([]byte(settingsInfo), &s); err != nil {
		return nil, fmt.Errorf("malformed settingsInfo: %w", err)
	}
	return &s, nil
}

// BuildDSN constructs the lib/pq connection string. A provided DSN is
// used verbatim; otherwise key=value pairs are assembled from the
// individual fields. sslMode defaults to require.
func (s *Settings) BuildDSN() (string, error) {
	if s.DSN != "" {
		return s.DSN, nil
	}

	if s.Database == "" {
		return "", fmt.Errorf("database name is required")
	}

	host := s.Host
	if host == "" {
		host = "localhost"
	}
	port := s.Port
	if port == 0 {
		port = 5432
	}
	sslMode := s.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s connect_timeout=10",
		host, port, s.Database, sslMode)
	if s.Username != "" {
		dsn += " user=" + s.Username
	}
	if s.Password != "" {
		dsn += " password=" + s.Password
	}
	return dsn, nil
}

// Factory produces PostgreSQL driver sessions over *sql.DB connection
// sources. Stateless; one instance serves concurrent resolutions.
type Factory struct {
	logger *log.Logger
}

// NewFactory creates the PostgreSQL session factory.
func NewFactory() *Factory {
	return &Factory{
		logger: log.New(os.Stdout, "[DS_POSTGRES] ", log.LstdFlags),
	}
}

// PluginID returns the registry identifier of this plugin.
func (f *Factory) PluginID() string {
	return PluginID
}

// SourceType reports the connection-source type produced by OpenSource.
func (f *Factory) SourceType() reflect.Type {
	return reflect.TypeOf((*sql.DB)(nil))
}

// OpenSource opens and verifies a PostgreSQL connection pool from the
// datasource's settingsInfo.
func (f *Factory) OpenSource(ctx context.Context, ds *datasource.Datasource) (interface{}, error) {
	settings, err := ParseSettings(ds.SettingsInfo)
	if err != nil {
		return nil, base.NewSessionError(PluginID, "OpenSource", "invalid settings", err)
	}

	dsn, err := settings.BuildDSN()
	if err != nil {
		return nil, base.NewSessionError(PluginID, "OpenSource", "invalid settings", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, base.NewSessionError(PluginID, "OpenSource", "failed to open connection", err)
	}

	maxOpen := settings.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	maxIdle := settings.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConns
	}
	lifetime := defaultConnMaxLifetime
	if settings.ConnMaxLifetime != "" {
		if parsed, err := time.ParseDuration(settings.ConnMaxLifetime); err == nil {
			lifetime = parsed
		}
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, base.NewSessionError(PluginID, "OpenSource", "failed to ping database", err)
	}

	f.logger.Printf("Opened PostgreSQL source for datasource %s (max_conns=%d)", ds.DatasourceCode, maxOpen)
	return db, nil
}

// Session wraps an opened *sql.DB source in a driver session.
func (f *Factory) Session(source interface{}) (base.DriverSession, error) {
	db, ok := source.(*sql.DB)
	if !ok {
		return nil, base.NewSessionError(PluginID, "Session",
			fmt.Sprintf("unexpected source type %T, want *sql.DB", source), nil)
	}
	return newSession(db, f.logger), nil
}
