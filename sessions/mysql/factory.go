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

// Package mysql implements the driver-session plugin for MySQL 5.7+
// and 8.0+ backends over database/sql with connection pooling.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"driverhub/datasource"
	"driverhub/sessions/base"
)

// PluginID identifies this factory in the session registry. Stored
// datasource configurations reference it via datasourcePluginId.
const PluginID = "mysqlDriverSession"

const (
	// DefaultMaxOpenConns is the default maximum number of open connections
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections
	DefaultMaxIdleConns = 5
	// DefaultConnMaxLifetime is the default maximum connection lifetime
	DefaultConnMaxLifetime = 5 * time.Minute
	// DefaultPingTimeout bounds the connection test after opening
	DefaultPingTimeout = 10 * time.Second
)

// Settings is the driver-specific shape of a datasource's settingsInfo
// blob.
type Settings struct {
	DSN             string `json:"dsn,omitempty"`
	Host            string `json:"host,omitempty"`
	Port            int    `json:"port,omitempty"`
	Database        string `json:"database,omitempty"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
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

// BuildDSN constructs the MySQL Data Source Name. A provided DSN is
// used directly after ensuring parseTime; otherwise the DSN is built
// from host/port/database with production defaults.
func (s *Settings) BuildDSN() (string, error) {
	if s.DSN != "" {
		dsn := s.DSN
		if !strings.Contains(dsn, "parseTime") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		return dsn, nil
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
		port = 3306
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", s.Username, s.Password, host, port, s.Database)

	params := []string{
		"parseTime=true",
		"loc=UTC",
		"charset=utf8mb4",
		"collation=utf8mb4_unicode_ci",
		"timeout=10s",
		"readTimeout=30s",
		"writeTimeout=30s",
		"multiStatements=false",
		"interpolateParams=false",
	}
	return dsn + "?" + strings.Join(params, "&"), nil
}

// Factory produces MySQL driver sessions over *sql.DB connection
// sources. Stateless; one instance serves concurrent resolutions.
type Factory struct {
	logger *log.Logger
}

// NewFactory creates the MySQL session factory.
func NewFactory() *Factory {
	return &Factory{
		logger: log.New(os.Stdout, "[DS_MYSQL] ", log.LstdFlags),
	}
}

// PluginID returns the registry identifier of this factory.
func (f *Factory) PluginID() string {
	return PluginID
}

// SourceType returns the native connection-source type this factory
// accepts.
func (f *Factory) SourceType() reflect.Type {
	return reflect.TypeOf((*sql.DB)(nil))
}

// OpenSource binds the datasource's settings to a new pooled *sql.DB
// and verifies it with a bounded ping.
func (f *Factory) OpenSource(ctx context.Context, ds *datasource.Datasource) (interface{}, error) {
	settings, err := ParseSettings(ds.SettingsInfo)
	if err != nil {
		return nil, base.NewSessionError(PluginID, "OpenSource", "failed to parse settings", err)
	}

	dsn, err := settings.BuildDSN()
	if err != nil {
		return nil, base.NewSessionError(PluginID, "OpenSource", "failed to build DSN", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, base.NewSessionError(PluginID, "OpenSource", "failed to open connection", err)
	}

	maxOpen := settings.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = DefaultMaxOpenConns
	}
	maxIdle := settings.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = DefaultMaxIdleConns
	}
	lifetime := DefaultConnMaxLifetime
	if settings.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(settings.ConnMaxLifetime); err == nil {
			lifetime = d
		}
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, base.NewSessionError(PluginID, "OpenSource", "failed to ping database", err)
	}

	f.logger.Printf("Opened MySQL source for datasource '%s' (max_open=%d, max_idle=%d)",
		ds.DatasourceCode, maxOpen, maxIdle)
	return db, nil
}

// Session wraps a *sql.DB into a driver session. The session takes
// ownership of the source.
func (f *Factory) Session(source interface{}) (base.DriverSession, error) {
	db, ok := source.(*sql.DB)
	if !ok {
		return nil, base.NewSessionError(PluginID, "Session",
			fmt.Sprintf("incompatible connection source %T, want *sql.DB", source), nil)
	}
	return newSession(db, f.logger), nil
}
