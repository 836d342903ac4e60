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

package base

import (
	"context"
	"reflect"

	"driverhub/datasource"
)

// DriverSession is the live, backend-specific object capable of
// executing operations against a connected database through a
// backend-agnostic surface. A session owns its connection-source:
// Close releases it. Sessions are owned by the caller that requested
// them; factories never retain them.
type DriverSession interface {
	// Ping verifies the backing connection is alive.
	Ping(ctx context.Context) error

	// Query executes a read statement and returns the rows as
	// field-name → value maps. The statement dialect is the backend's
	// own; args use the backend's placeholder convention.
	Query(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error)

	// Exec executes a write statement and returns the number of
	// affected rows (best effort; -1 when the backend cannot tell).
	Exec(ctx context.Context, statement string, args ...interface{}) (int64, error)

	// Schemas lists the schema (database/keyspace) names visible to
	// the session.
	Schemas(ctx context.Context) ([]string, error)

	// Tables lists the table (collection) names within a schema.
	Tables(ctx context.Context, schema string) ([]string, error)

	// Close releases the session and its connection-source.
	Close(ctx context.Context) error
}

// Factory binds one backend kind to the registry. An implementation
// declares the native connection-source type it accepts, opens such a
// source from a stored datasource configuration, and produces a
// DriverSession over a compatible source. Factories hold no per-call
// state and are safe for unsynchronized concurrent use.
type Factory interface {
	// PluginID is the identifier stored on datasource configurations
	// that selects this factory.
	PluginID() string

	// SourceType is the native connection-source type Session accepts,
	// e.g. *sql.DB.
	SourceType() reflect.Type

	// OpenSource binds the configuration's connection settings to a
	// new native connection-source instance of SourceType.
	OpenSource(ctx context.Context, ds *datasource.Datasource) (interface{}, error)

	// Session produces a DriverSession over the source. It fails with
	// a *SessionError when the source is not of SourceType. The
	// returned session takes ownership of the source.
	Session(source interface{}) (DriverSession, error)
}

// SessionError represents a failure inside a session factory or a
// driver session.
type SessionError struct {
	Plugin    string
	Operation string
	Message   string
	Cause     error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return e.Plugin + "." + e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.Plugin + "." + e.Operation + ": " + e.Message
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}

// NewSessionError creates a new SessionError.
func NewSessionError(plugin, operation, message string, cause error) *SessionError {
	return &SessionError{
		Plugin:    plugin,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}
