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

/*
Package base defines the contracts between the session registry and
backend driver plugins.

# Overview

A plugin is one Factory implementation per backend kind. The factory
declares the native connection-source type it works with (a *sql.DB, a
*mongo.Client, ...), knows how to open such a source from a stored
datasource configuration, and wraps a source into a DriverSession — the
backend-agnostic handle callers use to run statements.

	factory := mysql.NewFactory()

	src, err := factory.OpenSource(ctx, ds)
	if err != nil {
	    return err
	}
	session, err := factory.Session(src)
	if err != nil {
	    return err
	}
	defer session.Close(ctx)

	rows, err := session.Query(ctx, "SELECT id, name FROM users WHERE id = ?", 7)

# Ownership

The session owns its connection-source once created: closing the
session closes the source. Factories are stateless lookups — they never
retain sources or sessions, so one factory instance safely serves
concurrent resolutions.

# Error Handling

Factory and session failures are wrapped in *SessionError carrying the
plugin id and operation:

	var sessErr *base.SessionError
	if errors.As(err, &sessErr) {
	    log.Printf("plugin %s failed in %s: %s", sessErr.Plugin, sessErr.Operation, sessErr.Message)
	}
*/
package base
