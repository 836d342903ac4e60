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

package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"driverhub/datasource"
	"driverhub/sessions/base"
)

// ErrPluginNotFound is returned when no factory is registered under
// the plugin id a datasource configuration references.
var ErrPluginNotFound = errors.New("driver session plugin not found")

// Registry maps plugin identifiers to session factories. It holds no
// entity state: populate it once at process startup, then treat it as
// read-only. Reads take the shared lock and are safe for concurrent
// use.
type Registry struct {
	factories map[string]base.Factory
	mu        sync.RWMutex
	logger    *log.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]base.Factory),
		logger:    log.New(os.Stdout, "[DS_SESSIONS] ", log.LstdFlags),
	}
}

// Register adds a factory under its plugin id. Registering the same id
// twice is an error; exactly one factory serves each id.
func (r *Registry) Register(factory base.Factory) error {
	id := factory.PluginID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("plugin '%s' already registered", id)
	}
	r.factories[id] = factory

	r.logger.Printf("Registered driver session plugin '%s' (source type %s)", id, factory.SourceType())
	return nil
}

// Get retrieves the factory registered under the plugin id.
func (r *Registry) Get(id string) (base.Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[id]
	if !exists {
		return nil, fmt.Errorf("plugin '%s': %w", id, ErrPluginNotFound)
	}
	return factory, nil
}

// List returns the registered plugin ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered factories.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

// PluginFor returns the plugin id a datasource resolves through: the
// session-level override when set, the datasource-level id otherwise.
func PluginFor(ds *datasource.Datasource) string {
	if ds.SessionPluginID != "" {
		return ds.SessionPluginID
	}
	return ds.DatasourcePluginID
}

// Resolve turns a stored datasource configuration into a live driver
// session: it looks up the factory by plugin id, binds the
// configuration's settings to a new connection-source, and wraps the
// source into a session. The returned session owns the source; the
// caller owns the session.
func (r *Registry) Resolve(ctx context.Context, ds *datasource.Datasource) (base.DriverSession, error) {
	id := PluginFor(ds)

	factory, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	source, err := factory.OpenSource(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("open source for datasource '%s': %w", ds.DatasourceCode, err)
	}

	session, err := factory.Session(source)
	if err != nil {
		return nil, fmt.Errorf("bind session for datasource '%s': %w", ds.DatasourceCode, err)
	}

	r.logger.Printf("Resolved datasource '%s' through plugin '%s'", ds.DatasourceCode, id)
	return session, nil
}
