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

package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"driverhub/datasource"
	"driverhub/repository"
	"driverhub/sessions/base"
	"driverhub/sessions/mongodb"
	"driverhub/sessions/mysql"
	"driverhub/sessions/postgres"
	"driverhub/sessions/registry"
	"driverhub/store"
)

// builders maps plugin ids to their factory constructors. The zero
// Plugins config enables all of them.
var builders = map[string]func() base.Factory{
	mysql.PluginID:    func() base.Factory { return mysql.NewFactory() },
	postgres.PluginID: func() base.Factory { return postgres.NewFactory() },
	mongodb.PluginID:  func() base.Factory { return mongodb.NewFactory() },
}

// Service is the assembled DriverHub runtime: the store client, the
// datasource repository over it, and the session-plugin registry.
type Service struct {
	Store       *store.Client
	Datasources *datasource.Repo
	Registry    *registry.Registry

	logger *log.Logger
}

// Bootstrap builds a Service from a loaded config: connects the store,
// registers the enabled session plugins, and writes any seed
// datasources that are not already present.
func Bootstrap(ctx context.Context, cfg *Config) (*Service, error) {
	logger := log.New(os.Stdout, "[BOOTSTRAP] ", log.LstdFlags)

	client, err := store.Connect(cfg.Store.URL)
	if err != nil {
		return nil, fmt.Errorf("store connection failed: %w", err)
	}

	reg := registry.New()
	enabled := cfg.Plugins.Enabled
	if len(enabled) == 0 {
		for id := range builders {
			enabled = append(enabled, id)
		}
	}
	for _, id := range enabled {
		build, ok := builders[id]
		if !ok {
			_ = client.Close()
			return nil, fmt.Errorf("unknown session plugin %q", id)
		}
		if err := reg.Register(build()); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to register plugin %q: %w", id, err)
		}
	}

	svc := &Service{
		Store:       client,
		Datasources: datasource.NewRepo(client),
		Registry:    reg,
		logger:      logger,
	}

	if err := svc.seed(ctx, cfg.Seed); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Printf("Service ready (plugins=%v, seeded=%d)", reg.List(), len(cfg.Seed))
	return svc, nil
}

// seed registers the configured datasources, skipping codes that
// already exist so restarts never clobber live configuration.
func (s *Service) seed(ctx context.Context, entries []SeedEntry) error {
	for _, entry := range entries {
		ds := entry.Datasource()
		ds.SetLastUpdate(time.Time{})

		tenant := store.ForTenant(entry.TenantID)
		err := s.Datasources.Create(ctx, tenant, ds.DatasourceCode, *ds)
		if errors.Is(err, repository.ErrAlreadyExists) {
			s.logger.Printf("Seed datasource %s already present for tenant %d, skipping",
				ds.DatasourceCode, entry.TenantID)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed datasource %s: %w", ds.DatasourceCode, err)
		}
	}
	return nil
}

// Close releases the service's store connection.
func (s *Service) Close() error {
	return s.Store.Close()
}
