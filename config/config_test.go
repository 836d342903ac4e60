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
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"driverhub/store"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "driverhub.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("DH_TEST_REDIS_URL", "redis://cache1:6379/2")

	path := writeConfig(t, `
version: "1"
store:
  url: ${DH_TEST_REDIS_URL}
plugins:
  enabled:
    - mysqlDriverSession
    - postgresDriverSession
seed:
  - tenant_id: 10
    datasource_code: orders-db
    datasource_type: RDB
    datasource_class: mysql
    datasource_plugin_id: mysqlDriverSession
    settings_info: '{"host":"db1","database":"orders"}'
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.URL != "redis://cache1:6379/2" {
		t.Errorf("env var not expanded, got %q", cfg.Store.URL)
	}
	if len(cfg.Plugins.Enabled) != 2 {
		t.Errorf("expected 2 enabled plugins, got %v", cfg.Plugins.Enabled)
	}
	if len(cfg.Seed) != 1 || cfg.Seed[0].DatasourceCode != "orders-db" {
		t.Errorf("unexpected seed entries: %+v", cfg.Seed)
	}
	if cfg.Seed[0].TenantID != 10 {
		t.Errorf("expected tenant 10, got %d", cfg.Seed[0].TenantID)
	}
}

func TestLoad_EnvDefault(t *testing.T) {
	path := writeConfig(t, `
version: "1"
store:
  url: ${DH_UNSET_URL:-redis://localhost:6379/0}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.URL != "redis://localhost:6379/0" {
		t.Errorf("default not applied, got %q", cfg.Store.URL)
	}
}

func TestLoad_MissingStoreURL(t *testing.T) {
	path := writeConfig(t, "version: \"1\"\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing store url")
	}
}

func TestLoad_InvalidSeedEntry(t *testing.T) {
	path := writeConfig(t, `
version: "1"
store:
  url: redis://localhost:6379
seed:
  - tenant_id: 10
    datasource_code: broken
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for incomplete seed entry")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBootstrap(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &Config{
		Version: "1",
		Store:   StoreConfig{URL: "redis://" + mr.Addr()},
		Plugins: PluginConfig{Enabled: []string{"mysqlDriverSession"}},
		Seed: []SeedEntry{
			{
				TenantID:           10,
				DatasourceCode:     "orders-db",
				DatasourceType:     "RDB",
				DatasourceClass:    "mysql",
				DatasourcePluginID: "mysqlDriverSession",
				SettingsInfo:       `{"host":"db1","database":"orders"}`,
			},
		},
	}

	svc, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer func() { _ = svc.Close() }()

	if got := svc.Registry.List(); len(got) != 1 || got[0] != "mysqlDriverSession" {
		t.Errorf("unexpected registered plugins: %v", got)
	}

	ds, found, err := svc.Datasources.GetByKey(context.Background(), store.ForTenant(10), "orders-db")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if !found {
		t.Fatal("seed datasource not written")
	}
	if ds.DatasourceClass != "mysql" {
		t.Errorf("unexpected seeded entity: %+v", ds)
	}
	if ds.LastUpdate().IsZero() {
		t.Error("seeded datasource has no update timestamp")
	}
}

func TestBootstrap_SeedIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &Config{
		Store:   StoreConfig{URL: "redis://" + mr.Addr()},
		Plugins: PluginConfig{Enabled: []string{"mysqlDriverSession"}},
		Seed: []SeedEntry{
			{
				TenantID:           10,
				DatasourceCode:     "orders-db",
				DatasourceType:     "RDB",
				DatasourceClass:    "mysql",
				DatasourcePluginID: "mysqlDriverSession",
			},
		},
	}

	svc, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first Bootstrap failed: %v", err)
	}

	// Mutate the stored entity, then bootstrap again: the live value
	// must survive.
	ds, _, err := svc.Datasources.GetByKey(context.Background(), store.ForTenant(10), "orders-db")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	ds.DatasourceDescription = "edited in production"
	if err := svc.Datasources.Update(context.Background(), store.ForTenant(10), "orders-db", ds); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	_ = svc.Close()

	svc2, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second Bootstrap failed: %v", err)
	}
	defer func() { _ = svc2.Close() }()

	got, _, err := svc2.Datasources.GetByKey(context.Background(), store.ForTenant(10), "orders-db")
	if err != nil {
		t.Fatalf("GetByKey after reseed failed: %v", err)
	}
	if got.DatasourceDescription != "edited in production" {
		t.Errorf("seed clobbered live datasource: %+v", got)
	}
}

func TestBootstrap_UnknownPlugin(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &Config{
		Store:   StoreConfig{URL: "redis://" + mr.Addr()},
		Plugins: PluginConfig{Enabled: []string{"oracleDriverSession"}},
	}

	if _, err := Bootstrap(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown plugin id")
	}
}

func TestBootstrap_AllPluginsByDefault(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &Config{Store: StoreConfig{URL: "redis://" + mr.Addr()}}

	svc, err := Bootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer func() { _ = svc.Close() }()

	if svc.Registry.Count() != 3 {
		t.Errorf("expected all built-in plugins registered, got %v", svc.Registry.List())
	}
}
