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

package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"driverhub/store"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRepo(store.New(rdb))
}

func TestRepo_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tenant := store.ForTenant(100)

	want := sample()
	want.TenantID = 100
	want.LastUpdateDate = time.Time{} // exercise the never-null stamp

	before := time.Now()
	if err := repo.Create(ctx, tenant, want.DatasourceCode, want); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, found, err := repo.GetByKey(ctx, tenant, "ds1")
	if err != nil || !found {
		t.Fatalf("GetByKey = (found=%v, err=%v)", found, err)
	}
	after := time.Now()

	if !got.EqualConfig(&want) {
		t.Errorf("stored config differs: %+v", got)
	}
	if got.LastUpdateDate.Before(before) || got.LastUpdateDate.After(after) {
		t.Errorf("stamped timestamp %v outside [%v, %v]", got.LastUpdateDate, before, after)
	}
}

func TestRepo_GetAllMatching(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tenant := store.ForTenant(1)

	mk := func(code, dsType, pluginID string) Datasource {
		ds := sample()
		ds.DatasourceCode = code
		ds.DatasourceType = dsType
		ds.DatasourcePluginID = pluginID
		ds.TenantID = 1
		return ds
	}

	_ = repo.Create(ctx, tenant, "m1", mk("m1", "mysql", "mysqlDriverSession"))
	_ = repo.Create(ctx, tenant, "m2", mk("m2", "mysql", "mysqlDriverSession"))
	_ = repo.Create(ctx, tenant, "p1", mk("p1", "postgres", "postgresDriverSession"))

	mysqlOnly, err := repo.GetAllMatching(ctx, tenant, &Datasource{DatasourceType: "mysql"})
	if err != nil {
		t.Fatalf("GetAllMatching failed: %v", err)
	}
	if len(mysqlOnly) != 2 {
		t.Errorf("mysql filter kept %d, want 2", len(mysqlOnly))
	}

	everything, err := repo.GetAllMatching(ctx, tenant, nil)
	if err != nil {
		t.Fatalf("GetAllMatching(nil) failed: %v", err)
	}
	if len(everything) != 3 {
		t.Errorf("nil filter kept %d, want 3", len(everything))
	}
}

func TestRepo_AllTenantsUnion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	one := sample()
	one.TenantID = 1
	two := sample()
	two.DatasourceCode = "ds2"
	two.TenantID = 2

	_ = repo.Create(ctx, store.ForTenant(1), one.DatasourceCode, one)
	_ = repo.Create(ctx, store.ForTenant(2), two.DatasourceCode, two)

	all, err := repo.GetAll(ctx, store.AllTenants())
	if err != nil {
		t.Fatalf("GetAll(all) failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("union has %d entities, want 2", len(all))
	}
	for _, ds := range all {
		if ds.TenantID != 1 && ds.TenantID != 2 {
			t.Errorf("unexpected tenant %d in union", ds.TenantID)
		}
	}
}
