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
	"reflect"
	"testing"

	"driverhub/datasource"
	"driverhub/sessions/base"
)

// fakeSource is the native connection-source type the mock factory
// declares.
type fakeSource struct {
	settings string
}

// mockSession implements base.DriverSession for testing.
type mockSession struct {
	source *fakeSource
	closed bool
}

func (s *mockSession) Ping(ctx context.Context) error { return nil }

func (s *mockSession) Query(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error) {
	return []map[string]interface{}{}, nil
}

func (s *mockSession) Exec(ctx context.Context, statement string, args ...interface{}) (int64, error) {
	return 0, nil
}

func (s *mockSession) Schemas(ctx context.Context) ([]string, error) { return nil, nil }

func (s *mockSession) Tables(ctx context.Context, schema string) ([]string, error) { return nil, nil }

func (s *mockSession) Close(ctx context.Context) error {
	s.closed = true
	return nil
}

// mockFactory implements base.Factory for testing.
type mockFactory struct {
	pluginID string
	openErr  error
}

func (f *mockFactory) PluginID() string { return f.pluginID }

func (f *mockFactory) SourceType() reflect.Type {
	return reflect.TypeOf((*fakeSource)(nil))
}

func (f *mockFactory) OpenSource(ctx context.Context, ds *datasource.Datasource) (interface{}, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeSource{settings: ds.SettingsInfo}, nil
}

func (f *mockFactory) Session(source interface{}) (base.DriverSession, error) {
	src, ok := source.(*fakeSource)
	if !ok {
		return nil, base.NewSessionError(f.pluginID, "Session",
			"incompatible connection source", nil)
	}
	return &mockSession{source: src}, nil
}

func sampleDatasource() *datasource.Datasource {
	return &datasource.Datasource{
		DatasourceCode:     "ds1",
		DatasourceType:     "mysql",
		DatasourceClass:    "*registry.fakeSource",
		DatasourcePluginID: "mysqlDriverSession",
		SettingsInfo:       `{"dsn":"x"}`,
		TenantID:           100,
	}
}

func TestRegister(t *testing.T) {
	reg := New()

	if err := reg.Register(&mockFactory{pluginID: "mysqlDriverSession"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("Count = %d, want 1", reg.Count())
	}
}

func TestRegister_Duplicate(t *testing.T) {
	reg := New()

	_ = reg.Register(&mockFactory{pluginID: "mysqlDriverSession"})
	if err := reg.Register(&mockFactory{pluginID: "mysqlDriverSession"}); err == nil {
		t.Fatal("duplicate Register succeeded, want error")
	}
}

func TestGet_NotFound(t *testing.T) {
	reg := New()

	_, err := reg.Get("oracleDriverSession")
	if !errors.Is(err, ErrPluginNotFound) {
		t.Fatalf("Get err = %v, want ErrPluginNotFound", err)
	}
}

func TestList(t *testing.T) {
	reg := New()
	_ = reg.Register(&mockFactory{pluginID: "postgresDriverSession"})
	_ = reg.Register(&mockFactory{pluginID: "mysqlDriverSession"})

	ids := reg.List()
	if len(ids) != 2 || ids[0] != "mysqlDriverSession" || ids[1] != "postgresDriverSession" {
		t.Errorf("List = %v, want sorted plugin ids", ids)
	}
}

func TestResolve(t *testing.T) {
	reg := New()
	_ = reg.Register(&mockFactory{pluginID: "mysqlDriverSession"})

	session, err := reg.Resolve(context.Background(), sampleDatasource())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if session == nil {
		t.Fatal("Resolve returned nil session")
	}

	// The session is bound to a source built from this entity's
	// settings.
	mock := session.(*mockSession)
	if mock.source.settings != `{"dsn":"x"}` {
		t.Errorf("source settings = %q, want the entity's settingsInfo", mock.source.settings)
	}
}

func TestResolve_PluginNotFound(t *testing.T) {
	reg := New()
	_ = reg.Register(&mockFactory{pluginID: "mysqlDriverSession"})

	ds := sampleDatasource()
	ds.DatasourcePluginID = "oracleDriverSession"

	_, err := reg.Resolve(context.Background(), ds)
	if !errors.Is(err, ErrPluginNotFound) {
		t.Fatalf("Resolve err = %v, want ErrPluginNotFound", err)
	}
}

func TestResolve_SessionPluginOverride(t *testing.T) {
	reg := New()
	_ = reg.Register(&mockFactory{pluginID: "mysqlDriverSession"})
	_ = reg.Register(&mockFactory{pluginID: "auditDriverSession"})

	ds := sampleDatasource()
	ds.SessionPluginID = "auditDriverSession"

	if got := PluginFor(ds); got != "auditDriverSession" {
		t.Errorf("PluginFor = %q, want the session-level override", got)
	}

	// The override must also drive resolution failures: an override
	// naming an unregistered plugin fails even though the
	// datasource-level plugin exists.
	ds.SessionPluginID = "missingDriverSession"
	_, err := reg.Resolve(context.Background(), ds)
	if !errors.Is(err, ErrPluginNotFound) {
		t.Fatalf("Resolve err = %v, want ErrPluginNotFound for the override id", err)
	}
}

func TestResolve_OpenSourceFailure(t *testing.T) {
	reg := New()
	openErr := errors.New("connection refused")
	_ = reg.Register(&mockFactory{pluginID: "mysqlDriverSession", openErr: openErr})

	_, err := reg.Resolve(context.Background(), sampleDatasource())
	if !errors.Is(err, openErr) {
		t.Fatalf("Resolve err = %v, want wrapped open failure", err)
	}
}

func TestSessionError(t *testing.T) {
	factory := &mockFactory{pluginID: "mysqlDriverSession"}

	_, err := factory.Session("not a fake source")
	var sessErr *base.SessionError
	if !errors.As(err, &sessErr) {
		t.Fatalf("err = %v, want *base.SessionError", err)
	}
	if sessErr.Plugin != "mysqlDriverSession" {
		t.Errorf("Plugin = %q, want mysqlDriverSession", sessErr.Plugin)
	}
}
