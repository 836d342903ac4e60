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
	"encoding/json"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func sample() Datasource {
	return Datasource{
		DatasourceCode:        "ds1",
		DatasourceDescription: "primary orders db",
		DatasourceType:        "mysql",
		DatasourceClass:       "*sql.DB",
		DatasourcePluginID:    "mysqlDriverSession",
		SettingsInfo:          `{"dsn":"user:pass@tcp(localhost:3306)/orders"}`,
		EnabledFlag:           intPtr(Enabled),
		TenantID:              100,
		LastUpdateDate:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRoundTrip(t *testing.T) {
	want := sample()

	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got Datasource
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !got.EqualConfig(&want) {
		t.Errorf("round trip changed config: %+v", got)
	}
	if !got.LastUpdateDate.Equal(want.LastUpdateDate) {
		t.Errorf("LastUpdateDate = %v, want %v", got.LastUpdateDate, want.LastUpdateDate)
	}
}

func TestRoundTrip_UnsetTimestampIsStamped(t *testing.T) {
	ds := sample()
	ds.LastUpdateDate = time.Time{}

	before := time.Now()
	data, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got Datasource
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	after := time.Now()

	if got.LastUpdateDate.IsZero() {
		t.Fatal("decoded timestamp still unset")
	}
	if got.LastUpdateDate.Before(before) || got.LastUpdateDate.After(after) {
		t.Errorf("decoded timestamp %v outside [%v, %v]", got.LastUpdateDate, before, after)
	}
}

func TestLastUpdate_NeverNull(t *testing.T) {
	var ds Datasource

	first := ds.LastUpdate()
	if first.IsZero() {
		t.Fatal("LastUpdate returned the zero time")
	}

	// Each unset read yields a fresh timestamp, not a cached one.
	second := ds.LastUpdate()
	if second.Before(first) {
		t.Errorf("second read %v precedes first %v", second, first)
	}

	// A set value is returned verbatim.
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ds.SetLastUpdate(fixed)
	if got := ds.LastUpdate(); !got.Equal(fixed) {
		t.Errorf("LastUpdate = %v, want %v", got, fixed)
	}
}

func TestSetLastUpdate_NormalizesZero(t *testing.T) {
	var ds Datasource

	before := time.Now()
	ds.SetLastUpdate(time.Time{})
	after := time.Now()

	if ds.LastUpdateDate.IsZero() {
		t.Fatal("zero value not normalized")
	}
	if ds.LastUpdateDate.Before(before) || ds.LastUpdateDate.After(after) {
		t.Errorf("normalized timestamp %v outside [%v, %v]", ds.LastUpdateDate, before, after)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Datasource)
		wantErr bool
	}{
		{"valid", func(*Datasource) {}, false},
		{"nil enabled flag", func(d *Datasource) { d.EnabledFlag = nil }, false},
		{"missing code", func(d *Datasource) { d.DatasourceCode = "" }, true},
		{"missing type", func(d *Datasource) { d.DatasourceType = "" }, true},
		{"missing class", func(d *Datasource) { d.DatasourceClass = "" }, true},
		{"missing plugin id", func(d *Datasource) { d.DatasourcePluginID = "" }, true},
		{"enabled flag out of range", func(d *Datasource) { d.EnabledFlag = intPtr(2) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := sample()
			tt.mutate(&ds)
			err := ds.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEqualConfig_IgnoresTimestamp(t *testing.T) {
	a := sample()
	b := sample()
	b.LastUpdateDate = b.LastUpdateDate.Add(time.Hour)

	if !a.EqualConfig(&b) {
		t.Error("EqualConfig should ignore LastUpdateDate")
	}

	b.DatasourceType = "postgres"
	if a.EqualConfig(&b) {
		t.Error("EqualConfig missed a differing field")
	}
}
