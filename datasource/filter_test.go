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

import "testing"

func TestMatchesFilter(t *testing.T) {
	candidate := sample() // mysql, *sql.DB, mysqlDriverSession, enabled

	tests := []struct {
		name   string
		filter *Datasource
		want   bool
	}{
		{"nil filter matches", nil, true},
		{"empty filter matches", &Datasource{}, true},
		{"type match", &Datasource{DatasourceType: "mysql"}, true},
		{"type mismatch", &Datasource{DatasourceType: "postgres"}, false},
		{"plugin id match", &Datasource{DatasourcePluginID: "mysqlDriverSession"}, true},
		{"plugin id mismatch", &Datasource{DatasourcePluginID: "oracleDriverSession"}, false},
		{"class match", &Datasource{DatasourceClass: "*sql.DB"}, true},
		{"class mismatch", &Datasource{DatasourceClass: "*mongo.Client"}, false},
		{"enabled flag match", &Datasource{EnabledFlag: intPtr(Enabled)}, true},
		{"enabled flag mismatch", &Datasource{EnabledFlag: intPtr(Disabled)}, false},
		{
			"all constraints must hold",
			&Datasource{DatasourceType: "mysql", DatasourcePluginID: "oracleDriverSession"},
			false,
		},
		{
			"irrelevant fields impose no constraint",
			&Datasource{DatasourceCode: "other", DatasourceDescription: "x", TenantID: 999},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesFilter(&candidate, tt.filter); got != tt.want {
				t.Errorf("MatchesFilter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesFilter_EnabledFlagOnCandidateUnset(t *testing.T) {
	candidate := sample()
	candidate.EnabledFlag = nil

	if MatchesFilter(&candidate, &Datasource{EnabledFlag: intPtr(Enabled)}) {
		t.Error("filter with enabled flag must not match a candidate without one")
	}
	if !MatchesFilter(&candidate, &Datasource{}) {
		t.Error("empty filter must match a candidate without an enabled flag")
	}
}
