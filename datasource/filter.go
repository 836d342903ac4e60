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

// MatchesFilter reports whether the candidate satisfies a sparse filter
// template. A nil filter matches everything. Otherwise every attribute
// set on the filter (plugin id, datasource class, datasource type,
// enabled flag) must equal the candidate's exactly; attributes left
// empty impose no constraint. This is partial equality, not pattern
// matching.
func MatchesFilter(candidate, filter *Datasource) bool {
	if filter == nil {
		return true
	}
	if filter.DatasourcePluginID != "" && filter.DatasourcePluginID != candidate.DatasourcePluginID {
		return false
	}
	if filter.DatasourceClass != "" && filter.DatasourceClass != candidate.DatasourceClass {
		return false
	}
	if filter.DatasourceType != "" && filter.DatasourceType != candidate.DatasourceType {
		return false
	}
	if filter.EnabledFlag != nil {
		if candidate.EnabledFlag == nil || *filter.EnabledFlag != *candidate.EnabledFlag {
			return false
		}
	}
	return true
}
