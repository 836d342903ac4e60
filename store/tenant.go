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

package store

import "strconv"

// Tenant selects a partition: either one concrete tenant, or every
// tenant at once. The all-tenants case is a distinct variant rather
// than a reserved id value, so no real tenant id can collide with it.
type Tenant struct {
	id  int64
	all bool
}

// ForTenant addresses the partition of one concrete tenant.
func ForTenant(id int64) Tenant {
	return Tenant{id: id}
}

// AllTenants addresses every tenant partition at once. Resolving a key
// pattern with it yields a scan pattern instead of a single hash name.
func AllTenants() Tenant {
	return Tenant{all: true}
}

// IsAll reports whether this value is the all-tenants variant.
func (t Tenant) IsAll() bool {
	return t.all
}

// ID returns the concrete tenant id. Only meaningful when !IsAll().
func (t Tenant) ID() int64 {
	return t.id
}

// Segment returns the tenant portion of a hash name: the decimal id,
// or the single-level glob wildcard for the all-tenants variant.
func (t Tenant) Segment() string {
	if t.all {
		return "*"
	}
	return strconv.FormatInt(t.id, 10)
}

func (t Tenant) String() string {
	if t.all {
		return "tenant(*)"
	}
	return "tenant(" + strconv.FormatInt(t.id, 10) + ")"
}
