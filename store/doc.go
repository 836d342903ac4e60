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
Package store provides the key-value hash client and the key-pattern
strategy that tenant partitioning is built on.

# Overview

Every entity kind stores one Redis hash per tenant. The hash name
addresses the partition, the field name addresses one entity within it,
and field values are serialized entities. The Client exposes only
hash-level primitives (put/get/scan/delete); it knows nothing about
entities or tenants.

# Connecting

	client, err := store.Connect("redis://localhost:6379/0")
	if err != nil {
	    log.Fatal(err)
	}
	defer client.Close()

# Key Patterns

Hash names follow <prefix>:<entity-kind>:<tenant-segment>. A KeyPattern
holds the template with one {tenant} placeholder and resolves either a
concrete tenant or the all-tenants wildcard:

	pattern := store.MustKeyPattern("plugin:datasource:{tenant}")

	pattern.Resolve(store.ForTenant(42))  // "plugin:datasource:42"
	pattern.Resolve(store.AllTenants())   // "plugin:datasource:*"

The wildcard form is only valid as a ScanHashNames pattern. The
key-pattern strategy is the sole mechanism providing tenant isolation:
callers above this package never construct hash names by hand.

# Scanning

ScanHashNames walks matching keys with cursor-based SCAN and never
loads the whole key set at once:

	err := client.ScanHashNames(ctx, pattern.Resolve(store.AllTenants()),
	    func(name string) error {
	        fmt.Println(name)
	        return nil
	    })

# Error Handling

Transport failures surface as *store.Error. Absent hashes and fields
are normal outcomes, not errors: Get reports absence via its bool
return, deletes of missing fields are no-ops. The client performs no
retries and no caching.
*/
package store
