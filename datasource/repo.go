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

	"driverhub/repository"
	"driverhub/store"
)

// KeyTemplate is the persisted wire contract for datasource partitions:
// one hash per tenant under the plugin:datasource prefix.
const KeyTemplate = "plugin:datasource:{tenant}"

var keyPattern = store.MustKeyPattern(KeyTemplate)

// KeyPattern returns the datasource partition pattern.
func KeyPattern() store.KeyPattern {
	return keyPattern
}

// Repo is the datasource-specific view over the generic repository. It
// pins the entity kind and key pattern and adds the sparse-filter
// query used by administrative code.
type Repo struct {
	*repository.Repository[Datasource]
}

// NewRepo builds the datasource repository over the given store client.
func NewRepo(client *store.Client) *Repo {
	return &Repo{repository.New[Datasource](client, keyPattern)}
}

// GetAllMatching returns the tenant's datasources narrowed by the
// sparse filter template. The filter is applied in memory after the
// partition (or, for the all-tenants variant, every partition) has
// been read; a nil filter keeps everything.
func (r *Repo) GetAllMatching(ctx context.Context, tenant store.Tenant, filter *Datasource) ([]Datasource, error) {
	return r.GetAllFiltered(ctx, tenant, func(d Datasource) bool {
		return MatchesFilter(&d, filter)
	})
}
