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
Package repository provides generic tenant-scoped CRUD over the
key-value store for one entity kind.

# Overview

A Repository[T] binds three collaborators: a store.Client for hash
primitives, a store.KeyPattern for tenant partitioning, and a Codec[T]
for (de)serialization. The entity type is fixed by the type parameter
when the repository is constructed — one instance, one kind — and is
never inferred from stored payloads.

	repo := repository.New[datasource.Datasource](client,
	    store.MustKeyPattern("plugin:datasource:{tenant}"))

	err := repo.Create(ctx, store.ForTenant(100), "ds1", entity)
	ds, found, err := repo.GetByKey(ctx, store.ForTenant(100), "ds1")
	all, err := repo.GetAll(ctx, store.AllTenants())

# Error Kinds

Expected CRUD outcomes are sentinel errors matched with errors.Is:

	if errors.Is(err, repository.ErrAlreadyExists) { ... }
	if errors.Is(err, repository.ErrNotFound) { ... }

Transport failures carry a wrapped *store.Error and should be treated
as hard failures of the calling operation; the repository performs no
retry or backoff. Malformed payloads surface as *CodecError.

# Concurrency

Create and Update enforce uniqueness with a check-then-act pair of
store calls. There is no conditional-write or lock: two concurrent
creates of one key can both pass the existence check, and the later
write wins. Batch operations are additionally not atomic across
fields — a crash mid-batch can leave a partial write that is not rolled
back. Callers that need stronger guarantees must serialize externally.
*/
package repository
