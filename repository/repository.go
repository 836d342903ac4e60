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

package repository

import (
	"context"
	"log"
	"os"
	"sort"

	"driverhub/store"
)

// Repository provides tenant-scoped CRUD over one entity kind stored as
// hash fields in the key-value store. The entity type is fixed by the
// type parameter; one repository instance serves exactly one kind.
//
// Uniqueness enforcement in Create and Update is check-then-act: the
// existence check and the write are two separate store calls with no
// lock or conditional-write between them. Two concurrent creates of the
// same key can both pass the check, with the later write winning. This
// is an accepted limitation of the store's primitives, not a bug this
// layer hides.
type Repository[T any] struct {
	store   *store.Client
	pattern store.KeyPattern
	codec   Codec[T]
	metrics *Metrics
	logger  *log.Logger
}

// Option customizes a Repository at construction.
type Option[T any] func(*Repository[T])

// WithCodec replaces the default JSON codec.
func WithCodec[T any](c Codec[T]) Option[T] {
	return func(r *Repository[T]) { r.codec = c }
}

// WithMetrics attaches a shared metrics collector.
func WithMetrics[T any](m *Metrics) Option[T] {
	return func(r *Repository[T]) { r.metrics = m }
}

// New builds a repository for one entity kind over the given store
// client and key pattern.
func New[T any](st *store.Client, pattern store.KeyPattern, opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		store:   st,
		pattern: pattern,
		codec:   JSONCodec[T](),
		metrics: NewMetrics(),
		logger:  log.New(os.Stdout, "[DS_REPO] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics returns the repository's operation counters.
func (r *Repository[T]) Metrics() *Metrics {
	return r.metrics
}

// GetByKey fetches one entity from the tenant's partition. The second
// return is false when the key is absent.
func (r *Repository[T]) GetByKey(ctx context.Context, tenant store.Tenant, key string) (entity T, found bool, err error) {
	defer func() { r.metrics.RecordRead(err) }()

	hash, err := r.concreteHash("GetByKey", tenant)
	if err != nil {
		return entity, false, err
	}

	raw, ok, err := r.store.Get(ctx, hash, key)
	if err != nil {
		return entity, false, &Error{Op: "GetByKey", Hash: hash, Field: key, Err: err}
	}
	if !ok {
		return entity, false, nil
	}

	entity, err = r.codec.Decode([]byte(raw))
	if err != nil {
		return entity, false, &CodecError{Hash: hash, Field: key, Err: err}
	}
	return entity, true, nil
}

// GetAll returns every entity in the tenant's partition. With the
// all-tenants variant it enumerates every matching partition via
// cursor-based scan and returns the union; order is unspecified either
// way.
func (r *Repository[T]) GetAll(ctx context.Context, tenant store.Tenant) ([]T, error) {
	return r.GetAllFiltered(ctx, tenant, nil)
}

// GetAllFiltered is GetAll with an in-memory predicate applied after
// decoding. A nil predicate keeps everything.
func (r *Repository[T]) GetAllFiltered(ctx context.Context, tenant store.Tenant, keep func(T) bool) (entities []T, err error) {
	if tenant.IsAll() {
		defer func() { r.metrics.RecordScan(err) }()

		pattern := r.pattern.Resolve(tenant)
		err = r.store.ScanHashNames(ctx, pattern, func(hash string) error {
			decoded, derr := r.decodeHash(ctx, hash, keep)
			if derr != nil {
				return derr
			}
			entities = append(entities, decoded...)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return entities, nil
	}

	defer func() { r.metrics.RecordRead(err) }()

	entities, err = r.decodeHash(ctx, r.pattern.Resolve(tenant), keep)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// decodeHash loads and decodes every field value of one partition.
func (r *Repository[T]) decodeHash(ctx context.Context, hash string, keep func(T) bool) ([]T, error) {
	values, err := r.store.Values(ctx, hash)
	if err != nil {
		return nil, &Error{Op: "GetAll", Hash: hash, Err: err}
	}

	entities := make([]T, 0, len(values))
	for _, raw := range values {
		entity, err := r.codec.Decode([]byte(raw))
		if err != nil {
			return nil, &CodecError{Hash: hash, Err: err}
		}
		if keep == nil || keep(entity) {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}

// Create stores a new entity under the key, failing with
// ErrAlreadyExists when the key is present. The existence check and the
// put are separate store calls; see the type comment for the race this
// implies.
func (r *Repository[T]) Create(ctx context.Context, tenant store.Tenant, key string, entity T) (err error) {
	defer func() { r.metrics.RecordWrite(err) }()

	hash, err := r.concreteHash("Create", tenant)
	if err != nil {
		return err
	}

	exists, err := r.store.HasField(ctx, hash, key)
	if err != nil {
		return &Error{Op: "Create", Hash: hash, Field: key, Err: err}
	}
	if exists {
		return &Error{Op: "Create", Hash: hash, Field: key, Err: ErrAlreadyExists}
	}

	return r.put(ctx, "Create", hash, key, entity)
}

// BatchCreate stores every entry in one bulk put, failing with
// ErrAlreadyExists naming the first offending key if any key is already
// present. All keys are checked before any write; the batch is not
// atomic relative to concurrent single-key writes.
func (r *Repository[T]) BatchCreate(ctx context.Context, tenant store.Tenant, entries map[string]T) (err error) {
	defer func() { r.metrics.RecordWrite(err) }()

	hash, err := r.concreteHash("BatchCreate", tenant)
	if err != nil {
		return err
	}

	for _, key := range sortedKeys(entries) {
		exists, herr := r.store.HasField(ctx, hash, key)
		if herr != nil {
			return &Error{Op: "BatchCreate", Hash: hash, Field: key, Err: herr}
		}
		if exists {
			return &Error{Op: "BatchCreate", Hash: hash, Field: key, Err: ErrAlreadyExists}
		}
	}

	return r.putAll(ctx, "BatchCreate", hash, entries)
}

// Update replaces the entity stored under the key, failing with
// ErrNotFound when the key is absent. This is a full replace; there is
// no partial patch.
func (r *Repository[T]) Update(ctx context.Context, tenant store.Tenant, key string, entity T) (err error) {
	defer func() { r.metrics.RecordWrite(err) }()

	hash, err := r.concreteHash("Update", tenant)
	if err != nil {
		return err
	}

	exists, err := r.store.HasField(ctx, hash, key)
	if err != nil {
		return &Error{Op: "Update", Hash: hash, Field: key, Err: err}
	}
	if !exists {
		return &Error{Op: "Update", Hash: hash, Field: key, Err: ErrNotFound}
	}

	return r.put(ctx, "Update", hash, key, entity)
}

// BatchUpdate replaces every entry in one bulk put, failing with
// ErrNotFound naming the first key absent from the store.
func (r *Repository[T]) BatchUpdate(ctx context.Context, tenant store.Tenant, entries map[string]T) (err error) {
	defer func() { r.metrics.RecordWrite(err) }()

	hash, err := r.concreteHash("BatchUpdate", tenant)
	if err != nil {
		return err
	}

	for _, key := range sortedKeys(entries) {
		exists, herr := r.store.HasField(ctx, hash, key)
		if herr != nil {
			return &Error{Op: "BatchUpdate", Hash: hash, Field: key, Err: herr}
		}
		if !exists {
			return &Error{Op: "BatchUpdate", Hash: hash, Field: key, Err: ErrNotFound}
		}
	}

	return r.putAll(ctx, "BatchUpdate", hash, entries)
}

// Delete removes one entity. Deleting an absent key is a no-op.
func (r *Repository[T]) Delete(ctx context.Context, tenant store.Tenant, key string) (err error) {
	defer func() { r.metrics.RecordDelete(err) }()

	hash, err := r.concreteHash("Delete", tenant)
	if err != nil {
		return err
	}
	if err := r.store.DeleteFields(ctx, hash, key); err != nil {
		return &Error{Op: "Delete", Hash: hash, Field: key, Err: err}
	}
	return nil
}

// BatchDelete removes the given keys. Absent keys are ignored.
func (r *Repository[T]) BatchDelete(ctx context.Context, tenant store.Tenant, keys ...string) (err error) {
	defer func() { r.metrics.RecordDelete(err) }()

	hash, err := r.concreteHash("BatchDelete", tenant)
	if err != nil {
		return err
	}
	if err := r.store.DeleteFields(ctx, hash, keys...); err != nil {
		return &Error{Op: "BatchDelete", Hash: hash, Err: err}
	}
	return nil
}

// Clear removes the tenant's entire partition in one operation.
func (r *Repository[T]) Clear(ctx context.Context, tenant store.Tenant) (err error) {
	defer func() { r.metrics.RecordDelete(err) }()

	hash, err := r.concreteHash("Clear", tenant)
	if err != nil {
		return err
	}
	if err := r.store.DeleteHash(ctx, hash); err != nil {
		return &Error{Op: "Clear", Hash: hash, Err: err}
	}
	r.logger.Printf("Cleared partition %s", hash)
	return nil
}

// IsExist reports whether the key is present in the tenant's partition.
func (r *Repository[T]) IsExist(ctx context.Context, tenant store.Tenant, key string) (exists bool, err error) {
	defer func() { r.metrics.RecordRead(err) }()

	hash, err := r.concreteHash("IsExist", tenant)
	if err != nil {
		return false, err
	}
	exists, err = r.store.HasField(ctx, hash, key)
	if err != nil {
		return false, &Error{Op: "IsExist", Hash: hash, Field: key, Err: err}
	}
	return exists, nil
}

// Count returns the number of entities in the tenant's partition.
func (r *Repository[T]) Count(ctx context.Context, tenant store.Tenant) (n int64, err error) {
	defer func() { r.metrics.RecordRead(err) }()

	hash, err := r.concreteHash("Count", tenant)
	if err != nil {
		return 0, err
	}
	n, err = r.store.Size(ctx, hash)
	if err != nil {
		return 0, &Error{Op: "Count", Hash: hash, Err: err}
	}
	return n, nil
}

// concreteHash resolves the tenant's hash name, rejecting the
// all-tenants variant for operations that address a single partition.
func (r *Repository[T]) concreteHash(op string, tenant store.Tenant) (string, error) {
	if tenant.IsAll() {
		return "", &Error{Op: op, Hash: r.pattern.Template(), Err: ErrWildcardTenant}
	}
	return r.pattern.Resolve(tenant), nil
}

func (r *Repository[T]) put(ctx context.Context, op, hash, key string, entity T) error {
	data, err := r.codec.Encode(entity)
	if err != nil {
		return &CodecError{Hash: hash, Field: key, Err: err}
	}
	if err := r.store.Put(ctx, hash, key, string(data)); err != nil {
		return &Error{Op: op, Hash: hash, Field: key, Err: err}
	}
	return nil
}

func (r *Repository[T]) putAll(ctx context.Context, op, hash string, entries map[string]T) error {
	encoded := make(map[string]string, len(entries))
	for key, entity := range entries {
		data, err := r.codec.Encode(entity)
		if err != nil {
			return &CodecError{Hash: hash, Field: key, Err: err}
		}
		encoded[key] = string(data)
	}
	if err := r.store.PutAll(ctx, hash, encoded); err != nil {
		return &Error{Op: op, Hash: hash, Err: err}
	}
	return nil
}

// sortedKeys gives batch existence checks a deterministic order so the
// "first offending key" named in errors is stable.
func sortedKeys[T any](entries map[string]T) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
