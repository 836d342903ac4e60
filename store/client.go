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

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// DefaultDialTimeout bounds the initial connection test.
	DefaultDialTimeout = 5 * time.Second
	// ScanBatchSize is the COUNT hint passed to SCAN.
	ScanBatchSize = 100
)

// Value is one result of a MultiGet. Present is false when the field
// does not exist in the hash.
type Value struct {
	Data    string
	Present bool
}

// Client is a thin capability over a remote Redis hash-map store. Every
// entity partition is one hash: the hash name addresses the partition,
// the field name addresses one entity within it. The client performs no
// local caching and no retries; transport failures surface as *Error.
type Client struct {
	rdb    *redis.Client
	logger *log.Logger
}

// New wraps an already-configured Redis client.
func New(rdb *redis.Client) *Client {
	return &Client{
		rdb:    rdb,
		logger: log.New(os.Stdout, "[DS_STORE] ", log.LstdFlags),
	}
}

// Connect parses a Redis URL (redis://host:port/db), opens a pooled
// client and verifies the connection with a bounded ping.
func Connect(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultDialTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := New(rdb)
	c.logger.Printf("Connected to Redis: %s (db=%d)", opts.Addr, opts.DB)
	return c, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies the store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return &Error{Op: "Ping", Err: err}
	}
	return nil
}

// HealthCheck reports reachability, round-trip latency and key count.
func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	err := c.rdb.Ping(ctx).Err()
	latency := time.Since(start)

	if err != nil {
		return &HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	dbSize := c.rdb.DBSize(ctx).Val()

	return &HealthStatus{
		Healthy:   true,
		Latency:   latency,
		KeyCount:  dbSize,
		Timestamp: time.Now(),
	}, nil
}

// Put upserts a single field within the named hash. An existing value
// for the field is overwritten.
func (c *Client) Put(ctx context.Context, hash, field, value string) error {
	if err := c.rdb.HSet(ctx, hash, field, value).Err(); err != nil {
		return &Error{Op: "Put", Hash: hash, Field: field, Err: err}
	}
	return nil
}

// PutAll upserts every field of the map within the named hash in one
// round trip. Existing values are overwritten.
func (c *Client) PutAll(ctx context.Context, hash string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	// HSet with a map issues a single variadic HSET.
	kv := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		kv[k] = v
	}
	if err := c.rdb.HSet(ctx, hash, kv).Err(); err != nil {
		return &Error{Op: "PutAll", Hash: hash, Err: err}
	}
	return nil
}

// Get returns the value of one field. The second return is false when
// the field (or the hash) does not exist.
func (c *Client) Get(ctx context.Context, hash, field string) (string, bool, error) {
	val, err := c.rdb.HGet(ctx, hash, field).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, &Error{Op: "Get", Hash: hash, Field: field, Err: err}
	}
	return val, true, nil
}

// MultiGet returns one Value per requested field, aligned with the
// input order. Absent fields yield Value{Present: false}.
func (c *Client) MultiGet(ctx context.Context, hash string, fields ...string) ([]Value, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	raw, err := c.rdb.HMGet(ctx, hash, fields...).Result()
	if err != nil {
		return nil, &Error{Op: "MultiGet", Hash: hash, Err: err}
	}

	values := make([]Value, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, &Error{Op: "MultiGet", Hash: hash, Field: fields[i],
				Err: fmt.Errorf("unexpected value type %T", v)}
		}
		values[i] = Value{Data: s, Present: true}
	}
	return values, nil
}

// GetAll returns every field and value of the named hash. A missing
// hash yields an empty map.
func (c *Client) GetAll(ctx context.Context, hash string) (map[string]string, error) {
	entries, err := c.rdb.HGetAll(ctx, hash).Result()
	if err != nil {
		return nil, &Error{Op: "GetAll", Hash: hash, Err: err}
	}
	return entries, nil
}

// HasField reports whether the field exists within the hash.
func (c *Client) HasField(ctx context.Context, hash, field string) (bool, error) {
	exists, err := c.rdb.HExists(ctx, hash, field).Result()
	if err != nil {
		return false, &Error{Op: "HasField", Hash: hash, Field: field, Err: err}
	}
	return exists, nil
}

// Fields returns all field names of the hash.
func (c *Client) Fields(ctx context.Context, hash string) ([]string, error) {
	fields, err := c.rdb.HKeys(ctx, hash).Result()
	if err != nil {
		return nil, &Error{Op: "Fields", Hash: hash, Err: err}
	}
	return fields, nil
}

// Values returns all field values of the hash.
func (c *Client) Values(ctx context.Context, hash string) ([]string, error) {
	values, err := c.rdb.HVals(ctx, hash).Result()
	if err != nil {
		return nil, &Error{Op: "Values", Hash: hash, Err: err}
	}
	return values, nil
}

// Size returns the number of fields in the hash.
func (c *Client) Size(ctx context.Context, hash string) (int64, error) {
	n, err := c.rdb.HLen(ctx, hash).Result()
	if err != nil {
		return 0, &Error{Op: "Size", Hash: hash, Err: err}
	}
	return n, nil
}

// ScanHashNames walks every top-level key matching the glob pattern
// using cursor-based SCAN, invoking fn once per key. The full key set
// is never materialized here; fn may stop the walk by returning an
// error, which is passed through unchanged.
func (c *Client) ScanHashNames(ctx context.Context, pattern string, fn func(name string) error) error {
	var cursor uint64
	for {
		batch, next, err := c.rdb.Scan(ctx, cursor, pattern, ScanBatchSize).Result()
		if err != nil {
			return &Error{Op: "ScanHashNames", Hash: pattern, Err: err}
		}
		for _, name := range batch {
			if err := fn(name); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// HashNames materializes all keys matching the pattern. Convenience
// wrapper over ScanHashNames for callers that want the full list.
func (c *Client) HashNames(ctx context.Context, pattern string) ([]string, error) {
	var names []string
	err := c.ScanHashNames(ctx, pattern, func(name string) error {
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteHash removes the entire hash and every field in it. Deleting a
// missing hash is a no-op.
func (c *Client) DeleteHash(ctx context.Context, hash string) error {
	if err := c.rdb.Del(ctx, hash).Err(); err != nil {
		return &Error{Op: "DeleteHash", Hash: hash, Err: err}
	}
	return nil
}

// DeleteFields removes the given fields from the hash. Absent fields
// are ignored.
func (c *Client) DeleteFields(ctx context.Context, hash string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := c.rdb.HDel(ctx, hash, fields...).Err(); err != nil {
		return &Error{Op: "DeleteFields", Hash: hash, Err: err}
	}
	return nil
}

// HealthStatus reports the outcome of a HealthCheck.
type HealthStatus struct {
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"latency"`
	KeyCount  int64         `json:"key_count"`
	Timestamp time.Time     `json:"timestamp"`
	Error     string        `json:"error,omitempty"`
}
