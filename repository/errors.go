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

import "errors"

// Expected, recoverable outcomes of normal CRUD flows. Match with
// errors.Is; the concrete error carries hash and field context.
var (
	// ErrAlreadyExists is returned by Create and BatchCreate when the
	// key is already present in the tenant's partition.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrNotFound is returned by Update and BatchUpdate when the key is
	// absent from the tenant's partition.
	ErrNotFound = errors.New("entity not found")

	// ErrWildcardTenant is returned when a keyed or mutating operation
	// is invoked with the all-tenants variant, which only enumeration
	// accepts.
	ErrWildcardTenant = errors.New("operation requires a concrete tenant")
)

// Error wraps a repository failure with the operation and the physical
// location it targeted.
type Error struct {
	Op    string // repository operation, e.g. "Create"
	Hash  string // resolved hash name
	Field string // entity key, when the operation addressed one
	Err   error
}

func (e *Error) Error() string {
	msg := "repository." + e.Op + " " + e.Hash
	if e.Field != "" {
		msg += "/" + e.Field
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodecError reports a stored payload that could not be decoded to the
// repository's entity type, or an entity that could not be encoded.
type CodecError struct {
	Hash  string
	Field string
	Err   error
}

func (e *CodecError) Error() string {
	return "codec " + e.Hash + "/" + e.Field + ": " + e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}
