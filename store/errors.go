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

// Error represents a store-access failure: the transport call to the
// key-value store did not complete. It is never produced for absent
// keys or fields, which are normal outcomes.
type Error struct {
	Op    string // client operation, e.g. "Put"
	Hash  string // hash name (or scan pattern) the operation targeted
	Field string // field name, when the operation addressed one
	Err   error
}

func (e *Error) Error() string {
	msg := "store." + e.Op
	if e.Hash != "" {
		msg += " " + e.Hash
	}
	if e.Field != "" {
		msg += "/" + e.Field
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
