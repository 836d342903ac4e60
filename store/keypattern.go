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
	"fmt"
	"strings"
)

// TenantPlaceholder marks the tenant segment in a key-pattern template.
const TenantPlaceholder = "{tenant}"

// KeyPattern maps a Tenant to the concrete hash name of that tenant's
// partition for one entity kind. It is the sole mechanism providing
// tenant isolation: every other component trusts whatever hash name
// this strategy returns and never reasons about tenants directly.
//
// A template contains exactly one {tenant} placeholder, e.g.
// "plugin:datasource:{tenant}". Resolving a concrete tenant substitutes
// its id; resolving AllTenants substitutes the glob wildcard, producing
// a pattern suitable for Client.ScanHashNames.
type KeyPattern struct {
	prefix string
	suffix string
}

// NewKeyPattern validates the template and builds the pattern. The
// template must contain the {tenant} placeholder exactly once.
func NewKeyPattern(template string) (KeyPattern, error) {
	switch n := strings.Count(template, TenantPlaceholder); n {
	case 1:
		idx := strings.Index(template, TenantPlaceholder)
		return KeyPattern{
			prefix: template[:idx],
			suffix: template[idx+len(TenantPlaceholder):],
		}, nil
	case 0:
		return KeyPattern{}, fmt.Errorf("key pattern %q has no %s placeholder", template, TenantPlaceholder)
	default:
		return KeyPattern{}, fmt.Errorf("key pattern %q has %d %s placeholders, want 1", template, n, TenantPlaceholder)
	}
}

// MustKeyPattern is NewKeyPattern for compile-time constant templates.
func MustKeyPattern(template string) KeyPattern {
	p, err := NewKeyPattern(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Resolve substitutes the tenant segment into the template.
func (p KeyPattern) Resolve(t Tenant) string {
	return p.prefix + t.Segment() + p.suffix
}

// Template returns the original template string.
func (p KeyPattern) Template() string {
	return p.prefix + TenantPlaceholder + p.suffix
}
