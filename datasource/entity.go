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
	"encoding/json"
	"fmt"
	"time"
)

// Enabled flag values. A nil EnabledFlag means "no assertion": filters
// and validation leave the field alone.
const (
	Disabled = 0
	Enabled  = 1
)

// Datasource is the persisted record describing one database-connection
// configuration. DatasourceCode is unique within a tenant's partition
// and doubles as the field key inside the tenant's hash.
type Datasource struct {
	DatasourceCode        string `json:"datasourceCode"`
	DatasourceDescription string `json:"datasourceDescription,omitempty"`
	// DatasourceType is the logical backend kind, e.g. "mysql".
	DatasourceType string `json:"datasourceType"`
	// DatasourceClass names the concrete connection-source
	// implementation to instantiate, e.g. "*sql.DB".
	DatasourceClass string `json:"datasourceClass"`
	// DatasourcePluginID selects the session factory handling this
	// datasource.
	DatasourcePluginID string `json:"datasourcePluginId"`
	// SessionPluginID, when set, overrides DatasourcePluginID for
	// session-level resolution.
	SessionPluginID string `json:"sessionPluginId,omitempty"`
	// SettingsInfo is an opaque serialized settings blob; only the
	// owning session factory interprets it.
	SettingsInfo string `json:"settingsInfo,omitempty"`
	EnabledFlag  *int   `json:"enabledFlag,omitempty"`
	TenantID     int64  `json:"tenantId"`

	// LastUpdateDate is never observably unset: read it through
	// LastUpdate, which substitutes the current time for the zero
	// value. Access the field directly only when zero must be
	// distinguishable (tests, mostly).
	LastUpdateDate time.Time `json:"lastUpdateDate"`
}

// LastUpdate returns the last-update timestamp, substituting the
// current time when the field is unset. Each unset read yields a fresh
// timestamp; two unset reads in quick succession are not guaranteed
// equal.
func (d *Datasource) LastUpdate() time.Time {
	if d.LastUpdateDate.IsZero() {
		return time.Now()
	}
	return d.LastUpdateDate
}

// SetLastUpdate stores the timestamp, normalizing the zero value to the
// current time.
func (d *Datasource) SetLastUpdate(t time.Time) {
	if t.IsZero() {
		t = time.Now()
	}
	d.LastUpdateDate = t
}

// MarshalJSON stamps an unset LastUpdateDate with the current time so
// the persisted form always carries a concrete timestamp. The
// normalization lives here, on the entity's write boundary, not in the
// codec.
func (d Datasource) MarshalJSON() ([]byte, error) {
	type plain Datasource
	p := plain(d)
	if p.LastUpdateDate.IsZero() {
		p.LastUpdateDate = time.Now()
	}
	return json.Marshal(p)
}

// Validate checks the required fields.
func (d *Datasource) Validate() error {
	switch {
	case d.DatasourceCode == "":
		return fmt.Errorf("datasourceCode is required")
	case d.DatasourceType == "":
		return fmt.Errorf("datasourceType is required")
	case d.DatasourceClass == "":
		return fmt.Errorf("datasourceClass is required")
	case d.DatasourcePluginID == "":
		return fmt.Errorf("datasourcePluginId is required")
	}
	if d.EnabledFlag != nil && *d.EnabledFlag != Disabled && *d.EnabledFlag != Enabled {
		return fmt.Errorf("enabledFlag must be %d or %d, got %d", Disabled, Enabled, *d.EnabledFlag)
	}
	return nil
}

// EqualConfig reports whether two datasources describe the same
// configuration, ignoring LastUpdateDate.
func (d *Datasource) EqualConfig(other *Datasource) bool {
	if other == nil {
		return false
	}
	if d.DatasourceCode != other.DatasourceCode ||
		d.DatasourceDescription != other.DatasourceDescription ||
		d.DatasourceType != other.DatasourceType ||
		d.DatasourceClass != other.DatasourceClass ||
		d.DatasourcePluginID != other.DatasourcePluginID ||
		d.SessionPluginID != other.SessionPluginID ||
		d.SettingsInfo != other.SettingsInfo ||
		d.TenantID != other.TenantID {
		return false
	}
	if (d.EnabledFlag == nil) != (other.EnabledFlag == nil) {
		return false
	}
	return d.EnabledFlag == nil || *d.EnabledFlag == *other.EnabledFlag
}
