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
Package registry provides the plugin-id → session-factory lookup and
the resolution path from stored datasource configurations to live
driver sessions.

# Populating

Register every backend plugin once at process startup:

	reg := registry.New()
	if err := reg.Register(mysql.NewFactory()); err != nil {
	    log.Fatal(err)
	}
	if err := reg.Register(postgres.NewFactory()); err != nil {
	    log.Fatal(err)
	}

After startup the registry is read-only; concurrent resolution needs
no external synchronization.

# Resolving

	session, err := reg.Resolve(ctx, ds)
	if errors.Is(err, registry.ErrPluginNotFound) {
	    // the configuration references a plugin this process lacks
	}
	defer session.Close(ctx)

The plugin id is taken from the configuration's sessionPluginId when
set, falling back to datasourcePluginId. The session-level field exists
precisely to override the datasource-level default, so it wins.
*/
package registry
