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
Package datasource defines the persisted datasource configuration
record, its repository binding, and the sparse-filter matcher.

A Datasource describes one database connection per tenant: which
logical backend it is, which session-factory plugin interprets it, and
an opaque settings blob only that plugin understands. Records live in
one Redis hash per tenant under plugin:datasource:<tenant>, keyed by
DatasourceCode.

The LastUpdateDate field carries a never-null contract: reading it via
LastUpdate when unset yields the current time, and encoding an unset
value stamps the current time into the persisted form. Code that needs
to distinguish "never written" must look at the raw field.
*/
package datasource
