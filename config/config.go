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

// Package config loads the DriverHub configuration file and assembles
// the running service from it: store client, session-plugin registry,
// and optional seed datasources.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"driverhub/datasource"
)

// Config is the root structure of a DriverHub configuration file.
type Config struct {
	Version string       `yaml:"version"`
	Store   StoreConfig  `yaml:"store"`
	Plugins PluginConfig `yaml:"plugins,omitempty"`
	Seed    []SeedEntry  `yaml:"seed,omitempty"`
}

// StoreConfig configures the backing key-value store.
type StoreConfig struct {
	URL string `yaml:"url"`
}

// PluginConfig selects which session plugins are registered at startup.
// An empty list enables every built-in plugin.
type PluginConfig struct {
	Enabled []string `yaml:"enabled,omitempty"`
}

// SeedEntry is a datasource registered at startup. Entries already
// present in the store are left untouched.
type SeedEntry struct {
	TenantID              int64  `yaml:"tenant_id"`
	DatasourceCode        string `yaml:"datasource_code"`
	DatasourceDescription string `yaml:"datasource_description,omitempty"`
	DatasourceType        string `yaml:"datasource_type"`
	DatasourceClass       string `yaml:"datasource_class"`
	DatasourcePluginID    string `yaml:"datasource_plugin_id"`
	SessionPluginID       string `yaml:"session_plugin_id,omitempty"`
	SettingsInfo          string `yaml:"settings_info,omitempty"`
	Enabled               *int   `yaml:"enabled_flag,omitempty"`
}

// Datasource converts a seed entry to the stored entity shape.
func (e *SeedEntry) Datasource() *datasource.Datasource {
	return &datasource.Datasource{
		DatasourceCode:        e.DatasourceCode,
		DatasourceDescription: e.DatasourceDescription,
		DatasourceType:        e.DatasourceType,
		DatasourceClass:       e.DatasourceClass,
		DatasourcePluginID:    e.DatasourcePluginID,
		SessionPluginID:       e.SessionPluginID,
		SettingsInfo:          e.SettingsInfo,
		EnabledFlag:           e.Enabled,
		TenantID:              e.TenantID,
	}
}

// Load reads and parses a configuration file. Environment variable
// references in the file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural requirements of a loaded config.
func (c *Config) Validate() error {
	if c.Store.URL == "" {
		return fmt.Errorf("store.url is required")
	}
	for i, entry := range c.Seed {
		ds := entry.Datasource()
		if err := ds.Validate(); err != nil {
			return fmt.Errorf("seed entry %d (%s): %w", i, entry.DatasourceCode, err)
		}
	}
	return nil
}

// envVarRegex matches ${VAR_NAME} or $VAR_NAME patterns
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands environment variable references. Supports
// ${VAR_NAME}, $VAR_NAME, and ${VAR_NAME:-default}; undefined
// variables expand to the empty string.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		defaultVal := ""
		if idx := strings.Index(varName, ":-"); idx != -1 {
			defaultVal = varName[idx+2:]
			varName = varName[:idx]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultVal
	})
}
