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

// Package mongodb provides the MongoDB driver-session plugin. Unlike
// the SQL plugins it speaks document statements of the form
// "action:collection" with BSON filters supplied as arguments.
package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"driverhub/datasource"
	"driverhub/sessions/base"
)

// PluginID is the registry identifier for the MongoDB session plugin.
const PluginID = "mongoDriverSession"

const (
	defaultMaxPoolSize    = 100
	defaultMinPoolSize    = 10
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second
)

// Settings is the MongoDB shape of a datasource settingsInfo blob.
type Settings struct {
	URI            string `json:"uri,omitempty"`
	Host           string `json:"host,omitempty"`
	Port           int    `json:"port,omitempty"`
	Database       string `json:"database,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	AuthSource     string `json:"authSource,omitempty"`
	MaxPoolSize    uint64 `json:"maxPoolSize,omitempty"`
	MinPoolSize    uint64 `json:"minPoolSize,omitempty"`
	ConnectTimeout string `json:"connectTimeout,omitempty"`
}

// ParseSettings decodes a settingsInfo blob.
func ParseSettings(settingsInfo string) (*Settings, error) {
	if settingsInfo == "" {
		return nil, fmt.Errorf("settingsInfo is empty")
	}
	var s Settings
	if err := json.Unmarshal([]byte(settingsInfo), &s); err != nil {
		return nil, fmt.Errorf("malformed settingsInfo: %w", err)
	}
	if s.Database == "" {
		return nil, fmt.Errorf("database name is required")
	}
	return &s, nil
}

// BuildURI constructs the MongoDB connection URI. A provided URI is
// used verbatim.
func (s *Settings) BuildURI() string {
	if s.URI != "" {
		return s.URI
	}

	host := s.Host
	if host == "" {
		host = "localhost"
	}
	port := s.Port
	if port == 0 {
		port = 27017
	}

	auth := ""
	if s.Username != "" {
		auth = s.Username
		if s.Password != "" {
			auth += ":" + s.Password
		}
		auth += "@"
	}

	uri := fmt.Sprintf("mongodb://%s%s:%d/%s", auth, host, port, s.Database)
	if s.AuthSource != "" {
		uri += "?authSource=" + s.AuthSource
	}
	return uri
}

// Source is the opened MongoDB connection source: a pooled client plus
// the default database the datasource points at.
type Source struct {
	Client   *mongo.Client
	Database string
}

// Factory produces MongoDB driver sessions over *Source connection
// sources. Stateless; one instance serves concurrent resolutions.
type Factory struct {
	logger *log.Logger
}

// NewFactory creates the MongoDB session factory.
func NewFactory() *Factory {
	return &Factory{
		logger: log.New(os.Stdout, "[DS_MONGODB] ", log.LstdFlags),
	}
}

// PluginID returns the registry identifier of this plugin.
func (f *Factory) PluginID() string {
	return PluginID
}

// SourceType reports the connection-source type produced by OpenSource.
func (f *Factory) SourceType() reflect.Type {
	return reflect.TypeOf((*Source)(nil))
}

// OpenSource connects a MongoDB client from the datasource's
// settingsInfo and verifies it with a primary-readpref ping.
func (f *Factory) OpenSource(ctx context.Context, ds *datasource.Datasource) (interface{}, error) {
	settings, err := ParseSettings(ds.SettingsInfo)
	if err != nil {
		return nil, base.NewSessionError(PluginID, "OpenSource", "invalid settings", err)
	}

	clientOpts := options.Client().ApplyURI(settings.BuildURI())

	maxPool := settings.MaxPoolSize
	if maxPool == 0 {
		maxPool = defaultMaxPoolSize
	}
	minPool := settings.MinPoolSize
	if minPool == 0 {
		minPool = defaultMinPoolSize
	}
	clientOpts.SetMaxPoolSize(maxPool)
	clientOpts.SetMinPoolSize(minPool)
	clientOpts.SetRetryWrites(true)
	clientOpts.SetRetryReads(true)
	clientOpts.SetAppName("DriverHub-MongoDB-Session")

	connectTimeout := defaultConnectTimeout
	if settings.ConnectTimeout != "" {
		if parsed, err := time.ParseDuration(settings.ConnectTimeout); err == nil {
			connectTimeout = parsed
		}
	}
	clientOpts.SetConnectTimeout(connectTimeout)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, base.NewSessionError(PluginID, "OpenSource", "failed to connect to MongoDB", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, base.NewSessionError(PluginID, "OpenSource", "failed to ping MongoDB", err)
	}

	f.logger.Printf("Opened MongoDB source for datasource %s (database=%s, max_pool=%d)",
		ds.DatasourceCode, settings.Database, maxPool)
	return &Source{Client: client, Database: settings.Database}, nil
}

// Session wraps an opened *Source in a driver session.
func (f *Factory) Session(source interface{}) (base.DriverSession, error) {
	src, ok := source.(*Source)
	if !ok {
		return nil, base.NewSessionError(PluginID, "Session",
			fmt.Sprintf("unexpected source type %T, want *mongodb.Source", source), nil)
	}
	if src.Client == nil {
		return nil, base.NewSessionError(PluginID, "Session", "source has no client", nil)
	}
	return newSession(src, f.logger), nil
}
