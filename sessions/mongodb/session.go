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

package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"driverhub/sessions/base"
)

// Session is the MongoDB driver session. Statements name a collection,
// optionally prefixed with an action: "users", "find:users",
// "count:users" for queries; "insert:users", "update:users",
// "delete:users" for writes. Filters and documents are passed as
// arguments, either as maps or as JSON strings.
type Session struct {
	client   *mongo.Client
	database string
	id       string // correlation id for log lines
	logger   *log.Logger
}

func newSession(src *Source, logger *log.Logger) *Session {
	return &Session{
		client:   src.Client,
		database: src.Database,
		id:       uuid.NewString(),
		logger:   logger,
	}
}

// Ping verifies the backing client is alive.
func (s *Session) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return base.NewSessionError(PluginID, "Ping", "database unreachable", err)
	}
	return nil
}

// Query runs a read action against a collection. Supported actions are
// find (the default) and count; the optional first argument is the
// filter document.
func (s *Session) Query(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error) {
	start := time.Now()

	action, collection := parseStatement(statement, "find")
	filter, err := filterArg(args)
	if err != nil {
		return nil, base.NewSessionError(PluginID, "Query", "invalid filter", err)
	}
	coll := s.client.Database(s.database).Collection(collection)

	var results []map[string]interface{}
	switch action {
	case "find":
		cursor, err := coll.Find(ctx, filter)
		if err != nil {
			return nil, base.NewSessionError(PluginID, "Query", "find failed", err)
		}
		defer func() { _ = cursor.Close(ctx) }()
		results, err = decodeCursor(ctx, cursor)
		if err != nil {
			return nil, base.NewSessionError(PluginID, "Query", "failed to decode documents", err)
		}
	case "count":
		n, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return nil, base.NewSessionError(PluginID, "Query", "count failed", err)
		}
		results = []map[string]interface{}{{"count": n}}
	default:
		return nil, base.NewSessionError(PluginID, "Query",
			fmt.Sprintf("unsupported query action %q", action), nil)
	}

	s.logger.Printf("session %s: %s on %s returned %d documents in %v",
		s.id, action, collection, len(results), time.Since(start))
	return results, nil
}

// Exec runs a write action against a collection and returns the number
// of documents affected. insert takes the document as its argument;
// update takes filter and update documents; delete takes the filter.
func (s *Session) Exec(ctx context.Context, statement string, args ...interface{}) (int64, error) {
	action, collection := parseStatement(statement, "")
	if action == "" {
		return 0, base.NewSessionError(PluginID, "Exec",
			"statement must name an action, e.g. insert:users", nil)
	}
	coll := s.client.Database(s.database).Collection(collection)

	switch action {
	case "insert", "insertone":
		if len(args) != 1 {
			return 0, base.NewSessionError(PluginID, "Exec", "insert takes one document", nil)
		}
		doc, err := toBSON(args[0])
		if err != nil {
			return 0, base.NewSessionError(PluginID, "Exec", "invalid document", err)
		}
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			return 0, base.NewSessionError(PluginID, "Exec", "insert failed", err)
		}
		return 1, nil

	case "update", "updatemany":
		if len(args) != 2 {
			return 0, base.NewSessionError(PluginID, "Exec", "update takes filter and update documents", nil)
		}
		filter, err := toBSON(args[0])
		if err != nil {
			return 0, base.NewSessionError(PluginID, "Exec", "invalid filter", err)
		}
		update, err := toBSON(args[1])
		if err != nil {
			return 0, base.NewSessionError(PluginID, "Exec", "invalid update", err)
		}
		result, err := coll.UpdateMany(ctx, filter, update)
		if err != nil {
			return 0, base.NewSessionError(PluginID, "Exec", "update failed", err)
		}
		return result.ModifiedCount, nil

	case "delete", "deletemany":
		if len(args) != 1 {
			return 0, base.NewSessionError(PluginID, "Exec", "delete takes a filter document", nil)
		}
		filter, err := toBSON(args[0])
		if err != nil {
			return 0, base.NewSessionError(PluginID, "Exec", "invalid filter", err)
		}
		result, err := coll.DeleteMany(ctx, filter)
		if err != nil {
			return 0, base.NewSessionError(PluginID, "Exec", "delete failed", err)
		}
		return result.DeletedCount, nil

	default:
		return 0, base.NewSessionError(PluginID, "Exec",
			fmt.Sprintf("unsupported exec action %q", action), nil)
	}
}

// Schemas lists the databases visible to the session.
func (s *Session) Schemas(ctx context.Context) ([]string, error) {
	names, err := s.client.ListDatabaseNames(ctx, bson.M{})
	if err != nil {
		return nil, base.NewSessionError(PluginID, "Schemas", "failed to list databases", err)
	}
	return names, nil
}

// Tables lists the collections of one database. An empty schema means
// the session's default database.
func (s *Session) Tables(ctx context.Context, schema string) ([]string, error) {
	if schema == "" {
		schema = s.database
	}
	names, err := s.client.Database(schema).ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, base.NewSessionError(PluginID, "Tables", "failed to list collections", err)
	}
	return names, nil
}

// Close releases the session and disconnects the client.
func (s *Session) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return base.NewSessionError(PluginID, "Close", "failed to disconnect", err)
	}
	return nil
}

// parseStatement splits "action:collection". A bare statement is the
// collection name with the given default action.
func parseStatement(statement, defaultAction string) (string, string) {
	parts := strings.SplitN(statement, ":", 2)
	if len(parts) == 2 {
		return strings.ToLower(strings.TrimSpace(parts[0])), strings.TrimSpace(parts[1])
	}
	return defaultAction, strings.TrimSpace(statement)
}

// filterArg extracts the optional leading filter document.
func filterArg(args []interface{}) (bson.M, error) {
	if len(args) == 0 {
		return bson.M{}, nil
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one filter argument, got %d", len(args))
	}
	return toBSON(args[0])
}

// toBSON accepts bson.M, plain maps, and JSON strings.
func toBSON(v interface{}) (bson.M, error) {
	switch val := v.(type) {
	case nil:
		return bson.M{}, nil
	case bson.M:
		return val, nil
	case map[string]interface{}:
		return bson.M(val), nil
	case string:
		if val == "" {
			return bson.M{}, nil
		}
		var result bson.M
		if err := json.Unmarshal([]byte(val), &result); err != nil {
			return nil, fmt.Errorf("invalid JSON document: %w", err)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a document", v)
	}
}

func decodeCursor(ctx context.Context, cursor *mongo.Cursor) ([]map[string]interface{}, error) {
	results := make([]map[string]interface{}, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, bsonToMap(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func bsonToMap(doc bson.M) map[string]interface{} {
	result := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		result[k] = convertFromBSON(v)
	}
	return result
}

// convertFromBSON rewrites BSON driver types into JSON-serializable
// Go values.
func convertFromBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time()
	case primitive.Binary:
		return val.Data
	case bson.M:
		return bsonToMap(val)
	case bson.A:
		result := make([]interface{}, len(val))
		for i, item := range val {
			result[i] = convertFromBSON(item)
		}
		return result
	case primitive.D:
		result := make(map[string]interface{}, len(val))
		for _, elem := range val {
			result[elem.Key] = convertFromBSON(elem.Value)
		}
		return result
	default:
		return val
	}
}
