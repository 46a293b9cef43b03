package dbclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoConnector implements Connector for MongoDB.
type mongoConnector struct {
	client *mongo.Client
	dbName string
}

// mongoQuery is the JSON users write in a table block against a MongoDB
// connection. Only reads: a find with optional filter/projection/sort.
type mongoQuery struct {
	Collection string         `json:"collection"`
	Filter     map[string]any `json:"filter,omitempty"`
	Projection map[string]any `json:"projection,omitempty"`
	Sort       map[string]any `json:"sort,omitempty"`
}

func openMongo(ctx context.Context, dsn string) (*mongoConnector, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbName := dbNameFromURI(dsn)
	if dbName == "" {
		return nil, fmt.Errorf("mongodb dsn must name a database, e.g. mongodb://host:27017/mydb")
	}
	client, err := mongo.Connect(options.Client().ApplyURI(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &mongoConnector{client: client, dbName: dbName}, nil
}

// dbNameFromURI pulls the database out of a MongoDB URI path:
// mongodb://host:port/dbname?opts → dbname.
func dbNameFromURI(dsn string) string {
	rest := dsn
	if i := strings.Index(rest, "://"); i != -1 {
		rest = rest[i+3:]
	}
	if i := strings.Index(rest, "/"); i != -1 {
		rest = rest[i+1:]
	} else {
		return ""
	}
	if i := strings.Index(rest, "?"); i != -1 {
		rest = rest[:i]
	}
	return rest
}

func (c *mongoConnector) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.client.Ping(ctx, nil)
}

func (c *mongoConnector) Query(ctx context.Context, query string, limit int) (*Result, error) {
	var q mongoQuery
	if err := json.Unmarshal([]byte(query), &q); err != nil {
		return nil, fmt.Errorf("parse mongodb query: %w", err)
	}
	if q.Collection == "" {
		return nil, fmt.Errorf("mongodb query needs a collection")
	}
	if limit <= 0 {
		limit = 200
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Find().SetLimit(int64(limit + 1))
	if len(q.Projection) > 0 {
		opts.SetProjection(toBSON(q.Projection))
	}
	if len(q.Sort) > 0 {
		opts.SetSort(toBSON(q.Sort))
	}

	coll := c.client.Database(c.dbName).Collection(q.Collection)
	cursor, err := coll.Find(ctx, toBSON(q.Filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}

	result := &Result{}
	if len(docs) > limit {
		docs = docs[:limit]
		result.Truncated = true
	}
	result.Columns = collectKeys(docs)
	for _, doc := range docs {
		row := make([]any, len(result.Columns))
		for i, k := range result.Columns {
			row[i] = doc[k]
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func (c *mongoConnector) Close() error {
	return c.client.Disconnect(context.Background())
}

func toBSON(m map[string]any) bson.M {
	if m == nil {
		return bson.M{}
	}
	return bson.M(m)
}

// collectKeys returns the union of document keys, sorted, with _id first.
func collectKeys(docs []bson.M) []string {
	seen := map[string]bool{}
	for _, doc := range docs {
		for k := range doc {
			seen[k] = true
		}
	}
	var keys []string
	for k := range seen {
		if k != "_id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if seen["_id"] {
		keys = append([]string{"_id"}, keys...)
	}
	return keys
}
