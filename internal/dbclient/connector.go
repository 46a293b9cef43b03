// Package dbclient connects table blocks to external databases. Each saved
// connection opens one Connector; the table service runs the block's query
// through it and caches the result.
package dbclient

import (
	"context"
	"fmt"
)

// Result is a bounded batch of rows returned by a table-block query.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	// Truncated is set when the row cap cut the result short.
	Truncated bool `json:"truncated"`
}

// Connector is a live handle to one external database.
type Connector interface {
	Ping(ctx context.Context) error
	// Query runs a read query and returns at most limit rows.
	Query(ctx context.Context, query string, limit int) (*Result, error)
	Close() error
}

// Open creates a connector for the given driver. Supported drivers:
// postgres, mysql, sqlite, mongodb.
func Open(ctx context.Context, driver, dsn string) (Connector, error) {
	switch driver {
	case "postgres", "mysql", "sqlite":
		return openSQL(driver, dsn)
	case "mongodb":
		return openMongo(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
