// Package neo4jstore is the property-graph persistence and vector-search
// adapter backed by Neo4j.
package neo4jstore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Config struct {
	URI             string
	User            string
	Password        string
	Database        string
	VectorIndexName string
	ConnectTimeout  time.Duration
	MaxPoolSize     int
}

// Open builds a driver and verifies connectivity. The driver is safe for
// concurrent use; the store relies on Neo4j's own transaction isolation
// rather than in-process locking.
func Open(ctx context.Context, cfg Config) (neo4j.DriverWithContext, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = 50
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.User, cfg.Password, ""),
		func(config *neo4j.Config) {
			config.MaxConnectionPoolSize = cfg.MaxPoolSize
			config.SocketConnectTimeout = cfg.ConnectTimeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("init neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return driver, nil
}
