// Package config provides environment-driven configuration for the
// lending service: the PostgreSQL DSN and pool tuning, the Neo4j
// connection settings, the HTTP listen address and the mirror queue
// size. Every value has a local-development default so the service
// starts with an empty environment.
package config
