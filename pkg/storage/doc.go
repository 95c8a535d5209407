// Package storage defines the persistence interfaces of the tienda API
// and their sentinel errors. Two implementations exist: memory (tests
// and lightweight deployments) and postgres (pgx connection pool with
// embedded schema migrations).
package storage
