// Package postgres provides the PostgreSQL implementation of store.AccountStore
// together with the embedded goose migrations that create its schema. Both the
// pgx and lib/pq drivers are supported; errors from either are mapped onto the
// sentinels in internal/store.
package postgres
