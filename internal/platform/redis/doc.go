// Package redis provides the Redis implementation of store.AccountStore and
// the shared client constructor.
//
// Each account is a hash under "<prefix>:account:<id>" with number, pin and
// balance fields. Identifiers come from INCR on "<prefix>:account:last_id".
// Multi-key writes use WATCH/MULTI so a missing account aborts the whole write.
// Units of work hold a redsync lock, which serializes them across every process
// sharing the keyspace.
package redis
