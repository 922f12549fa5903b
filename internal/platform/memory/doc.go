// Package memory provides an in-process implementation of store.AccountStore.
// State lives in a map guarded by a mutex and is lost when the process exits.
package memory
