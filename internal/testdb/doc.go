// Package testdb provides utilities for database integration tests.
//
// Tests that need PostgreSQL call OpenTestDatabase, which skips the test when
// no database URL is configured. The schema is applied with the same embedded
// goose migrations the server runs, and ResetAccounts restores an empty ledger
// between tests:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.OpenTestDatabase(t)
//	    testdb.SetupTestDatabaseSchema(t, db)
//	    testdb.ResetAccounts(t, db)
//	    ...
//	}
//
// WithTx is available for tests that want their changes rolled back instead.
package testdb
