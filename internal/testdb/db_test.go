package testdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTestDatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		backup  string
		want    string
	}{
		{name: "nothing configured", want: ""},
		{name: "DATABASE_URL wins", primary: "postgres://a/db", backup: "postgres://b/db", want: "postgres://a/db"},
		{name: "falls back to test URL", backup: "postgres://b/db", want: "postgres://b/db"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvDatabaseURL, tc.primary)
			t.Setenv(EnvTestDBURL, tc.backup)

			assert.Equal(t, tc.want, GetTestDatabaseURL())
			assert.Equal(t, tc.want != "", IsIntegrationTestEnvironment())
		})
	}
}
